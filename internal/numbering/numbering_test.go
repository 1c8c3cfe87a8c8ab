package numbering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func (c *counter) Next(_ context.Context, scope string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]int64{}
	}
	c.values[scope]++
	return c.values[scope], nil
}

func (c *counter) Raise(_ context.Context, scope string, floor int64) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]int64{}
	}
	if c.values[scope] < floor {
		c.values[scope] = floor
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGeneratorFormatsPerKindAndDay(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)
	g := NewGenerator(&counter{}).WithClock(fixedClock(day))

	first, err := g.Next(ctx, KindPurchaseOrder)
	require.NoError(t, err)
	second, err := g.Next(ctx, KindPurchaseOrder)
	require.NoError(t, err)
	qc, err := g.Next(ctx, KindQCReport)
	require.NoError(t, err)
	acc, err := g.Next(ctx, KindAcceptedReceipt)
	require.NoError(t, err)
	rej, err := g.Next(ctx, KindRejectedReceipt)
	require.NoError(t, err)

	assert.Equal(t, "PO-20250101-0001", first)
	assert.Equal(t, "PO-20250101-0002", second)
	assert.Equal(t, "QC-20250101-0001", qc)
	assert.Equal(t, "RCP-ACC-20250101-0001", acc)
	assert.Equal(t, "RCP-REJ-20250101-0001", rej)
}

func TestGeneratorUsesUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	local := time.Date(2025, 1, 2, 3, 0, 0, 0, loc) // 2025-01-01 20:00 UTC
	g := NewGenerator(&counter{}).WithClock(fixedClock(local))

	number, err := g.Next(context.Background(), KindPurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, "PO-20250101-0001", number)
}

func TestFormatDoesNotTruncateWideSequences(t *testing.T) {
	assert.Equal(t, "QC-20250101-12345", Format("QC-20250101", 12345))
}

func TestParse(t *testing.T) {
	tests := []struct {
		number string
		scope  string
		seq    int64
		ok     bool
	}{
		{"PO-20250101-0007", "PO-20250101", 7, true},
		{"RCP-ACC-20250101-0012", "RCP-ACC-20250101", 12, true},
		{"QC-20250101-12345", "QC-20250101", 12345, true},
		{"PO-20250101-", "", 0, false},
		{"PO-20250101-abcd", "", 0, false},
		{"0001", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			scope, seq, ok := Parse(tt.number)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.scope, scope)
			assert.Equal(t, tt.seq, seq)
		})
	}
}

func TestGeneratorResyncSkipsPastLatest(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(&counter{}).WithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, g.Resync(ctx, "PO-20250101-0010"))
	next, err := g.Next(ctx, KindPurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, "PO-20250101-0011", next)

	// A lower floor never moves the counter back.
	require.NoError(t, g.Resync(ctx, "PO-20250101-0003"))
	next, err = g.Next(ctx, KindPurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, "PO-20250101-0012", next)

	assert.Error(t, g.Resync(ctx, "garbage"))
}

func TestGeneratorWrapsSequencerError(t *testing.T) {
	boom := errors.New("boom")
	g := NewGenerator(&counter{err: boom})

	_, err := g.Next(context.Background(), KindQCReport)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRedisSequencer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	seq := NewRedisSequencer(client, time.Hour)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, "PO-20250101")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := seq.Next(ctx, "PO-20250102")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	assert.Equal(t, time.Hour, mr.TTL("procurement:seq:PO-20250101"))
}

func TestRedisSequencerRaiseAfterKeyLoss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	seq := NewRedisSequencer(client, time.Hour)
	ctx := context.Background()
	const scope = "PO-20250101"

	for i := 0; i < 5; i++ {
		_, err := seq.Next(ctx, scope)
		require.NoError(t, err)
	}
	mr.FlushAll()

	require.NoError(t, seq.Raise(ctx, scope, 5))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+scope))
	got, err := seq.Next(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)

	require.NoError(t, seq.Raise(ctx, scope, 2))
	got, err = seq.Next(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestRedisSequencerConcurrentCallersGetDistinctValues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	g := NewGenerator(NewRedisSequencer(client, 0))
	ctx := context.Background()

	const workers = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := g.Next(ctx, KindAcceptedReceipt)
			assert.NoError(t, err)
			mu.Lock()
			seen[number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
}
