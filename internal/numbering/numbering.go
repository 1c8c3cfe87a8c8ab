// Package numbering mints human-readable document numbers of the form
// <PREFIX>-<YYYYMMDD>-<seq>.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the document prefix.
type Kind string

const (
	KindPurchaseOrder   Kind = "PO"
	KindQCReport        Kind = "QC"
	KindAcceptedReceipt Kind = "RCP-ACC"
	KindRejectedReceipt Kind = "RCP-REJ"
)

// Sequencer returns the next value of a counter. Values for one scope are
// unique and increase monotonically starting at 1. Raise lifts a counter to
// at least floor and never lowers it.
type Sequencer interface {
	Next(ctx context.Context, scope string) (int64, error)
	Raise(ctx context.Context, scope string, floor int64) error
}

type Generator struct {
	seq Sequencer
	now func() time.Time
}

func NewGenerator(seq Sequencer) *Generator {
	return &Generator{seq: seq, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Scope is the counter key for kind on day t (UTC).
func Scope(kind Kind, t time.Time) string {
	return fmt.Sprintf("%s-%s", kind, t.UTC().Format("20060102"))
}

func Format(scope string, seq int64) string {
	return fmt.Sprintf("%s-%04d", scope, seq)
}

// Parse splits a number produced by Format back into scope and sequence.
func Parse(number string) (scope string, seq int64, ok bool) {
	i := strings.LastIndexByte(number, '-')
	if i <= 0 {
		return "", 0, false
	}
	seq, err := strconv.ParseInt(number[i+1:], 10, 64)
	if err != nil || seq <= 0 {
		return "", 0, false
	}
	return number[:i], seq, true
}

func (g *Generator) Next(ctx context.Context, kind Kind) (string, error) {
	scope := Scope(kind, g.now())
	n, err := g.seq.Next(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("numbering: next %s: %w", scope, err)
	}
	return Format(scope, n), nil
}

// Resync moves the counter behind latest past it, so the next number minted
// for that scope sorts after latest. It repairs a counter that fell behind the
// stored documents, for example after the redis keys were lost.
func (g *Generator) Resync(ctx context.Context, latest string) error {
	scope, seq, ok := Parse(latest)
	if !ok {
		return fmt.Errorf("numbering: malformed number %q", latest)
	}
	if err := g.seq.Raise(ctx, scope, seq); err != nil {
		return fmt.Errorf("numbering: raise %s to %d: %w", scope, seq, err)
	}
	return nil
}
