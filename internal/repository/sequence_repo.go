package repository

import (
	"context"

	"gorm.io/gorm"
)

// SequenceRepository hands out per-scope counters stored in number_sequences.
// The upsert is atomic, so concurrent callers never observe the same value.
// Callers pass a context without a transaction so the increment commits on
// its own and is never reused after a rollback.
type SequenceRepository interface {
	Next(ctx context.Context, scope string) (int64, error)
	Raise(ctx context.Context, scope string, floor int64) error
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

const nextSequenceSQL = `
INSERT INTO number_sequences (scope, value, updated_at)
VALUES (?, 1, NOW())
ON CONFLICT (scope) DO UPDATE
SET value = number_sequences.value + 1, updated_at = NOW()
RETURNING value`

func (r *sequenceRepository) Next(ctx context.Context, scope string) (int64, error) {
	var value int64
	if err := GetDB(ctx, r.db).Raw(nextSequenceSQL, scope).Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

const raiseSequenceSQL = `
INSERT INTO number_sequences (scope, value, updated_at)
VALUES (?, ?, NOW())
ON CONFLICT (scope) DO UPDATE
SET value = GREATEST(number_sequences.value, EXCLUDED.value), updated_at = NOW()`

// Raise lifts the counter for scope to at least floor.
func (r *sequenceRepository) Raise(ctx context.Context, scope string, floor int64) error {
	return GetDB(ctx, r.db).Exec(raiseSequenceSQL, scope, floor).Error
}
