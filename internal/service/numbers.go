package service

import (
	"context"
	"fmt"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/metrics"
	"pharmaproc/internal/numbering"
	"pharmaproc/internal/repository"
)

const maxNumberAttempts = 3

// latestNumberFunc reports the highest stored number for a scope, or "".
type latestNumberFunc func(ctx context.Context, scope string) (string, error)

// numberedWriter runs writes that need a freshly minted document number.
type numberedWriter struct {
	txManager repository.TransactionManager
	numbers   *numbering.Generator
	metrics   *metrics.Metrics
}

// run mints a number and then executes fn with it in a transaction. The
// number is taken before the transaction opens, so the counter never waits on
// a pooled connection while another one is held, and a rolled back attempt
// never hands the same number out twice. When the insert collides on
// constraint the counter is moved past the highest stored number and the
// attempt is retried.
func (w numberedWriter) run(
	ctx context.Context,
	kind numbering.Kind,
	constraint string,
	latest latestNumberFunc,
	fn func(txCtx context.Context, number string) error,
) error {
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		var number string
		number, err = w.numbers.Next(ctx, kind)
		if err != nil {
			return err
		}

		err = w.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			return fn(txCtx, number)
		})
		if !repository.IsDuplicateOn(err, constraint) {
			return err
		}
		w.metrics.NumberRetried(string(kind))

		if rerr := w.resync(ctx, number, latest); rerr != nil {
			return rerr
		}
	}
	return apperr.Wrap(apperr.ErrConflict, err, "could not allocate a unique %s number", kind)
}

// resync lifts the counter behind number to the highest number already stored
// in its scope.
func (w numberedWriter) resync(ctx context.Context, number string, latest latestNumberFunc) error {
	scope, _, ok := numbering.Parse(number)
	if !ok {
		return nil
	}
	highest, err := latest(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to look up latest %s number: %w", scope, err)
	}
	if highest == "" {
		return nil
	}
	return w.numbers.Resync(ctx, highest)
}
