package shared

import "context"

// TxRunner executes a function within one storage transaction. The
// context passed to fn carries the transaction; repositories built on
// the same database join it automatically. If fn returns an error the
// transaction is rolled back, otherwise it is committed.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTxRunner runs the function directly without any transaction.
// Useful in tests and for callers that manage atomicity themselves.
type NopTxRunner struct{}

// RunInTx invokes fn with the unmodified context
func (NopTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
