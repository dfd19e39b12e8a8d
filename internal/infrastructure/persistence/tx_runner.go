package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/physiomanager/backend/internal/domain/shared"
)

type txContextKey struct{}

// GormTxRunner implements shared.TxRunner on a GORM connection. The
// transaction handle travels in the context so repositories join the
// same transaction without signature changes.
type GormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner creates a transaction runner
func NewGormTxRunner(db *gorm.DB) *GormTxRunner {
	return &GormTxRunner{db: db}
}

// RunInTx executes fn inside one database transaction. A rollback
// happens on error or panic; nested calls reuse the outer transaction.
func (r *GormTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// txFromContext returns the transaction carried by ctx, or nil
func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx
}

// dbFor returns the connection a repository should use: the in-flight
// transaction when one is present, otherwise the given default.
func dbFor(ctx context.Context, def *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return def
}

var _ shared.TxRunner = (*GormTxRunner)(nil)
