package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
)

// TxRunner provides the transaction boundary for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

type passthroughTxRunner struct{}

// NewPassthroughTxRunner runs fn without a database transaction. It pairs
// with stores whose Save is atomic on its own, such as the memory store.
func NewPassthroughTxRunner() TxRunner {
	return passthroughTxRunner{}
}

func (passthroughTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(dbctx.Context{Ctx: ctx})
}
