package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
	"github.com/yungbote/ledger-backend/internal/observability"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		if d.DB != nil {
			d.Runner = NewGormTxRunner(d.DB)
		} else {
			d.Runner = NewPassthroughTxRunner()
		}
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	return d
}

// executeWrite runs one attempt of fn inside a transaction and reports it to
// the hooks. Conflicting attempts count as conflicts here; scheduling a retry
// is the caller's business.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	ctx, span := observability.Tracer().Start(ctx, op)
	defer span.End()

	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsConflict(mapped) {
			deps.Hooks.IncConflict(op)
		}
		span.SetAttributes(attribute.String("aggregate.error_code", status))
		if status == string(domainagg.CodeInternal) {
			span.RecordError(mapped)
			span.SetStatus(codes.Error, mapped.Error())
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
