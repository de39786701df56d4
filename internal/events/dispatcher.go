package events

import (
	"context"
	"time"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	"github.com/yungbote/ledger-backend/internal/observability"
	"github.com/yungbote/ledger-backend/internal/pkg/ctxutil"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

type DispatcherDeps struct {
	Log       *logger.Logger
	Publisher Publisher
	Metrics   *observability.Metrics
	// Timeout bounds each publish. Zero means the caller's context only.
	Timeout time.Duration
}

// Dispatcher hands committed events to a publisher one by one. A failed
// publish is logged and counted; it never reaches the command that produced
// the event.
type Dispatcher struct {
	log       *logger.Logger
	pub       Publisher
	metrics   *observability.Metrics
	timeout   time.Duration
	transport string
}

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = NewMemoryPublisher()
	}
	transport := transportOf(deps.Publisher)
	return &Dispatcher{
		log:       deps.Log.With("service", "EventDispatcher", "transport", transport),
		pub:       deps.Publisher,
		metrics:   deps.Metrics,
		timeout:   deps.Timeout,
		transport: transport,
	}
}

// Dispatch publishes evs in order and returns how many were delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, evs []accounts.Event) int {
	ctx = ctxutil.Default(ctx)
	delivered := 0
	for _, ev := range evs {
		if d.publish(ctx, ev) {
			delivered++
		}
	}
	return delivered
}

func (d *Dispatcher) publish(ctx context.Context, ev accounts.Event) bool {
	start := time.Now()
	pctx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	err := d.pub.Publish(pctx, ev)
	status := "success"
	if err != nil {
		status = "failure"
		d.log.Warn("Event publish failed", append(ctxutil.LogFields(ctx),
			"event_id", ev.ID,
			"event_type", ev.Type,
			"account_id", ev.AccountID,
			"transaction_id", ev.TransactionID,
			"error", err,
		)...)
	}
	d.metrics.ObserveEventPublish(d.transport, string(ev.Type), status, time.Since(start))
	return err == nil
}
