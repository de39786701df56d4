package testutil

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yungbote/ledger-backend/internal/data/aggregates"
	"github.com/yungbote/ledger-backend/internal/domain/accounts"
)

// RecordingNotifier keeps every dispatched event. OnDispatch, when set, runs
// before recording; tests use it to inspect the store at publish time.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []accounts.Event

	OnDispatch func(ctx context.Context, events []accounts.Event)
}

var _ aggregates.Notifier = (*RecordingNotifier)(nil)

func (n *RecordingNotifier) Dispatch(ctx context.Context, events []accounts.Event) int {
	if n.OnDispatch != nil {
		n.OnDispatch(ctx, events)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
	return len(events)
}

func (n *RecordingNotifier) Events() []accounts.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]accounts.Event(nil), n.events...)
}

func (n *RecordingNotifier) Count(typ accounts.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Type == typ {
			c++
		}
	}
	return c
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }
