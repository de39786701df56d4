package events

import (
	"context"
	"sync"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
)

// Publisher delivers one account event to a transport.
type Publisher interface {
	Publish(ctx context.Context, ev accounts.Event) error
}

// Transport names a publisher in logs and metrics.
type Transport interface {
	Transport() string
}

// MemoryPublisher keeps published events in process. Fail, when set, is
// returned instead of recording.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []accounts.Event
	Fail   func(ev accounts.Event) error
}

var _ Publisher = (*MemoryPublisher)(nil)

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Transport() string { return "memory" }

func (p *MemoryPublisher) Publish(ctx context.Context, ev accounts.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Fail != nil {
		if err := p.Fail(ev); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *MemoryPublisher) Events() []accounts.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]accounts.Event(nil), p.events...)
}

func (p *MemoryPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func transportOf(p Publisher) string {
	if t, ok := p.(Transport); ok {
		return t.Transport()
	}
	return "unknown"
}
