package aggregates

import (
	"time"

	"github.com/yungbote/ledger-backend/internal/observability"
)

// Hooks receives write-path signals. Implementations must be safe for
// concurrent use.
type Hooks interface {
	// ObserveOperation fires once per attempt with its final status.
	ObserveOperation(op, status string, dur time.Duration)
	// IncConflict fires for each attempt lost to a version race or a
	// transient lock error.
	IncConflict(op string)
	// IncRetry fires when another attempt is scheduled.
	IncRetry(op string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

// metricsHooks forwards to the prometheus aggregate series.
type metricsHooks struct {
	m *observability.Metrics
}

func NewObservabilityHooks(m *observability.Metrics) Hooks {
	if m == nil {
		return noopHooks{}
	}
	return metricsHooks{m: m}
}

func (h metricsHooks) ObserveOperation(op, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(op, status, dur)
}

func (h metricsHooks) IncConflict(op string) { h.m.IncAggregateConflict(op) }

func (h metricsHooks) IncRetry(op string) { h.m.IncAggregateRetry(op) }
