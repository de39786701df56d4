package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/ledger-backend/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests. It is safe for
// concurrent writers; read through the accessors while writers may run.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{
		Name:     name,
		Status:   status,
		Duration: dur,
	})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

func (h *HooksRecorder) ConflictCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Conflicts)
}

func (h *HooksRecorder) RetryCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Retries)
}

// StatusCounts tallies observed operations by status.
func (h *HooksRecorder) StatusCounts() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]int, len(h.Operations))
	for _, op := range h.Operations {
		out[op.Status]++
	}
	return out
}
