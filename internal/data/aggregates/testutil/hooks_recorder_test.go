package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Ledger.Account.RecordIncome", "success", 10*time.Millisecond)
	h.IncConflict("Ledger.Account.RecordIncome")
	h.IncRetry("Ledger.Account.RecordIncome")

	if len(h.Operations) != 1 {
		t.Fatalf("expected 1 op event, got %d", len(h.Operations))
	}
	if h.Operations[0].Name != "Ledger.Account.RecordIncome" || h.Operations[0].Status != "success" {
		t.Fatalf("unexpected op event: %+v", h.Operations[0])
	}
	if h.ConflictCount() != 1 || h.RetryCount() != 1 {
		t.Fatalf("unexpected counts conflicts=%d retries=%d", h.ConflictCount(), h.RetryCount())
	}
}

func TestHooksRecorder_ConcurrentWriters(t *testing.T) {
	h := &HooksRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := "success"
			if i%2 == 0 {
				status = "conflict"
			}
			h.ObserveOperation("op", status, time.Millisecond)
		}(i)
	}
	wg.Wait()
	counts := h.StatusCounts()
	if counts["success"] != 10 || counts["conflict"] != 10 {
		t.Fatalf("unexpected status counts: %+v", counts)
	}
}
