package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/ledger-backend/internal/data/aggregates"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
)

// InjectedTxRunner runs aggregate bodies without a real DB and lets tests
// inject begin/commit failures. FailCommitTimes limits FailCommit to the
// first N commits; zero means every commit fails while FailCommit is set.
type InjectedTxRunner struct {
	mu sync.Mutex

	FailBegin       error
	FailBeforeBody  error
	FailCommit      error
	FailCommitTimes int

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int

	commitFailures int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.rollback()
		return failBeforeBody
	}
	if fn != nil {
		if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
			r.rollback()
			return err
		}
	}
	if err := r.commitFailure(); err != nil {
		r.rollback()
		return err
	}
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
	return nil
}

func (r *InjectedTxRunner) commitFailure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCommit == nil {
		return nil
	}
	if r.FailCommitTimes > 0 && r.commitFailures >= r.FailCommitTimes {
		return nil
	}
	r.commitFailures++
	return r.FailCommit
}

func (r *InjectedTxRunner) rollback() {
	r.mu.Lock()
	r.RollbackCalls++
	r.mu.Unlock()
}
