package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
)

func TestInjectedTxRunner_CommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if r.BeginCalls != 1 || r.CommitCalls != 1 || r.RollbackCalls != 0 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_RollbackOnBodyError(t *testing.T) {
	r := &InjectedTxRunner{}
	bodyErr := errors.New("boom")
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		return bodyErr
	})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected body err, got %v", err)
	}
	if r.BeginCalls != 1 || r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunner_FailCommitTimes(t *testing.T) {
	commitErr := errors.New("could not serialize access")
	r := &InjectedTxRunner{FailCommit: commitErr, FailCommitTimes: 2}
	body := func(_ dbctx.Context) error { return nil }

	for i := 0; i < 2; i++ {
		if err := r.InTx(context.Background(), body); !errors.Is(err, commitErr) {
			t.Fatalf("commit %d: expected injected failure, got %v", i+1, err)
		}
	}
	if err := r.InTx(context.Background(), body); err != nil {
		t.Fatalf("third commit should succeed, got %v", err)
	}
	if r.BeginCalls != 3 || r.CommitCalls != 1 || r.RollbackCalls != 2 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}
