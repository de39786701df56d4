package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/ledger-backend/internal/data/aggregates"
	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
)

// ConflictingStore wraps a store and makes the first Conflicts saves lose
// the version race, the way a concurrent writer would. With Interlope set,
// the losing save first runs it against the first account, so the stored
// state really moves underneath the caller.
type ConflictingStore struct {
	Inner     aggregates.AccountStore
	Conflicts int
	Interlope func(dbc dbctx.Context, id uuid.UUID) error

	mu       sync.Mutex
	loads    int
	saves    int
	injected int
}

var _ aggregates.AccountStore = (*ConflictingStore)(nil)

func (s *ConflictingStore) Create(dbc dbctx.Context, acct *accounts.Account) error {
	return s.Inner.Create(dbc, acct)
}

func (s *ConflictingStore) Load(dbc dbctx.Context, id uuid.UUID) (*accounts.Account, error) {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return s.Inner.Load(dbc, id)
}

func (s *ConflictingStore) Save(dbc dbctx.Context, accts ...*accounts.Account) error {
	s.mu.Lock()
	s.saves++
	inject := s.injected < s.Conflicts
	if inject {
		s.injected++
	}
	interlope := s.Interlope
	s.mu.Unlock()

	if inject {
		if interlope != nil && len(accts) > 0 && accts[0] != nil {
			if err := interlope(dbc, accts[0].ID()); err != nil {
				return err
			}
		}
		return aggregates.ConflictError("injected version conflict")
	}
	return s.Inner.Save(dbc, accts...)
}

func (s *ConflictingStore) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *ConflictingStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// DepositThrough returns an Interlope func that commits amount directly to
// the inner store, bypassing the aggregate under test.
func DepositThrough(inner aggregates.AccountStore, amount string) func(dbc dbctx.Context, id uuid.UUID) error {
	return func(dbc dbctx.Context, id uuid.UUID) error {
		acct, err := inner.Load(dbctx.Context{Ctx: context.WithoutCancel(dbc.Ctx)}, id)
		if err != nil {
			return err
		}
		if _, err := acct.Deposit(mustDecimal(amount), "concurrent writer"); err != nil {
			return err
		}
		return inner.Save(dbctx.Context{Ctx: context.WithoutCancel(dbc.Ctx)}, acct)
	}
}
