package aggregates

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
)

type memoryRecord struct {
	owners  []uuid.UUID
	balance decimal.Decimal
	ledger  []accounts.Transaction
	version int64
}

// MemoryAccountStore keeps accounts in process memory. Each call is atomic
// under one mutex, so it needs no surrounding transaction.
type MemoryAccountStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*memoryRecord
	opts    []accounts.Option
}

var _ AccountStore = (*MemoryAccountStore)(nil)

func NewMemoryAccountStore(opts ...accounts.Option) *MemoryAccountStore {
	return &MemoryAccountStore{
		records: make(map[uuid.UUID]*memoryRecord),
		opts:    opts,
	}
}

func (s *MemoryAccountStore) Create(dbc dbctx.Context, acct *accounts.Account) error {
	if acct == nil {
		return ValidationError("account is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[acct.ID()]; exists {
		return ConflictError(fmt.Sprintf("account %s already exists", acct.ID()))
	}
	s.records[acct.ID()] = &memoryRecord{
		owners:  acct.Owners(),
		balance: acct.Balance(),
		ledger:  acct.Ledger(),
		version: acct.Version(),
	}
	return nil
}

func (s *MemoryAccountStore) Load(dbc dbctx.Context, id uuid.UUID) (*accounts.Account, error) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return nil, accountNotFound(id)
	}
	owners := append([]uuid.UUID(nil), rec.owners...)
	ledger := append([]accounts.Transaction(nil), rec.ledger...)
	balance, version := rec.balance, rec.version
	s.mu.Unlock()

	acct, err := accounts.Rehydrate(id, owners, balance, ledger, version, s.opts...)
	if err != nil {
		return nil, InvariantError(err.Error())
	}
	return acct, nil
}

func (s *MemoryAccountStore) Save(dbc dbctx.Context, accts ...*accounts.Account) error {
	ordered, err := saveOrder(accts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range ordered {
		rec, ok := s.records[acct.ID()]
		if !ok {
			return accountNotFound(acct.ID())
		}
		if err := RequireVersionMatch(rec.version, acct.Version()); err != nil {
			return ConflictError(fmt.Sprintf("account %s moved past version %d", acct.ID(), acct.Version()))
		}
	}
	for _, acct := range ordered {
		rec := s.records[acct.ID()]
		rec.balance = acct.Balance()
		rec.ledger = append(rec.ledger, acct.Pending()...)
		rec.version++
	}
	return nil
}

// Version reports the stored version, or 0 when absent.
func (s *MemoryAccountStore) Version(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec.version
	}
	return 0
}
