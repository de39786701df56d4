package aggregates

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/data/repos"
	accountsrepo "github.com/yungbote/ledger-backend/internal/data/repos/accounts"
	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

const accountTable = "account"

// AccountStore persists account aggregates under optimistic versioning.
type AccountStore interface {
	// Create inserts a new account. An existing id is a conflict.
	Create(dbc dbctx.Context, acct *accounts.Account) error
	// Load returns a fresh instance, or accounts.ErrAccountNotFound.
	Load(dbc dbctx.Context, id uuid.UUID) (*accounts.Account, error)
	// Save writes every supplied account with a pending change, or none of
	// them. A stale version on any account is a conflict. Save does not
	// mark the instances committed.
	Save(dbc dbctx.Context, accts ...*accounts.Account) error
}

type GormAccountStoreDeps struct {
	DB           *gorm.DB
	Log          *logger.Logger
	Accounts     repos.AccountRepo
	Transactions repos.TransactionRepo
	CASGuard     CASGuard
	// AccountOptions are applied to every rehydrated account.
	AccountOptions []accounts.Option
	Clock          func() time.Time
}

type gormAccountStore struct {
	deps GormAccountStoreDeps
	log  *logger.Logger
}

func NewGormAccountStore(deps GormAccountStoreDeps) AccountStore {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.Accounts == nil {
		deps.Accounts = repos.NewAccountRepo(deps.DB, deps.Log)
	}
	if deps.Transactions == nil {
		deps.Transactions = repos.NewTransactionRepo(deps.DB, deps.Log)
	}
	if deps.CASGuard.db == nil {
		deps.CASGuard = NewCASGuard(deps.DB)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &gormAccountStore{deps: deps, log: deps.Log.With("store", "GormAccountStore")}
}

func (s *gormAccountStore) Create(dbc dbctx.Context, acct *accounts.Account) error {
	if acct == nil {
		return ValidationError("account is required")
	}
	owners, err := json.Marshal(acct.Owners())
	if err != nil {
		return fmt.Errorf("marshal owners: %w", err)
	}
	row := &repos.AccountRow{
		ID:       acct.ID(),
		OwnerIDs: datatypes.JSON(owners),
		Balance:  accountsrepo.NewMoney(acct.Balance()),
		Version:  acct.Version(),
	}
	return s.inTx(dbc, func(dbc dbctx.Context) error {
		if _, err := s.deps.Accounts.Create(dbc, []*repos.AccountRow{row}); err != nil {
			return err
		}
		return s.insertPending(dbc, acct)
	})
}

func (s *gormAccountStore) Load(dbc dbctx.Context, id uuid.UUID) (*accounts.Account, error) {
	row, err := s.deps.Accounts.GetByID(dbc, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accountNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	txRows, err := s.deps.Transactions.ListByAccountID(dbc, id)
	if err != nil {
		return nil, err
	}

	var owners []uuid.UUID
	if err := json.Unmarshal(row.OwnerIDs, &owners); err != nil {
		return nil, InvariantError(fmt.Sprintf("account %s: unreadable owner_ids: %v", id, err))
	}
	ledger := make([]accounts.Transaction, 0, len(txRows))
	for i, tr := range txRows {
		if tr.Seq != int64(i+1) {
			return nil, InvariantError(fmt.Sprintf("account %s: ledger gap at seq %d", id, tr.Seq))
		}
		ledger = append(ledger, accounts.Transaction{
			ID:        tr.ID,
			AccountID: tr.AccountID,
			Amount:    tr.Amount.Decimal,
			Kind:      accounts.Kind(tr.Kind),
			Note:      tr.Note,
			CreatedAt: tr.CreatedAt.UTC(),
		})
	}

	acct, err := accounts.Rehydrate(row.ID, owners, row.Balance.Decimal, ledger, row.Version, s.deps.AccountOptions...)
	if err != nil {
		s.log.Error("Stored account failed rehydration", "account_id", id, "error", err)
		return nil, InvariantError(err.Error())
	}
	return acct, nil
}

func (s *gormAccountStore) Save(dbc dbctx.Context, accts ...*accounts.Account) error {
	ordered, err := saveOrder(accts)
	if err != nil {
		return err
	}
	if len(ordered) == 0 {
		return nil
	}
	return s.inTx(dbc, func(dbc dbctx.Context) error {
		now := s.deps.Clock().UTC()
		for _, acct := range ordered {
			expected := acct.Version()
			ok, err := s.deps.CASGuard.UpdateByVersion(dbc, accountTable, acct.ID(), expected, map[string]any{
				"balance":    accountsrepo.NewMoney(acct.Balance()),
				"version":    expected + 1,
				"updated_at": now,
			})
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, fmt.Sprintf("account %s moved past version %d", acct.ID(), expected)); err != nil {
				return err
			}
			if err := s.insertPending(dbc, acct); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormAccountStore) insertPending(dbc dbctx.Context, acct *accounts.Account) error {
	pending := acct.Pending()
	if len(pending) == 0 {
		return nil
	}
	base := int64(acct.CommittedEntryCount())
	rows := make([]*repos.TransactionRow, 0, len(pending))
	for i, tx := range pending {
		rows = append(rows, &repos.TransactionRow{
			ID:        tx.ID,
			AccountID: tx.AccountID,
			Seq:       base + int64(i) + 1,
			Amount:    accountsrepo.NewMoney(tx.Amount),
			Kind:      string(tx.Kind),
			Note:      tx.Note,
			CreatedAt: tx.CreatedAt,
		})
	}
	_, err := s.deps.Transactions.Create(dbc, rows)
	return err
}

// inTx reuses the caller's transaction, or opens one so multi-row writes
// stay all-or-nothing.
func (s *gormAccountStore) inTx(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	db := dbc.DB(s.deps.DB)
	if db == nil {
		return ValidationError("missing db")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

// saveOrder drops accounts without pending changes and sorts the rest by id
// so concurrent multi-account saves lock rows in the same order.
func saveOrder(accts []*accounts.Account) ([]*accounts.Account, error) {
	out := make([]*accounts.Account, 0, len(accts))
	seen := make(map[uuid.UUID]struct{}, len(accts))
	for _, a := range accts {
		if a == nil {
			return nil, ValidationError("nil account in save")
		}
		if _, dup := seen[a.ID()]; dup {
			return nil, ValidationError(fmt.Sprintf("account %s supplied twice", a.ID()))
		}
		seen[a.ID()] = struct{}{}
		if a.HasPendingChanges() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ID(), out[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return out, nil
}

func accountNotFound(id uuid.UUID) error {
	return &accounts.Error{Code: accounts.CodeAccountNotFound, Message: fmt.Sprintf("account %s not found", id)}
}
