package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitialVersion is the concurrency token of a freshly created account.
const InitialVersion int64 = 1

// Account is the aggregate root. It is the only mutator of balance and ledger.
//
// An Account instance belongs to a single unit of work: load it, mutate it,
// save it, drop it. Instances are not safe for concurrent use.
type Account struct {
	id      uuid.UUID
	owners  []uuid.UUID
	balance decimal.Decimal
	ledger  []Transaction
	version int64

	// ledger[:committed] is what the store already holds.
	committed int

	now func() time.Time
}

type Option func(*Account)

// WithClock overrides the time source used to stamp ledger entries.
func WithClock(now func() time.Time) Option {
	return func(a *Account) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an account with zero balance and an empty ledger.
func New(id uuid.UUID, owners []uuid.UUID, opts ...Option) (*Account, error) {
	normalized, err := normalizeOwners(id, owners)
	if err != nil {
		return nil, err
	}
	a := &Account{
		id:      id,
		owners:  normalized,
		balance: decimal.Zero,
		version: InitialVersion,
		now:     defaultNow,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Rehydrate rebuilds an account from persisted state. The stored balance must
// agree with the ledger; a mismatch means the row is corrupt.
func Rehydrate(id uuid.UUID, owners []uuid.UUID, balance decimal.Decimal, ledger []Transaction, version int64, opts ...Option) (*Account, error) {
	a, err := New(id, owners, opts...)
	if err != nil {
		return nil, err
	}
	if version < InitialVersion {
		return nil, fmt.Errorf("account %s: invalid version %d", id, version)
	}
	sum := decimal.Zero
	for i, tx := range ledger {
		if tx.AccountID != id {
			return nil, fmt.Errorf("account %s: ledger entry %d belongs to %s", id, i, tx.AccountID)
		}
		if !tx.Kind.Valid() || !tx.Amount.IsPositive() {
			return nil, fmt.Errorf("account %s: ledger entry %d is malformed", id, i)
		}
		sum = sum.Add(tx.Signed())
	}
	if !sum.Equal(balance) {
		return nil, fmt.Errorf("account %s: balance %s does not match ledger sum %s", id, balance, sum)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("account %s: negative balance %s", id, balance)
	}
	a.balance = balance
	a.ledger = append(make([]Transaction, 0, len(ledger)), ledger...)
	a.committed = len(a.ledger)
	a.version = version
	return a, nil
}

func (a *Account) ID() uuid.UUID            { return a.id }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) Version() int64           { return a.version }
func (a *Account) Owners() []uuid.UUID      { return append([]uuid.UUID(nil), a.owners...) }
func (a *Account) Ledger() []Transaction    { return append([]Transaction(nil), a.ledger...) }
func (a *Account) Pending() []Transaction   { return append([]Transaction(nil), a.ledger[a.committed:]...) }
func (a *Account) HasPendingChanges() bool  { return a.committed < len(a.ledger) }
func (a *Account) CommittedEntryCount() int { return a.committed }

// Deposit increases the balance and appends a debit entry.
func (a *Account) Deposit(amount decimal.Decimal, note string) (Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return Transaction{}, err
	}
	a.balance = a.balance.Add(amount)
	return a.append(KindDebit, amount, note), nil
}

// Withdraw decreases the balance and appends a credit entry. Amount validity
// is checked before funds.
func (a *Account) Withdraw(amount decimal.Decimal, note string) (Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return Transaction{}, err
	}
	if amount.GreaterThan(a.balance) {
		return Transaction{}, newError(CodeInsufficientFunds, "account %s has %s, requested %s", a.id, a.balance, amount)
	}
	a.balance = a.balance.Sub(amount)
	return a.append(KindCredit, amount, note), nil
}

// Transfer withdraws from a and, only if that succeeds, deposits into dest.
// Both instances change in memory; the caller must save them together.
func (a *Account) Transfer(amount decimal.Decimal, dest *Account) (withdrawn Transaction, deposited Transaction, err error) {
	if dest == nil {
		return Transaction{}, Transaction{}, newError(CodeAccountNotFound, "transfer destination not found")
	}
	if dest == a || dest.id == a.id {
		return Transaction{}, Transaction{}, ErrSameAccount
	}
	withdrawn, err = a.Withdraw(amount, "transfer to "+dest.id.String())
	if err != nil {
		return Transaction{}, Transaction{}, err
	}
	deposited, err = dest.Deposit(amount, "transfer from "+a.id.String())
	if err != nil {
		return Transaction{}, Transaction{}, err
	}
	return withdrawn, deposited, nil
}

// MarkCommitted records that the store accepted every pending entry and now
// holds version.
func (a *Account) MarkCommitted(version int64) {
	a.committed = len(a.ledger)
	a.version = version
}

func (a *Account) append(kind Kind, amount decimal.Decimal, note string) Transaction {
	tx := Transaction{
		ID:        uuid.New(),
		AccountID: a.id,
		Amount:    amount,
		Kind:      kind,
		Note:      note,
		CreatedAt: a.now().UTC(),
	}
	a.ledger = append(a.ledger, tx)
	return tx
}

func normalizeOwners(id uuid.UUID, owners []uuid.UUID) ([]uuid.UUID, error) {
	if id == uuid.Nil {
		return nil, ErrEmptyAccountID
	}
	if len(owners) == 0 {
		return nil, ErrEmptyOwnerIDs
	}
	seen := make(map[uuid.UUID]struct{}, len(owners))
	out := make([]uuid.UUID, 0, len(owners))
	for _, o := range owners {
		if o == uuid.Nil {
			return nil, ErrOwnerIDsContainEmpty
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out, nil
}

func defaultNow() time.Time { return time.Now() }
