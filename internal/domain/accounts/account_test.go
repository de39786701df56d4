package accounts

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newAccount(t *testing.T) *Account {
	t.Helper()
	a, err := New(uuid.New(), []uuid.UUID{uuid.New()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewRejectsInvalidConstruction(t *testing.T) {
	owner := uuid.New()
	cases := []struct {
		name   string
		id     uuid.UUID
		owners []uuid.UUID
		want   error
	}{
		{"empty id", uuid.Nil, []uuid.UUID{owner}, ErrEmptyAccountID},
		{"nil owners", uuid.New(), nil, ErrEmptyOwnerIDs},
		{"empty owners", uuid.New(), []uuid.UUID{}, ErrEmptyOwnerIDs},
		{"owner contains nil", uuid.New(), []uuid.UUID{owner, uuid.Nil}, ErrOwnerIDsContainEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := New(tc.id, tc.owners)
			if a != nil {
				t.Fatalf("expected no account, got %+v", a)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if !IsConstructionError(err) {
				t.Fatalf("expected construction error, got %v", err)
			}
		})
	}
}

func TestNewCollapsesDuplicateOwners(t *testing.T) {
	o1, o2 := uuid.New(), uuid.New()
	a, err := New(uuid.New(), []uuid.UUID{o1, o2, o1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	owners := a.Owners()
	if len(owners) != 2 || owners[0] != o1 || owners[1] != o2 {
		t.Fatalf("unexpected owners: %v", owners)
	}
	if !a.Balance().IsZero() || len(a.Ledger()) != 0 || a.Version() != InitialVersion {
		t.Fatalf("fresh account state wrong: balance=%s ledger=%d version=%d", a.Balance(), len(a.Ledger()), a.Version())
	}
}

func TestNonPositiveAmountsLeaveStateUnchanged(t *testing.T) {
	a := newAccount(t)
	if _, err := a.Deposit(dec("10"), "seed"); err != nil {
		t.Fatalf("seed deposit: %v", err)
	}
	for _, amt := range []string{"0", "-1", "-0.01"} {
		if _, err := a.Deposit(dec(amt), ""); CodeOf(err) != CodeInvalidAmount {
			t.Fatalf("Deposit(%s): want InvalidAmount, got %v", amt, err)
		}
		if _, err := a.Withdraw(dec(amt), ""); CodeOf(err) != CodeInvalidAmount {
			t.Fatalf("Withdraw(%s): want InvalidAmount, got %v", amt, err)
		}
	}
	if !a.Balance().Equal(dec("10")) || len(a.Ledger()) != 1 {
		t.Fatalf("state changed: balance=%s entries=%d", a.Balance(), len(a.Ledger()))
	}
}

func TestWithdrawChecksAmountBeforeFunds(t *testing.T) {
	a := newAccount(t)
	// zero balance and a negative amount: amount validity wins
	if _, err := a.Withdraw(dec("-5"), ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want InvalidAmount, got %v", err)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	a := newAccount(t)
	_, _ = a.Deposit(dec("100"), "")
	if _, err := a.Withdraw(dec("100.01"), ""); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want InsufficientFunds, got %v", err)
	}
	if !a.Balance().Equal(dec("100")) || len(a.Ledger()) != 1 {
		t.Fatalf("state changed: balance=%s entries=%d", a.Balance(), len(a.Ledger()))
	}
}

func TestDepositThenWithdraw(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a, err := New(uuid.New(), []uuid.UUID{uuid.New()}, WithClock(func() time.Time { return at }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dep, err := a.Deposit(dec("100"), "salary")
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if !a.Balance().Equal(dec("100")) || dep.Kind != KindDebit || !dep.Amount.Equal(dec("100")) {
		t.Fatalf("after deposit: balance=%s entry=%+v", a.Balance(), dep)
	}
	if dep.ID == uuid.Nil || dep.AccountID != a.ID() || !dep.CreatedAt.Equal(at) || dep.Note != "salary" {
		t.Fatalf("deposit entry fields wrong: %+v", dep)
	}

	if _, err := a.Withdraw(dec("50"), "rent"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	ledger := a.Ledger()
	if !a.Balance().Equal(dec("50")) || len(ledger) != 2 {
		t.Fatalf("after withdraw: balance=%s entries=%d", a.Balance(), len(ledger))
	}
	if ledger[0].Kind != KindDebit || !ledger[0].Amount.Equal(dec("100")) {
		t.Fatalf("entry 0: %+v", ledger[0])
	}
	if ledger[1].Kind != KindCredit || !ledger[1].Amount.Equal(dec("50")) {
		t.Fatalf("entry 1: %+v", ledger[1])
	}
	if len(a.Pending()) != 2 || !a.HasPendingChanges() {
		t.Fatalf("expected 2 pending entries")
	}
	a.MarkCommitted(2)
	if len(a.Pending()) != 0 || a.Version() != 2 || a.CommittedEntryCount() != 2 {
		t.Fatalf("MarkCommitted did not settle pending entries")
	}
}

func TestTransfer(t *testing.T) {
	src, dst := newAccount(t), newAccount(t)
	_, _ = src.Deposit(dec("300"), "")

	out, in, err := src.Transfer(dec("100"), dst)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !src.Balance().Equal(dec("200")) || !dst.Balance().Equal(dec("100")) {
		t.Fatalf("balances: src=%s dst=%s", src.Balance(), dst.Balance())
	}
	if out.Kind != KindCredit || out.AccountID != src.ID() || !out.Amount.Equal(dec("100")) {
		t.Fatalf("source entry: %+v", out)
	}
	if in.Kind != KindDebit || in.AccountID != dst.ID() || !in.Amount.Equal(dec("100")) {
		t.Fatalf("destination entry: %+v", in)
	}
	if len(dst.Ledger()) != 1 || len(src.Ledger()) != 2 {
		t.Fatalf("ledger sizes: src=%d dst=%d", len(src.Ledger()), len(dst.Ledger()))
	}
}

func TestTransferMissingDestinationLeavesSourceUnchanged(t *testing.T) {
	src := newAccount(t)
	_, _ = src.Deposit(dec("300"), "")
	if _, _, err := src.Transfer(dec("100"), nil); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want AccountNotFound, got %v", err)
	}
	if !src.Balance().Equal(dec("300")) || len(src.Ledger()) != 1 {
		t.Fatalf("source changed: balance=%s entries=%d", src.Balance(), len(src.Ledger()))
	}
}

func TestTransferFailedWithdrawLeavesDestinationUntouched(t *testing.T) {
	src, dst := newAccount(t), newAccount(t)
	if _, _, err := src.Transfer(dec("1"), dst); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want InsufficientFunds, got %v", err)
	}
	if !dst.Balance().IsZero() || len(dst.Ledger()) != 0 {
		t.Fatalf("destination touched: balance=%s entries=%d", dst.Balance(), len(dst.Ledger()))
	}
}

func TestTransferToSelf(t *testing.T) {
	a := newAccount(t)
	_, _ = a.Deposit(dec("5"), "")
	if _, _, err := a.Transfer(dec("1"), a); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("want SameAccount, got %v", err)
	}
}

func TestRehydrate(t *testing.T) {
	id := uuid.New()
	owners := []uuid.UUID{uuid.New()}
	ledger := []Transaction{
		{ID: uuid.New(), AccountID: id, Amount: dec("100"), Kind: KindDebit},
		{ID: uuid.New(), AccountID: id, Amount: dec("40"), Kind: KindCredit},
	}

	a, err := Rehydrate(id, owners, dec("60"), ledger, 3)
	if err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if a.Version() != 3 || len(a.Pending()) != 0 || len(a.Ledger()) != 2 {
		t.Fatalf("rehydrated state wrong: version=%d pending=%d", a.Version(), len(a.Pending()))
	}

	if _, err := Rehydrate(id, owners, dec("61"), ledger, 3); err == nil {
		t.Fatalf("expected balance/ledger mismatch error")
	}
	if _, err := Rehydrate(id, owners, dec("60"), ledger, 0); err == nil {
		t.Fatalf("expected invalid version error")
	}
	if _, err := Rehydrate(uuid.Nil, owners, dec("0"), nil, 1); !errors.Is(err, ErrEmptyAccountID) {
		t.Fatalf("want EmptyAccountId, got %v", err)
	}
}

func TestLedgerIsACopy(t *testing.T) {
	a := newAccount(t)
	_, _ = a.Deposit(dec("1"), "")
	l := a.Ledger()
	l[0].Amount = dec("999")
	if !a.Ledger()[0].Amount.Equal(dec("1")) {
		t.Fatalf("ledger mutated through returned slice")
	}
}

func TestEventFor(t *testing.T) {
	a := newAccount(t)
	dep, _ := a.Deposit(dec("10"), "")
	wd, _ := a.Withdraw(dec("4"), "")
	evs := EventsFor([]Transaction{dep, wd})
	if len(evs) != 2 {
		t.Fatalf("want 2 events, got %d", len(evs))
	}
	if evs[0].Type != EventMoneyDeposited || evs[0].TransactionID != dep.ID || !evs[0].Amount.Equal(dec("10")) {
		t.Fatalf("deposit event: %+v", evs[0])
	}
	if evs[1].Type != EventMoneyWithdrawn || evs[1].AccountID != a.ID() || evs[1].OccurredAt != wd.CreatedAt {
		t.Fatalf("withdraw event: %+v", evs[1])
	}
}
