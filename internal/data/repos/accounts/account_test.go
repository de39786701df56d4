package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/data/repos/accounts"
	"github.com/yungbote/ledger-backend/internal/data/repos/testutil"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
)

func TestAccountRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := accounts.NewAccountRepo(db, testutil.Logger(t))

	row := &accounts.AccountRow{
		ID:       uuid.New(),
		OwnerIDs: datatypes.JSON([]byte(`["` + uuid.NewString() + `"]`)),
		Balance:  accounts.NewMoney(decimal.RequireFromString("12.5")),
		Version:  1,
	}
	if _, err := repo.Create(dbc, []*accounts.AccountRow{row}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(dbc, row.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Version != 1 || !got.Balance.Equal(row.Balance.Decimal) {
		t.Fatalf("GetByID: unexpected row %+v", got)
	}

	if _, err := repo.GetByID(dbc, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID missing: want ErrRecordNotFound, got %v", err)
	}

	other := testutil.SeedAccount(t, ctx, tx)
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{row.ID, other.ID, uuid.New()})
	if err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	dup := *row
	if _, err := repo.Create(dbc, []*accounts.AccountRow{&dup}); err == nil {
		t.Fatalf("Create duplicate: expected error")
	}
}

func TestTransactionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := accounts.NewTransactionRepo(db, testutil.Logger(t))
	acct := testutil.SeedAccount(t, ctx, tx)

	testutil.SeedTransaction(t, ctx, tx, acct.ID, 2, "5", "credit")
	testutil.SeedTransaction(t, ctx, tx, acct.ID, 1, "10", "debit")

	rows, err := repo.ListByAccountID(dbc, acct.ID)
	if err != nil {
		t.Fatalf("ListByAccountID: %v", err)
	}
	if len(rows) != 2 || rows[0].Seq != 1 || rows[1].Seq != 2 {
		t.Fatalf("ListByAccountID: want seq order, got %+v", rows)
	}

	n, err := repo.CountByAccountID(dbc, acct.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountByAccountID: err=%v n=%d", err, n)
	}
}

func TestTransactionRepoRejectsDuplicateSeq(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	acct := testutil.SeedAccount(t, ctx, db)

	repo := accounts.NewTransactionRepo(db, testutil.Logger(t))
	mk := func() *accounts.TransactionRow {
		return &accounts.TransactionRow{
			ID:        uuid.New(),
			AccountID: acct.ID,
			Seq:       1,
			Amount:    accounts.NewMoney(decimal.RequireFromString("1")),
			Kind:      "debit",
		}
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := repo.Create(dbc, []*accounts.TransactionRow{mk()}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := repo.Create(dbc, []*accounts.TransactionRow{mk()}); err == nil {
		t.Fatalf("second insert at same seq: expected unique violation")
	}
}
