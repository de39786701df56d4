package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/data/repos/accounts"
)

// SeedAccount inserts an account row with an empty ledger at version 1.
func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, owners ...uuid.UUID) *accounts.AccountRow {
	tb.Helper()
	if len(owners) == 0 {
		owners = []uuid.UUID{uuid.New()}
	}
	raw, err := json.Marshal(owners)
	if err != nil {
		tb.Fatalf("marshal owners: %v", err)
	}
	row := &accounts.AccountRow{
		ID:       uuid.New(),
		OwnerIDs: datatypes.JSON(raw),
		Balance:  accounts.NewMoney(decimal.Zero),
		Version:  1,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return row
}

// SeedTransaction appends a ledger row at seq without touching the balance.
func SeedTransaction(tb testing.TB, ctx context.Context, tx *gorm.DB, accountID uuid.UUID, seq int64, amount string, kind string) *accounts.TransactionRow {
	tb.Helper()
	row := &accounts.TransactionRow{
		ID:        uuid.New(),
		AccountID: accountID,
		Seq:       seq,
		Amount:    accounts.NewMoney(decimal.RequireFromString(amount)),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed transaction: %v", err)
	}
	return row
}
