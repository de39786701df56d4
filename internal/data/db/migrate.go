package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/data/repos/accounts"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Ledger
		// =========================
		&accounts.AccountRow{},
		&accounts.TransactionRow{},
	)
}
