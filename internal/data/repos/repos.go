package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/data/repos/accounts"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

type AccountRow = accounts.AccountRow
type TransactionRow = accounts.TransactionRow

type AccountRepo = accounts.AccountRepo
type TransactionRepo = accounts.TransactionRepo

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	return accounts.NewAccountRepo(db, baseLog)
}
func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	return accounts.NewTransactionRepo(db, baseLog)
}
