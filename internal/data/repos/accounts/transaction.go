package accounts

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

type TransactionRepo interface {
	Create(dbc dbctx.Context, rows []*TransactionRow) ([]*TransactionRow, error)
	// ListByAccountID returns the ledger of one account in seq order.
	ListByAccountID(dbc dbctx.Context, accountID uuid.UUID) ([]*TransactionRow, error)
	CountByAccountID(dbc dbctx.Context, accountID uuid.UUID) (int64, error)
}

type transactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	repoLog := baseLog.With("repo", "TransactionRepo")
	return &transactionRepo{db: db, log: repoLog}
}

func (r *transactionRepo) Create(dbc dbctx.Context, rows []*TransactionRow) ([]*TransactionRow, error) {
	transaction := dbc.DB(r.db)

	if len(rows) == 0 {
		return []*TransactionRow{}, nil
	}

	if err := transaction.Create(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *transactionRepo) ListByAccountID(dbc dbctx.Context, accountID uuid.UUID) ([]*TransactionRow, error) {
	transaction := dbc.DB(r.db)

	var results []*TransactionRow

	if accountID == uuid.Nil {
		return results, nil
	}

	if err := transaction.
		Where("account_id = ?", accountID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *transactionRepo) CountByAccountID(dbc dbctx.Context, accountID uuid.UUID) (int64, error) {
	transaction := dbc.DB(r.db)

	var n int64
	if err := transaction.Model(&TransactionRow{}).
		Where("account_id = ?", accountID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
