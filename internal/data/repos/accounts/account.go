package accounts

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

type AccountRepo interface {
	Create(dbc dbctx.Context, rows []*AccountRow) ([]*AccountRow, error)
	// GetByID returns gorm.ErrRecordNotFound when the account does not exist.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*AccountRow, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*AccountRow, error)
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "AccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

func (r *accountRepo) Create(dbc dbctx.Context, rows []*AccountRow) ([]*AccountRow, error) {
	transaction := dbc.DB(r.db)

	if len(rows) == 0 {
		return []*AccountRow{}, nil
	}

	if err := transaction.Create(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *accountRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*AccountRow, error) {
	transaction := dbc.DB(r.db)

	if id == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var row AccountRow
	if err := transaction.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

func (r *accountRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*AccountRow, error) {
	transaction := dbc.DB(r.db)

	var results []*AccountRow

	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
