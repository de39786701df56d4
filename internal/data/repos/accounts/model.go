package accounts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AccountRow is the persisted account header. Version is the optimistic
// concurrency token compared on every balance update.
type AccountRow struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerIDs  datatypes.JSON `gorm:"column:owner_ids;not null" json:"owner_ids"`
	Balance   Money          `gorm:"not null" json:"balance"`
	Version   int64          `gorm:"not null" json:"version"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (AccountRow) TableName() string { return "account" }

// TransactionRow is one ledger entry. (account_id, seq) is unique, so two
// writers appending at the same ledger position collide even if the version
// check were bypassed.
type TransactionRow struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_account_transaction_seq,priority:1" json:"account_id"`
	Seq       int64          `gorm:"not null;uniqueIndex:idx_account_transaction_seq,priority:2" json:"seq"`
	Amount    Money          `gorm:"not null" json:"amount"`
	Kind      string         `gorm:"type:varchar(16);not null" json:"kind"`
	Note      string         `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (TransactionRow) TableName() string { return "account_transaction" }
