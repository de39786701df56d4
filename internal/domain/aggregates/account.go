package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
)

var AccountAggregateContract = Contract{
	Name:        "Ledger.AccountAggregate",
	TxOwnership: TxOwnedByAggregate,
	Concurrency: ConcurrencyOptimistic,
	Delivery:    DeliveryAfterCommit,
	Notes:       "One entry event per committed ledger entry.",
}

// AccountAggregate owns the account mutation protocol.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodePreconditionFailed,
// CodeInvariantViolation, CodeRetriesExhausted, CodeCanceled, CodeInternal.
// Business failures keep their *accounts.Error in the chain.
type AccountAggregate interface {
	Aggregate

	// OpenAccount persists a new account at version 1 with zero balance.
	OpenAccount(ctx context.Context, in OpenAccountInput) (AccountSnapshot, error)

	// GetAccount loads the committed state of an account.
	GetAccount(ctx context.Context, accountID uuid.UUID) (AccountSnapshot, error)

	// RecordIncome deposits amount under conflict retry and publishes MoneyDeposited.
	RecordIncome(ctx context.Context, in MoneyInput) (MutationResult, error)

	// RecordExpense withdraws amount under conflict retry and publishes MoneyWithdrawn.
	RecordExpense(ctx context.Context, in MoneyInput) (MutationResult, error)

	// Transfer moves amount between two accounts in one transaction and
	// publishes one event per side.
	Transfer(ctx context.Context, in TransferInput) (MutationResult, error)
}

type OpenAccountInput struct {
	AccountID uuid.UUID
	OwnerIDs  []uuid.UUID
}

type MoneyInput struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Note      string
}

type TransferInput struct {
	SourceID      uuid.UUID
	DestinationID uuid.UUID
	Amount        decimal.Decimal
}

// AccountSnapshot is a read-only copy of committed account state.
type AccountSnapshot struct {
	AccountID uuid.UUID
	OwnerIDs  []uuid.UUID
	Balance   decimal.Decimal
	Version   int64
	Ledger    []accounts.Transaction
}

type MutationResult struct {
	Accounts    []AccountSnapshot
	Entries     []accounts.Transaction
	Attempts    int
	Published   int
	CommittedAt time.Time
}

// SnapshotOf copies the state of a.
func SnapshotOf(a *accounts.Account) AccountSnapshot {
	if a == nil {
		return AccountSnapshot{}
	}
	return AccountSnapshot{
		AccountID: a.ID(),
		OwnerIDs:  a.Owners(),
		Balance:   a.Balance(),
		Version:   a.Version(),
		Ledger:    a.Ledger(),
	}
}
