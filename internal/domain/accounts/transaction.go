package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the direction of a ledger entry. Amounts are always positive.
type Kind string

const (
	// KindDebit increases the balance.
	KindDebit Kind = "debit"
	// KindCredit decreases the balance.
	KindCredit Kind = "credit"
)

func (k Kind) Valid() bool {
	return k == KindDebit || k == KindCredit
}

// Transaction is one immutable ledger entry.
type Transaction struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Kind      Kind
	Note      string
	CreatedAt time.Time
}

// Signed returns the entry's effect on the balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindCredit {
		return t.Amount.Neg()
	}
	return t.Amount
}
