package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventMoneyDeposited EventType = "MoneyDeposited"
	EventMoneyWithdrawn EventType = "MoneyWithdrawn"
)

// Event is the outbound notification for one committed ledger entry.
type Event struct {
	ID            uuid.UUID       `json:"id"`
	Type          EventType       `json:"type"`
	AccountID     uuid.UUID       `json:"account_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// EventFor maps a committed entry to its event.
func EventFor(tx Transaction) Event {
	typ := EventMoneyDeposited
	if tx.Kind == KindCredit {
		typ = EventMoneyWithdrawn
	}
	return Event{
		ID:            uuid.New(),
		Type:          typ,
		AccountID:     tx.AccountID,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Note:          tx.Note,
		OccurredAt:    tx.CreatedAt,
	}
}

func EventsFor(txs []Transaction) []Event {
	out := make([]Event, 0, len(txs))
	for _, tx := range txs {
		out = append(out, EventFor(tx))
	}
	return out
}
