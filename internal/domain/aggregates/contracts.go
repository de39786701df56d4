package aggregates

// TxOwnership says who opens and commits the write transaction.
type TxOwnership string

const (
	TxOwnedByAggregate TxOwnership = "aggregate_owned"
	TxOwnedByCaller    TxOwnership = "caller_owned"
)

// Concurrency names how concurrent writers to one aggregate are reconciled.
type Concurrency string

const (
	// ConcurrencyOptimistic compares a stored version on save and retries the
	// whole attempt on mismatch.
	ConcurrencyOptimistic Concurrency = "optimistic_version"
	ConcurrencyRowLock    Concurrency = "row_lock"
)

// Delivery names when events leave the aggregate.
type Delivery string

const (
	// DeliveryAfterCommit publishes only once the write is durable. A crash in
	// between loses the events.
	DeliveryAfterCommit Delivery = "after_commit"
	DeliveryOutbox      Delivery = "outbox"
)

// Contract describes the write policy an aggregate promises its callers.
type Contract struct {
	Name        string
	TxOwnership TxOwnership
	Concurrency Concurrency
	Delivery    Delivery
	Notes       string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) OwnsTx() bool { return c.TxOwnership == TxOwnedByAggregate }

// Retries reports whether a conflicting write is replayed by the aggregate
// instead of surfacing to the caller on first loss.
func (c Contract) Retries() bool { return c.Concurrency == ConcurrencyOptimistic }
