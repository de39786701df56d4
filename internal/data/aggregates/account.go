package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
	"github.com/yungbote/ledger-backend/internal/pkg/ctxutil"
	"github.com/yungbote/ledger-backend/internal/pkg/dbctx"
)

// Notifier receives the events of a committed mutation and reports how many
// were delivered. Delivery failures stay inside the notifier.
type Notifier interface {
	Dispatch(ctx context.Context, events []accounts.Event) int
}

type noopNotifier struct{}

func (noopNotifier) Dispatch(context.Context, []accounts.Event) int { return 0 }

type AccountAggregateDeps struct {
	Base BaseDeps

	Store    AccountStore
	Retry    RetryPolicy
	Notifier Notifier
	Clock    func() time.Time
}

type accountAggregate struct {
	deps AccountAggregateDeps
}

func NewAccountAggregate(deps AccountAggregateDeps) domainagg.AccountAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Store == nil {
		deps.Store = NewGormAccountStore(GormAccountStoreDeps{
			DB:             deps.Base.DB,
			Log:            deps.Base.Log,
			CASGuard:       deps.Base.CASGuard,
			AccountOptions: []accounts.Option{accounts.WithClock(deps.Clock)},
			Clock:          deps.Clock,
		})
	}
	if deps.Retry.MaxAttempts == 0 && deps.Retry.Schedule == nil {
		deps.Retry = DefaultRetryPolicy()
	}
	if deps.Notifier == nil {
		deps.Notifier = noopNotifier{}
	}
	deps.Base.Log = deps.Base.Log.With("aggregate", "AccountAggregate")
	return &accountAggregate{deps: deps}
}

func (a *accountAggregate) Contract() domainagg.Contract {
	return domainagg.AccountAggregateContract
}

func (a *accountAggregate) OpenAccount(ctx context.Context, in domainagg.OpenAccountInput) (domainagg.AccountSnapshot, error) {
	const op = "Ledger.Account.Open"
	ctx = ctxutil.Default(ctx)

	acct, err := accounts.New(in.AccountID, in.OwnerIDs, accounts.WithClock(a.deps.Clock))
	if err != nil {
		return domainagg.AccountSnapshot{}, MapError(op, err)
	}
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		return a.deps.Store.Create(dbc, acct)
	})
	if err != nil {
		a.logFailure(ctx, op, err, 1)
		return domainagg.AccountSnapshot{}, err
	}
	a.deps.Base.Log.Info("Account opened", append(ctxutil.LogFields(ctx), "account_id", acct.ID(), "owner_ids", acct.Owners())...)
	return domainagg.SnapshotOf(acct), nil
}

func (a *accountAggregate) GetAccount(ctx context.Context, accountID uuid.UUID) (domainagg.AccountSnapshot, error) {
	const op = "Ledger.Account.Get"
	ctx = ctxutil.Default(ctx)

	acct, err := a.deps.Store.Load(dbctx.Context{Ctx: ctx}, accountID)
	if err != nil {
		return domainagg.AccountSnapshot{}, MapError(op, err)
	}
	return domainagg.SnapshotOf(acct), nil
}

func (a *accountAggregate) RecordIncome(ctx context.Context, in domainagg.MoneyInput) (domainagg.MutationResult, error) {
	const op = "Ledger.Account.RecordIncome"
	return a.mutate(ctx, op, func(dbc dbctx.Context) ([]*accounts.Account, error) {
		acct, err := a.deps.Store.Load(dbc, in.AccountID)
		if err != nil {
			return nil, err
		}
		if _, err := acct.Deposit(in.Amount, in.Note); err != nil {
			return nil, err
		}
		return []*accounts.Account{acct}, nil
	})
}

func (a *accountAggregate) RecordExpense(ctx context.Context, in domainagg.MoneyInput) (domainagg.MutationResult, error) {
	const op = "Ledger.Account.RecordExpense"
	return a.mutate(ctx, op, func(dbc dbctx.Context) ([]*accounts.Account, error) {
		acct, err := a.deps.Store.Load(dbc, in.AccountID)
		if err != nil {
			return nil, err
		}
		if _, err := acct.Withdraw(in.Amount, in.Note); err != nil {
			return nil, err
		}
		return []*accounts.Account{acct}, nil
	})
}

func (a *accountAggregate) Transfer(ctx context.Context, in domainagg.TransferInput) (domainagg.MutationResult, error) {
	const op = "Ledger.Account.Transfer"
	return a.mutate(ctx, op, func(dbc dbctx.Context) ([]*accounts.Account, error) {
		src, err := a.deps.Store.Load(dbc, in.SourceID)
		if err != nil {
			return nil, err
		}
		// A missing destination is handed to the aggregate as nil so the
		// failure comes from the same rule path as every other transfer check.
		dst, err := a.deps.Store.Load(dbc, in.DestinationID)
		if err != nil && accounts.CodeOf(err) != accounts.CodeAccountNotFound {
			return nil, err
		}
		if _, _, err := src.Transfer(in.Amount, dst); err != nil {
			return nil, err
		}
		return []*accounts.Account{src, dst}, nil
	})
}

// mutate runs load, mutate and save under the conflict-retry loop, then marks
// the saved instances committed and hands their new entries to the notifier.
func (a *accountAggregate) mutate(ctx context.Context, op string, apply func(dbc dbctx.Context) ([]*accounts.Account, error)) (domainagg.MutationResult, error) {
	ctx = ctxutil.Default(ctx)

	var saved []*accounts.Account
	attempts, err := retryOnConflict(ctx, a.deps.Retry, a.deps.Base.Hooks, op, func(ctx context.Context, _ int) error {
		saved = nil
		return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
			touched, err := apply(dbc)
			if err != nil {
				return err
			}
			if err := a.deps.Store.Save(dbc, touched...); err != nil {
				return err
			}
			saved = touched
			return nil
		})
	})
	if err != nil {
		a.logFailure(ctx, op, err, attempts)
		return domainagg.MutationResult{Attempts: attempts}, err
	}

	out := domainagg.MutationResult{
		Attempts:    attempts,
		CommittedAt: a.deps.Clock().UTC(),
	}
	for _, acct := range saved {
		out.Entries = append(out.Entries, acct.Pending()...)
		acct.MarkCommitted(acct.Version() + 1)
		out.Accounts = append(out.Accounts, domainagg.SnapshotOf(acct))
	}

	// The write is durable; a canceled caller must not suppress its events.
	out.Published = a.deps.Notifier.Dispatch(context.WithoutCancel(ctx), accounts.EventsFor(out.Entries))

	if attempts > 1 {
		a.deps.Base.Log.Info("Account mutation committed after conflicts", append(ctxutil.LogFields(ctx), "op", op, "attempts", attempts)...)
	}
	return out, nil
}

func (a *accountAggregate) logFailure(ctx context.Context, op string, err error, attempts int) {
	kv := append(ctxutil.LogFields(ctx), "op", op, "attempts", attempts, "error", err)
	if code := accounts.CodeOf(err); code != "" {
		a.deps.Base.Log.Debug("Account command rejected", append(kv, "code", code)...)
		return
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeRetriesExhausted:
		a.deps.Base.Log.Warn("Account mutation gave up on conflicts", kv...)
	case domainagg.CodeCanceled:
		a.deps.Base.Log.Info("Account mutation canceled", kv...)
	case domainagg.CodeInternal, domainagg.CodeInvariantViolation:
		a.deps.Base.Log.Error("Account mutation failed", kv...)
	default:
		a.deps.Base.Log.Debug("Account mutation failed", kv...)
	}
}
