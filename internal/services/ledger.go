package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
	"github.com/yungbote/ledger-backend/internal/pkg/ctxutil"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

// Result reports the outcome of a ledger command. Code is empty on success;
// otherwise Code and Message describe a business-rule failure.
type Result struct {
	Code    accounts.Code
	Message string

	Account  *domainagg.AccountSnapshot
	Mutation *domainagg.MutationResult
}

func (r Result) OK() bool { return r.Code == "" }

type OpenAccountCommand struct {
	// AccountID nil means generate one. A pointer to uuid.Nil is rejected.
	AccountID *uuid.UUID
	OwnerIDs  []uuid.UUID
}

// LedgerService is the command surface over the account aggregate. Business
// failures come back in Result; the error return is reserved for
// infrastructure faults, exhausted retries, duplicate ids and cancellation.
type LedgerService interface {
	OpenAccount(ctx context.Context, cmd OpenAccountCommand) (Result, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (Result, error)
	RecordIncome(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, note string) (Result, error)
	RecordExpense(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, note string) (Result, error)
	Transfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (Result, error)
}

type ledgerService struct {
	log *logger.Logger
	agg domainagg.AccountAggregate
}

func NewLedgerService(log *logger.Logger, agg domainagg.AccountAggregate) LedgerService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ledgerService{
		log: log.With("service", "LedgerService"),
		agg: agg,
	}
}

func (s *ledgerService) OpenAccount(ctx context.Context, cmd OpenAccountCommand) (Result, error) {
	ctx = ctxutil.Default(ctx)
	id := uuid.New()
	if cmd.AccountID != nil {
		id = *cmd.AccountID
	}
	snap, err := s.agg.OpenAccount(ctx, domainagg.OpenAccountInput{AccountID: id, OwnerIDs: cmd.OwnerIDs})
	if res, ok := businessFailure(err); ok {
		return res, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Account: &snap}, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, accountID uuid.UUID) (Result, error) {
	ctx = ctxutil.Default(ctx)
	snap, err := s.agg.GetAccount(ctx, accountID)
	if res, ok := businessFailure(err); ok {
		return res, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Account: &snap}, nil
}

func (s *ledgerService) RecordIncome(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, note string) (Result, error) {
	ctx = ctxutil.Default(ctx)
	out, err := s.agg.RecordIncome(ctx, domainagg.MoneyInput{AccountID: accountID, Amount: amount, Note: note})
	return s.mutationResult(ctx, "RecordIncome", out, err)
}

func (s *ledgerService) RecordExpense(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, note string) (Result, error) {
	ctx = ctxutil.Default(ctx)
	out, err := s.agg.RecordExpense(ctx, domainagg.MoneyInput{AccountID: accountID, Amount: amount, Note: note})
	return s.mutationResult(ctx, "RecordExpense", out, err)
}

func (s *ledgerService) Transfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (Result, error) {
	ctx = ctxutil.Default(ctx)
	out, err := s.agg.Transfer(ctx, domainagg.TransferInput{SourceID: sourceID, DestinationID: destinationID, Amount: amount})
	return s.mutationResult(ctx, "Transfer", out, err)
}

func (s *ledgerService) mutationResult(ctx context.Context, command string, out domainagg.MutationResult, err error) (Result, error) {
	if res, ok := businessFailure(err); ok {
		return res, nil
	}
	if err != nil {
		s.log.Warn("Ledger command failed", append(ctxutil.LogFields(ctx), "command", command, "attempts", out.Attempts, "error", err)...)
		return Result{}, err
	}
	res := Result{Mutation: &out}
	if len(out.Accounts) > 0 {
		acct := out.Accounts[0]
		res.Account = &acct
	}
	return res, nil
}

// businessFailure turns a business-rule error into a Result.
func businessFailure(err error) (Result, bool) {
	if err == nil {
		return Result{}, false
	}
	var bizErr *accounts.Error
	if !errors.As(err, &bizErr) || bizErr == nil {
		return Result{}, false
	}
	msg := bizErr.Message
	if msg == "" {
		msg = string(bizErr.Code)
	}
	return Result{Code: bizErr.Code, Message: msg}, true
}
