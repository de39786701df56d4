package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_BusinessCodes(t *testing.T) {
	cases := []struct {
		in   error
		want domainagg.ErrorCode
	}{
		{accounts.ValidateAmount(decimal.Zero), domainagg.CodeValidation},
		{accounts.ErrEmptyOwnerIDs, domainagg.CodeValidation},
		{accounts.ErrSameAccount, domainagg.CodeValidation},
		{accounts.ErrInsufficientFunds, domainagg.CodePreconditionFailed},
		{fmt.Errorf("load: %w", accounts.ErrAccountNotFound), domainagg.CodeNotFound},
	}
	for _, tc := range cases {
		out := MapError("op", tc.in)
		if domainagg.CodeOf(out) != tc.want {
			t.Fatalf("MapError(%v): want %s got %s", tc.in, tc.want, domainagg.CodeOf(out))
		}
		if accounts.CodeOf(out) != accounts.CodeOf(tc.in) {
			t.Fatalf("business code lost: want %s got %s", accounts.CodeOf(tc.in), accounts.CodeOf(out))
		}
	}
}

func TestMapError_ContextIsCanceledNotRetryable(t *testing.T) {
	for _, in := range []error{context.Canceled, context.DeadlineExceeded} {
		out := MapError("op", in)
		if !domainagg.IsCode(out, domainagg.CodeCanceled) || domainagg.IsConflict(out) {
			t.Fatalf("MapError(%v): got %q", in, domainagg.CodeOf(out))
		}
	}
}

func TestMapError_PgCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"23503": domainagg.CodePreconditionFailed,
		"40001": domainagg.CodeRetryable,
		"40P01": domainagg.CodeRetryable,
		"55P03": domainagg.CodeRetryable,
		"42P01": domainagg.CodeInternal,
	}
	for code, want := range cases {
		out := MapError("op", &pgconn.PgError{Code: code, Message: "x"})
		if domainagg.CodeOf(out) != want {
			t.Fatalf("pg %s: want %s got %s", code, want, domainagg.CodeOf(out))
		}
	}
}

func TestMapError_SQLiteMessages(t *testing.T) {
	if got := domainagg.CodeOf(MapError("op", errors.New("UNIQUE constraint failed: account_transaction.account_id, account_transaction.seq"))); got != domainagg.CodeConflict {
		t.Fatalf("sqlite unique: got %s", got)
	}
	if got := domainagg.CodeOf(MapError("op", errors.New("database is locked"))); got != domainagg.CodeRetryable {
		t.Fatalf("sqlite locked: got %s", got)
	}
	if got := domainagg.CodeOf(MapError("op", errors.New("disk I/O error"))); got != domainagg.CodeInternal {
		t.Fatalf("generic: got %s", got)
	}
}

func TestMapError_DriverTextFallback(t *testing.T) {
	cases := []struct {
		msg  string
		want domainagg.ErrorCode
	}{
		{"ERROR: could not serialize access due to concurrent update", domainagg.CodeRetryable},
		{"ERROR: could not serialize access due to read/write dependencies", domainagg.CodeRetryable},
		{"ERROR: deadlock detected", domainagg.CodeRetryable},
		{"ERROR: could not obtain lock on row: lock not available", domainagg.CodeRetryable},
		{"database is locked", domainagg.CodeRetryable},
		{"UNIQUE constraint failed: account_transaction.account_id", domainagg.CodeConflict},
		{"pq: connection refused", domainagg.CodeInternal},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("op", errors.New(tc.msg))); got != tc.want {
			t.Fatalf("MapError(%q): want %s got %s", tc.msg, tc.want, got)
		}
	}
}
