package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/ledger-backend/internal/data/aggregates"
	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
	"github.com/yungbote/ledger-backend/internal/http/response"
	"github.com/yungbote/ledger-backend/internal/services"
)

func newTestEngine(t *testing.T, ledger services.LedgerService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if ledger == nil {
		agg := aggregates.NewAccountAggregate(aggregates.AccountAggregateDeps{
			Store: aggregates.NewMemoryAccountStore(),
			Retry: aggregates.RetryPolicy{MaxAttempts: 3, Schedule: aggregates.ImmediateSchedule()},
		})
		ledger = services.NewLedgerService(nil, agg)
	}
	h := NewAccountHandler(ledger)
	r := gin.New()
	r.POST("/api/accounts", h.OpenAccount)
	r.GET("/api/accounts/:id", h.GetAccount)
	r.POST("/api/accounts/:id/income", h.RecordIncome)
	r.POST("/api/accounts/:id/expense", h.RecordExpense)
	r.POST("/api/accounts/:id/transfers", h.Transfer)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rec.Body.String())
	}
	return env.Error
}

func openViaAPI(t *testing.T, r *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/accounts", gin.H{"owner_ids": []string{uuid.NewString()}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Account accountResponse `json:"account"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out.Account.AccountID.String()
}

func TestAccountHandlerLifecycle(t *testing.T) {
	r := newTestEngine(t, nil)
	a := openViaAPI(t, r)
	b := openViaAPI(t, r)

	rec := doJSON(t, r, http.MethodPost, "/api/accounts/"+a+"/income", gin.H{"amount": "300.00", "note": "salary"})
	if rec.Code != http.StatusOK {
		t.Fatalf("income: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var mut mutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &mut); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !mut.Account.Balance.Equal(decimal.RequireFromString("300")) || len(mut.Entries) != 1 || mut.Entries[0].Kind != accounts.KindDebit {
		t.Fatalf("unexpected mutation: %+v", mut)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/accounts/"+a+"/transfers", gin.H{"destination_id": b, "amount": "100"})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/api/accounts/"+b, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got struct {
		Account accountResponse `json:"account"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Account.Balance.Equal(decimal.RequireFromString("100")) || len(got.Account.Ledger) != 1 {
		t.Fatalf("unexpected destination: %+v", got.Account)
	}
}

func TestAccountHandlerBusinessFailures(t *testing.T) {
	r := newTestEngine(t, nil)
	a := openViaAPI(t, r)

	cases := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"zero amount", "/api/accounts/" + a + "/income", gin.H{"amount": "0"}, http.StatusBadRequest, string(accounts.CodeInvalidAmount)},
		{"missing amount", "/api/accounts/" + a + "/expense", gin.H{}, http.StatusBadRequest, string(accounts.CodeInvalidAmount)},
		{"overdraw", "/api/accounts/" + a + "/expense", gin.H{"amount": "1"}, http.StatusUnprocessableEntity, string(accounts.CodeInsufficientFunds)},
		{"unknown account", "/api/accounts/" + uuid.NewString() + "/income", gin.H{"amount": "1"}, http.StatusNotFound, string(accounts.CodeAccountNotFound)},
		{"unknown destination", "/api/accounts/" + a + "/transfers", gin.H{"destination_id": uuid.NewString(), "amount": "1"}, http.StatusNotFound, string(accounts.CodeAccountNotFound)},
		{"self transfer", "/api/accounts/" + a + "/transfers", gin.H{"destination_id": a, "amount": "1"}, http.StatusBadRequest, string(accounts.CodeSameAccount)},
		{"bad path id", "/api/accounts/nope/income", gin.H{"amount": "1"}, http.StatusBadRequest, "invalid_request"},
		{"bad destination", "/api/accounts/" + a + "/transfers", gin.H{"destination_id": "nope", "amount": "1"}, http.StatusBadRequest, "invalid_request"},
		{"empty account id", "/api/accounts", gin.H{"account_id": "", "owner_ids": []string{uuid.NewString()}}, http.StatusBadRequest, string(accounts.CodeEmptyAccountID)},
		{"no owners", "/api/accounts", gin.H{"owner_ids": []string{}}, http.StatusBadRequest, string(accounts.CodeEmptyOwnerIDs)},
		{"empty owner", "/api/accounts", gin.H{"owner_ids": []string{uuid.NewString(), ""}}, http.StatusBadRequest, string(accounts.CodeOwnerIDsContainEmpty)},
		{"duplicate account", "/api/accounts", gin.H{"account_id": a, "owner_ids": []string{uuid.NewString()}}, http.StatusConflict, string(domainagg.CodeConflict)},
	}
	for _, tc := range cases {
		rec := doJSON(t, r, http.MethodPost, tc.path, tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: status want=%d got=%d body=%s", tc.name, tc.status, rec.Code, rec.Body.String())
		}
		if got := decodeError(t, rec); got.Code != tc.code || got.Message == "" {
			t.Fatalf("%s: unexpected error %+v", tc.name, got)
		}
	}
}

type failingLedger struct {
	services.LedgerService
	err error
}

func (f failingLedger) RecordIncome(context.Context, uuid.UUID, decimal.Decimal, string) (services.Result, error) {
	return services.Result{}, f.err
}

func TestAccountHandlerInfrastructureFailures(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainagg.NewError(domainagg.CodeRetriesExhausted, "op", "gave up", nil), http.StatusConflict, string(domainagg.CodeRetriesExhausted)},
		{aggregates.MapError("op", context.Canceled), http.StatusServiceUnavailable, string(domainagg.CodeCanceled)},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, string(domainagg.CodeInternal)},
	}
	for _, tc := range cases {
		r := newTestEngine(t, failingLedger{err: tc.err})
		rec := doJSON(t, r, http.MethodPost, "/api/accounts/"+uuid.NewString()+"/income", gin.H{"amount": "1"})
		if rec.Code != tc.status {
			t.Fatalf("%v: status want=%d got=%d", tc.err, tc.status, rec.Code)
		}
		got := decodeError(t, rec)
		if got.Code != tc.code {
			t.Fatalf("%v: code want=%s got=%s", tc.err, tc.code, got.Code)
		}
		if tc.status == http.StatusInternalServerError && got.Message != "internal error" {
			t.Fatalf("internal errors must not leak details: %q", got.Message)
		}
	}
}
