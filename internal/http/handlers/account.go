package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/ledger-backend/internal/domain/accounts"
	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
	"github.com/yungbote/ledger-backend/internal/http/response"
	"github.com/yungbote/ledger-backend/internal/services"
)

type AccountHandler struct {
	ledger services.LedgerService
}

func NewAccountHandler(ledger services.LedgerService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

type openAccountRequest struct {
	AccountID *string  `json:"account_id"`
	OwnerIDs  []string `json:"owner_ids"`
}

type moneyRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

type transferRequest struct {
	DestinationID string          `json:"destination_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type entryResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      accounts.Kind   `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type accountResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	OwnerIDs  []uuid.UUID     `json:"owner_ids"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	Ledger    []entryResponse `json:"ledger"`
}

type mutationResponse struct {
	Account   accountResponse   `json:"account"`
	Accounts  []accountResponse `json:"accounts"`
	Entries   []entryResponse   `json:"entries"`
	Attempts  int               `json:"attempts"`
	Published int               `json:"published"`
}

// POST /api/accounts
func (h *AccountHandler) OpenAccount(c *gin.Context) {
	var req openAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := services.OpenAccountCommand{}
	if req.AccountID != nil {
		id := uuid.Nil
		if raw := strings.TrimSpace(*req.AccountID); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				badRequest(c, fmt.Errorf("account_id: %w", err))
				return
			}
			id = parsed
		}
		cmd.AccountID = &id
	}
	for _, raw := range req.OwnerIDs {
		id := uuid.Nil
		if strings.TrimSpace(raw) != "" {
			parsed, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				badRequest(c, fmt.Errorf("owner_ids: %w", err))
				return
			}
			id = parsed
		}
		cmd.OwnerIDs = append(cmd.OwnerIDs, id)
	}

	res, err := h.ledger.OpenAccount(c.Request.Context(), cmd)
	if !respondFailure(c, res, err) {
		response.RespondCreated(c, gin.H{"account": toAccountResponse(*res.Account)})
	}
}

// GET /api/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := pathAccountID(c)
	if !ok {
		return
	}
	res, err := h.ledger.GetAccount(c.Request.Context(), id)
	if !respondFailure(c, res, err) {
		response.RespondOK(c, gin.H{"account": toAccountResponse(*res.Account)})
	}
}

// POST /api/accounts/:id/income
func (h *AccountHandler) RecordIncome(c *gin.Context) {
	id, ok := pathAccountID(c)
	if !ok {
		return
	}
	var req moneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.RecordIncome(c.Request.Context(), id, req.Amount, req.Note)
	if !respondFailure(c, res, err) {
		response.RespondOK(c, toMutationResponse(res))
	}
}

// POST /api/accounts/:id/expense
func (h *AccountHandler) RecordExpense(c *gin.Context) {
	id, ok := pathAccountID(c)
	if !ok {
		return
	}
	var req moneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.ledger.RecordExpense(c.Request.Context(), id, req.Amount, req.Note)
	if !respondFailure(c, res, err) {
		response.RespondOK(c, toMutationResponse(res))
	}
}

// POST /api/accounts/:id/transfers
func (h *AccountHandler) Transfer(c *gin.Context) {
	id, ok := pathAccountID(c)
	if !ok {
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dst, err := uuid.Parse(strings.TrimSpace(req.DestinationID))
	if err != nil {
		badRequest(c, fmt.Errorf("destination_id: %w", err))
		return
	}
	res, err := h.ledger.Transfer(c.Request.Context(), id, dst, req.Amount)
	if !respondFailure(c, res, err) {
		response.RespondOK(c, toMutationResponse(res))
	}
}

func pathAccountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid account id: %w", err))
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
}

// respondFailure writes the error response for a failed command and reports
// whether it did.
func respondFailure(c *gin.Context, res services.Result, err error) bool {
	if err != nil {
		status, code := statusForError(err)
		if status == http.StatusInternalServerError {
			err = errors.New("internal error")
		}
		response.RespondError(c, status, code, err)
		return true
	}
	if !res.OK() {
		response.RespondError(c, statusForCode(res.Code), string(res.Code), errors.New(res.Message))
		return true
	}
	return false
}

func statusForCode(code accounts.Code) int {
	switch code {
	case accounts.CodeAccountNotFound:
		return http.StatusNotFound
	case accounts.CodeInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func statusForError(err error) (int, string) {
	code := domainagg.CodeOf(err)
	switch code {
	case domainagg.CodeConflict, domainagg.CodeRetriesExhausted:
		return http.StatusConflict, string(code)
	case domainagg.CodeValidation:
		return http.StatusBadRequest, string(code)
	case domainagg.CodeNotFound:
		return http.StatusNotFound, string(code)
	case domainagg.CodeCanceled, domainagg.CodeRetryable:
		return http.StatusServiceUnavailable, string(code)
	default:
		return http.StatusInternalServerError, string(domainagg.CodeInternal)
	}
}

func toEntryResponses(txs []accounts.Transaction) []entryResponse {
	out := make([]entryResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, entryResponse{
			ID:        tx.ID,
			Kind:      tx.Kind,
			Amount:    tx.Amount,
			Note:      tx.Note,
			CreatedAt: tx.CreatedAt,
		})
	}
	return out
}

func toAccountResponse(s domainagg.AccountSnapshot) accountResponse {
	return accountResponse{
		AccountID: s.AccountID,
		OwnerIDs:  s.OwnerIDs,
		Balance:   s.Balance,
		Version:   s.Version,
		Ledger:    toEntryResponses(s.Ledger),
	}
}

func toMutationResponse(res services.Result) mutationResponse {
	out := mutationResponse{}
	if res.Account != nil {
		out.Account = toAccountResponse(*res.Account)
	}
	if res.Mutation != nil {
		for _, s := range res.Mutation.Accounts {
			out.Accounts = append(out.Accounts, toAccountResponse(s))
		}
		out.Entries = toEntryResponses(res.Mutation.Entries)
		out.Attempts = res.Mutation.Attempts
		out.Published = res.Mutation.Published
	}
	return out
}
