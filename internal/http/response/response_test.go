package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ledger-backend/internal/pkg/ctxutil"
)

func TestRespondErrorCarriesRequestIDAndCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var recorded string
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{RequestID: "req-9"}))
		c.Next()
		recorded, _ = ErrorCode(c)
	})
	r.GET("/x", func(c *gin.Context) {
		RespondError(c, http.StatusUnprocessableEntity, "insufficient_funds", errors.New("insufficient funds"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: %d", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "insufficient_funds" || env.Error.Message != "insufficient funds" || env.Error.RequestID != "req-9" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if recorded != "insufficient_funds" {
		t.Fatalf("error code not recorded, got=%q", recorded)
	}
}

func TestRespondErrorNilErrorUsesStatusText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { RespondError(c, http.StatusServiceUnavailable, "", nil) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != http.StatusText(http.StatusServiceUnavailable) {
		t.Fatalf("unexpected message: %q", env.Error.Message)
	}
}
