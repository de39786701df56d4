package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ledger-backend/internal/pkg/ctxutil"
)

// ErrorCodeKey holds the failure code of the current request so the request
// log can report it without parsing the body.
const ErrorCodeKey = "error_code"

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	apiErr := APIError{Message: msg, Code: code}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		apiErr.RequestID = td.RequestID
	}
	if code != "" {
		c.Set(ErrorCodeKey, code)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: apiErr})
}

// ErrorCode returns the code recorded by RespondError, if any.
func ErrorCode(c *gin.Context) (string, bool) {
	code := c.GetString(ErrorCodeKey)
	return code, code != ""
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
