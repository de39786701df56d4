package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/ledger-backend/internal/pkg/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
)

// AttachTraceContext stores request and trace ids on the request context and
// echoes them back. An active otel span wins over a client supplied trace id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: headerOr(c, HeaderRequestID, uuid.NewString),
			TraceID:   spanTraceID(c),
		}
		if td.TraceID == "" {
			td.TraceID = headerOr(c, HeaderTraceID, func() string { return td.RequestID })
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))

		h := c.Writer.Header()
		h.Set(HeaderTraceID, td.TraceID)
		h.Set(HeaderRequestID, td.RequestID)
		c.Next()
	}
}

func headerOr(c *gin.Context, name string, fallback func() string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	return fallback()
}

func spanTraceID(c *gin.Context) string {
	sc := trace.SpanContextFromContext(c.Request.Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
