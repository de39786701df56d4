package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/ledger-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ledger-backend/internal/http/middleware"
	"github.com/yungbote/ledger-backend/internal/observability"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	// ServiceName enables otelgin spans when set.
	ServiceName    string
	AllowedOrigins []string

	AccountHandler *httpH.AccountHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Accounts
		if cfg.AccountHandler != nil {
			api.POST("/accounts", cfg.AccountHandler.OpenAccount)
			api.GET("/accounts/:id", cfg.AccountHandler.GetAccount)
			api.POST("/accounts/:id/income", cfg.AccountHandler.RecordIncome)
			api.POST("/accounts/:id/expense", cfg.AccountHandler.RecordExpense)
			api.POST("/accounts/:id/transfers", cfg.AccountHandler.Transfer)
		}
	}

	return r
}
