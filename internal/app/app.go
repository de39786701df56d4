package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/ledger-backend/internal/data/aggregates"
	"github.com/yungbote/ledger-backend/internal/data/db"
	"github.com/yungbote/ledger-backend/internal/events"
	ihttp "github.com/yungbote/ledger-backend/internal/http"
	httpH "github.com/yungbote/ledger-backend/internal/http/handlers"
	"github.com/yungbote/ledger-backend/internal/observability"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
	"github.com/yungbote/ledger-backend/internal/services"
)

const collectorInterval = 15 * time.Second

type App struct {
	Log     *logger.Logger
	Cfg     Config
	DB      *db.Service
	Metrics *observability.Metrics

	Publisher events.Publisher
	Ledger    services.LedgerService
	Server    *ihttp.Server

	otelShutdown func(context.Context) error
	redis        *events.RedisPublisher
}

// New loads config and wires every component. Nothing listens until Run.
func New(ctx context.Context) (*App, error) {
	boot, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	boot.Info("Loading configuration...")
	cfg, err := LoadConfig(boot)
	if err != nil {
		boot.Sync()
		return nil, err
	}
	log := boot
	if cfg.LogMode != "development" {
		if log, err = logger.New(cfg.LogMode); err != nil {
			boot.Sync()
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}
	return NewWithConfig(ctx, cfg, log)
}

func NewWithConfig(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{Log: log, Cfg: cfg}

	a.Metrics = observability.Init(log, cfg.Metrics.Enabled)
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.OTel)

	if err := a.wireStorage(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.wirePublisher(); err != nil {
		a.Close()
		return nil, err
	}

	base := aggregates.BaseDeps{
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(a.Metrics),
	}
	var store aggregates.AccountStore
	if a.DB != nil {
		base.DB = a.DB.DB()
	} else {
		store = aggregates.NewMemoryAccountStore()
	}
	agg := aggregates.NewAccountAggregate(aggregates.AccountAggregateDeps{
		Base:  base,
		Store: store,
		Retry: cfg.RetryPolicy(),
		Notifier: events.NewDispatcher(events.DispatcherDeps{
			Log:       log,
			Publisher: a.Publisher,
			Metrics:   a.Metrics,
			Timeout:   cfg.PublishTimeout,
		}),
	})
	c := agg.Contract()
	log.Info("Account aggregate ready",
		"contract", c.Name,
		"concurrency", c.Concurrency,
		"delivery", c.Delivery,
		"max_attempts", cfg.Retry.MaxAttempts,
	)
	a.Ledger = services.NewLedgerService(log, agg)

	serviceName := ""
	if cfg.OTel.Enabled {
		serviceName = cfg.OTel.ServiceName
	}
	a.Server = ihttp.NewServer(ihttp.RouterConfig{
		Log:            log,
		Metrics:        a.Metrics,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AccountHandler: httpH.NewAccountHandler(a.Ledger),
		HealthHandler:  httpH.NewHealthHandler(a.healthChecks()),
	})
	return a, nil
}

func (a *App) wireStorage() error {
	if a.Cfg.DB.Driver == StoreMemory {
		a.Log.Warn("Using in-memory account store; balances do not survive a restart")
		return nil
	}
	svc, err := db.Open(a.Cfg.DBConfig(), a.Log)
	if err != nil {
		return fmt.Errorf("init %s: %w", a.Cfg.DB.Driver, err)
	}
	a.DB = svc
	if err := svc.AutoMigrateAll(); err != nil {
		return fmt.Errorf("%s automigrate: %w", a.Cfg.DB.Driver, err)
	}
	return nil
}

func (a *App) wirePublisher() error {
	if a.Cfg.Redis.Addr == "" {
		a.Log.Info("REDIS_ADDR not set; events stay in process")
		a.Publisher = events.NewMemoryPublisher()
		return nil
	}
	pub, err := events.NewRedisPublisher(a.Cfg.Redis.Addr, a.Cfg.Redis.Channel, a.Log)
	if err != nil {
		return fmt.Errorf("init redis publisher: %w", err)
	}
	a.redis = pub
	a.Publisher = pub
	return nil
}

func (a *App) healthChecks() map[string]httpH.Pinger {
	checks := map[string]httpH.Pinger{}
	if a.DB != nil {
		gdb := a.DB.DB()
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if a.redis != nil {
		rdb := a.redis.Client()
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

// Run serves HTTP until ctx ends. Collectors and the metrics endpoint stop
// with it.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartServer(gctx, a.Log, a.Cfg.Metrics.Addr)
	if a.DB != nil {
		a.Metrics.StartDBCollector(gctx, a.Log, a.DB.DB(), collectorInterval)
	}
	if a.redis != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, a.redis.Client(), collectorInterval)
	}

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTP.Addr)
		return a.Server.Run(gctx, a.Cfg.HTTP.Addr)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
