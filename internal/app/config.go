package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/ledger-backend/internal/data/aggregates"
	"github.com/yungbote/ledger-backend/internal/data/db"
	"github.com/yungbote/ledger-backend/internal/events"
	"github.com/yungbote/ledger-backend/internal/observability"
	"github.com/yungbote/ledger-backend/internal/pkg/logger"
	"github.com/yungbote/ledger-backend/internal/utils"
)

// StoreMemory keeps accounts in process; nothing survives a restart.
const StoreMemory = "memory"

type Config struct {
	LogMode string `yaml:"log_mode"`

	HTTP struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`

	DB struct {
		Driver        string        `yaml:"driver"`
		Host          string        `yaml:"host"`
		Port          string        `yaml:"port"`
		User          string        `yaml:"user"`
		Password      string        `yaml:"password"`
		Name          string        `yaml:"name"`
		SQLitePath    string        `yaml:"sqlite_path"`
		SlowThreshold time.Duration `yaml:"slow_threshold"`
		MaxOpenConns  int           `yaml:"max_open_conns"`
	} `yaml:"db"`

	Redis struct {
		Addr    string `yaml:"addr"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`

	Retry struct {
		MaxAttempts int           `yaml:"max_attempts"`
		BaseDelay   time.Duration `yaml:"base_delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
		MaxElapsed  time.Duration `yaml:"max_elapsed"`
	} `yaml:"retry"`

	PublishTimeout time.Duration `yaml:"publish_timeout"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	OTel observability.OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.LogMode = "development"
	cfg.HTTP.Addr = ":8080"
	cfg.DB.Driver = db.DriverPostgres
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "5432"
	cfg.DB.User = "postgres"
	cfg.DB.Name = "ledger"
	cfg.DB.SlowThreshold = time.Second
	cfg.Redis.Channel = events.DefaultChannel
	cfg.Retry.MaxAttempts = aggregates.DefaultRetryMaxAttempts
	cfg.Retry.BaseDelay = aggregates.DefaultRetryBaseDelay
	cfg.Retry.MaxDelay = aggregates.DefaultRetryMaxDelay
	cfg.PublishTimeout = 2 * time.Second
	cfg.Metrics.Addr = ":9090"
	cfg.OTel.ServiceName = "ledger-backend"
	cfg.OTel.SampleRatio = 1
	return cfg
}

// LoadConfig starts from defaults, applies the YAML file named by
// LEDGER_CONFIG_FILE when set, then environment overrides.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv("LEDGER_CONFIG_FILE")); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}
	applyEnv(&cfg, log)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.LogMode = utils.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.HTTP.Addr = utils.GetEnv("HTTP_ADDR", cfg.HTTP.Addr, log)
	if origins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log); origins != "" {
		cfg.HTTP.AllowedOrigins = splitList(origins)
	}

	cfg.DB.Driver = strings.ToLower(utils.GetEnv("DB_DRIVER", cfg.DB.Driver, log))
	cfg.DB.Host = utils.GetEnv("POSTGRES_HOST", cfg.DB.Host, log)
	cfg.DB.Port = utils.GetEnv("POSTGRES_PORT", cfg.DB.Port, log)
	cfg.DB.User = utils.GetEnv("POSTGRES_USER", cfg.DB.User, log)
	cfg.DB.Password = utils.GetEnv("POSTGRES_PASSWORD", cfg.DB.Password, log)
	cfg.DB.Name = utils.GetEnv("POSTGRES_NAME", cfg.DB.Name, log)
	cfg.DB.SQLitePath = utils.GetEnv("SQLITE_PATH", cfg.DB.SQLitePath, log)
	cfg.DB.SlowThreshold = utils.GetEnvAsDuration("DB_SLOW_THRESHOLD", cfg.DB.SlowThreshold, log)
	cfg.DB.MaxOpenConns = utils.GetEnvAsInt("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns, log)

	cfg.Redis.Addr = utils.GetEnv("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.Channel = utils.GetEnv("REDIS_CHANNEL", cfg.Redis.Channel, log)

	cfg.Retry.MaxAttempts = utils.GetEnvAsInt("RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts, log)
	cfg.Retry.BaseDelay = utils.GetEnvAsDuration("RETRY_BASE_DELAY", cfg.Retry.BaseDelay, log)
	cfg.Retry.MaxDelay = utils.GetEnvAsDuration("RETRY_MAX_DELAY", cfg.Retry.MaxDelay, log)
	cfg.Retry.MaxElapsed = utils.GetEnvAsDuration("RETRY_MAX_ELAPSED", cfg.Retry.MaxElapsed, log)
	cfg.PublishTimeout = utils.GetEnvAsDuration("PUBLISH_TIMEOUT", cfg.PublishTimeout, log)

	cfg.Metrics.Enabled = utils.GetEnvAsBool("METRICS_ENABLED", cfg.Metrics.Enabled, log)
	cfg.Metrics.Addr = utils.GetEnv("METRICS_ADDR", cfg.Metrics.Addr, log)

	cfg.OTel.Enabled = utils.GetEnvAsBool("OTEL_ENABLED", cfg.OTel.Enabled, log)
	cfg.OTel.ServiceName = utils.GetEnv("OTEL_SERVICE_NAME", cfg.OTel.ServiceName, log)
	cfg.OTel.Environment = utils.GetEnv("OTEL_ENVIRONMENT", cfg.OTel.Environment, log)
	cfg.OTel.Version = utils.GetEnv("OTEL_SERVICE_VERSION", cfg.OTel.Version, log)
	cfg.OTel.Endpoint = utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTel.Endpoint, log)
	cfg.OTel.Insecure = utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.OTel.Insecure, log)
	if raw := utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log); raw != "" {
		cfg.OTel.Headers = observability.ParseHeaders(raw)
	}
	cfg.OTel.SampleRatio = utils.GetEnvAsFloat("OTEL_SAMPLE_RATIO", cfg.OTel.SampleRatio, log)
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite, StoreMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres, sqlite or memory)", c.DB.Driver)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry delays must satisfy 0 <= base (%s) <= max (%s)", c.Retry.BaseDelay, c.Retry.MaxDelay)
	}
	return nil
}

// RetryPolicy builds the conflict-retry policy for the account aggregate.
func (c Config) RetryPolicy() aggregates.RetryPolicy {
	schedule := aggregates.ExponentialSchedule(c.Retry.BaseDelay, c.Retry.MaxDelay)
	if c.Retry.BaseDelay == 0 {
		schedule = aggregates.ImmediateSchedule()
	}
	return aggregates.RetryPolicy{
		MaxAttempts: c.Retry.MaxAttempts,
		Schedule:    schedule,
		MaxElapsed:  c.Retry.MaxElapsed,
	}
}

func (c Config) DBConfig() db.Config {
	return db.Config{
		Driver:        c.DB.Driver,
		Host:          c.DB.Host,
		Port:          c.DB.Port,
		User:          c.DB.User,
		Password:      c.DB.Password,
		Name:          c.DB.Name,
		SQLitePath:    c.DB.SQLitePath,
		SlowThreshold: c.DB.SlowThreshold,
		MaxOpenConns:  c.DB.MaxOpenConns,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
