package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/ledger-backend/internal/pkg/logger"
)

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	if log != nil {
		log.Debug("Environment variable found, using environment", "environment", logger.Mask(key, val))
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	return getEnvParsed(key, defaultVal, log, "int", strconv.Atoi)
}

// GetEnvAsDuration accepts Go duration strings ("250ms", "2s").
func GetEnvAsDuration(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
	return getEnvParsed(key, defaultVal, log, "duration", time.ParseDuration)
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	return getEnvParsed(key, defaultVal, log, "bool", strconv.ParseBool)
}

func GetEnvAsFloat(key string, defaultVal float64, log *logger.Logger) float64 {
	return getEnvParsed(key, defaultVal, log, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func getEnvParsed[T any](key string, defaultVal T, log *logger.Logger, kind string, parse func(string) (T, error)) T {
	if log != nil {
		log = log.With("env_var", key)
	}
	valStr, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(valStr) == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	v, err := parse(strings.TrimSpace(valStr))
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as "+kind+", using default", "providedVal", logger.Mask(key, valStr), "defaultVal", defaultVal, "error", err)
		}
		return defaultVal
	}
	if log != nil {
		log.Debug("Environment variable found, using it", "value", v)
	}
	return v
}
