package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/emberhall/ember/internal/logging"
)

// ServerConfig holds the room server's validated environment
// configuration.
//
// Ported from the teacher's internal/v1/config/config.go: every var has
// a default, problems are collected into one joined error instead of
// failing on the first, and every field of the validated result is
// logged as is. Trimmed down to this protocol's actual surface — no JWT/SFU/
// Redis settings, since this server has neither auth nor a sidecar to
// configure.
type ServerConfig struct {
	// ListenAddr is the TCP address the WebSocket/health/metrics HTTP
	// server binds, e.g. ":40080" (spec.md's default port).
	ListenAddr string

	GoEnv    string
	LogLevel string

	// RateLimitSend is a github.com/ulule/limiter/v3 formatted rate
	// string (e.g. "10-M") bounding SendCmd frequency per session.
	RateLimitSend string
}

const defaultListenAddr = ":40080"

// LoadServer validates the room server's environment variables,
// returning a joined error listing every problem found rather than
// failing on the first one, so an operator sees the whole list of fixes
// needed in one run.
func LoadServer() (ServerConfig, error) {
	cfg := ServerConfig{}
	var errs []string

	cfg.ListenAddr = getEnvOrDefault("EMBER_LISTEN_ADDR", defaultListenAddr)
	if !isValidListenAddr(cfg.ListenAddr) {
		errs = append(errs, fmt.Sprintf("EMBER_LISTEN_ADDR must be in format ':port' or 'host:port' (got %q)", cfg.ListenAddr))
	}

	cfg.GoEnv = getEnvOrDefault("GO_ENV", "production")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.RateLimitSend = getEnvOrDefault("EMBER_RATE_LIMIT_SEND", "10-M")

	if len(errs) > 0 {
		return ServerConfig{}, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	logValidated(cfg)
	return cfg, nil
}

func isValidListenAddr(addr string) bool {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return false
	}
	portStr := addr[i+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return false
	}
	return true
}

func logValidated(cfg ServerConfig) {
	logging.Get().Info("environment configuration validated",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("go_env", cfg.GoEnv),
		zap.String("log_level", cfg.LogLevel),
		zap.String("rate_limit_send", cfg.RateLimitSend),
	)
}

func getEnvOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
