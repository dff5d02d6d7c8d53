// Package config loads the ingestion service's and daemon's runtime
// settings from environment variables, with an optional .env overlay for
// local development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// =============================================================================
// Service configuration (cmd/brute-service)
// =============================================================================

// ServiceConfig holds everything the ingestion/aggregation/broadcast service
// needs to start.
type ServiceConfig struct {
	DatabaseURL       string
	IPInfoToken       string
	ListenAddress     string
	ListenAddressTLS  string
	BearerToken       string
	RunningInDocker   bool
	RateLimit         int
	RateLimitDuration int // seconds
	RedisAddr         string
	MaxStatsLimit     int
}

var (
	serviceOnce sync.Once
	service     *ServiceConfig
)

// Service returns the singleton ServiceConfig, loading it (and any .env
// file) on first use.
func Service() *ServiceConfig {
	serviceOnce.Do(func() {
		loadDotEnv()
		service = &ServiceConfig{
			DatabaseURL:       getEnv("DATABASE_URL", ""),
			IPInfoToken:       getEnv("IPINFO_TOKEN", ""),
			ListenAddress:     getEnv("LISTEN_ADDRESS", ":8080"),
			ListenAddressTLS:  getEnv("LISTEN_ADDRESS_TLS", ":8443"),
			BearerToken:       getEnv("BEARER_TOKEN", ""),
			RunningInDocker:   getEnvBool("RUNNING_IN_DOCKER", false),
			RateLimit:         getEnvInt("RATE_LIMIT", 100),
			RateLimitDuration: getEnvInt("RATE_LIMIT_DURATION", 60),
			RedisAddr:         getEnv("REDIS_ADDR", ""),
			MaxStatsLimit:     getEnvInt("MAX_STATS_LIMIT", 100),
		}
		if service.DatabaseURL == "" {
			slog.Warn("config: DATABASE_URL is not set")
		}
		if service.BearerToken == "" {
			slog.Warn("config: BEARER_TOKEN is not set, ingestion endpoint will reject everything")
		}
	})
	return service
}

// =============================================================================
// Daemon configuration (cmd/brute-daemon)
// =============================================================================

// DaemonConfig holds everything the SSH/FTP decoy edge needs to start.
type DaemonConfig struct {
	AddAttackEndpoint string
	BearerToken       string
	SSHPort           string
	FTPRoot           string
	SSHAdminUsername  string
	SSHAdminPassword  string
}

var (
	daemonOnce sync.Once
	daemon     *DaemonConfig
)

// Daemon returns the singleton DaemonConfig, loading it (and any .env
// file) on first use.
func Daemon() *DaemonConfig {
	daemonOnce.Do(func() {
		loadDotEnv()
		daemon = &DaemonConfig{
			AddAttackEndpoint: getEnv("ADD_ATTACK_ENDPOINT", ""),
			BearerToken:       getEnv("BEARER_TOKEN", ""),
			SSHPort:           getEnv("PORT", "22"),
			FTPRoot:           getEnv("FTP_ROOT", "/srv/ftp"),
			SSHAdminUsername:  getEnv("SSH_ADMIN_USERNAME", ""),
			SSHAdminPassword:  getEnv("SSH_ADMIN_PASSWORD", ""),
		}
		if daemon.AddAttackEndpoint == "" {
			slog.Warn("config: ADD_ATTACK_ENDPOINT is not set, captured attempts will not be reported")
		}
	})
	return daemon
}

// =============================================================================
// Helpers
// =============================================================================

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: failed to load .env file", "error", err)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
