package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Worker pool and queue
	WorkerCount  int
	QueueTick    time.Duration
	CallTimeout  time.Duration
	PollInterval time.Duration
	RetryBackoff time.Duration // base delay, doubles per attempt

	// WebSocket
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Account manager roster for round-robin assignment
	AccountManagers []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AccountManagers: strings.Split(getEnv("ACCOUNT_MANAGERS", "am-001"), ","),
	}

	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_COUNT: %w", err)
	}
	if workers < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", workers)
	}
	config.WorkerCount = workers

	queueTick, err := strconv.Atoi(getEnv("QUEUE_TICK_MS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_TICK_MS: %w", err)
	}
	config.QueueTick = time.Duration(queueTick) * time.Millisecond

	callTimeout, err := strconv.Atoi(getEnv("CALL_TIMEOUT_SECONDS", "600"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALL_TIMEOUT_SECONDS: %w", err)
	}
	config.CallTimeout = time.Duration(callTimeout) * time.Second

	pollInterval, err := strconv.Atoi(getEnv("POLL_INTERVAL_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL_SECONDS: %w", err)
	}
	config.PollInterval = time.Duration(pollInterval) * time.Second

	// 1 hour base between retries. Long for transient network failures,
	// deliberate for call scheduling. Tunable.
	retryBackoff, err := strconv.Atoi(getEnv("RETRY_BACKOFF_SECONDS", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_BACKOFF_SECONDS: %w", err)
	}
	config.RetryBackoff = time.Duration(retryBackoff) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = 60 * time.Second
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from list values
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	for i, am := range config.AccountManagers {
		config.AccountManagers[i] = strings.TrimSpace(am)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
