package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.WorkerCount != 5 {
					t.Errorf("expected 5 workers, got %d", cfg.WorkerCount)
				}
				if cfg.CallTimeout != 10*time.Minute {
					t.Errorf("expected CallTimeout 10m, got %v", cfg.CallTimeout)
				}
				if cfg.PollInterval != 5*time.Second {
					t.Errorf("expected PollInterval 5s, got %v", cfg.PollInterval)
				}
				if cfg.RetryBackoff != time.Hour {
					t.Errorf("expected RetryBackoff 1h, got %v", cfg.RetryBackoff)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":             "9000",
				"LOG_LEVEL":        "debug",
				"WORKER_COUNT":     "2",
				"QUEUE_TICK_MS":    "250",
				"ALLOWED_ORIGINS":  "http://example.com,http://test.com",
				"ACCOUNT_MANAGERS": "am-007, am-008",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.WorkerCount != 2 {
					t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
				}
				if cfg.QueueTick != 250*time.Millisecond {
					t.Errorf("expected QueueTick 250ms, got %v", cfg.QueueTick)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
				if len(cfg.AccountManagers) != 2 || cfg.AccountManagers[1] != "am-008" {
					t.Errorf("expected trimmed roster [am-007 am-008], got %v", cfg.AccountManagers)
				}
			},
		},
		{
			name: "invalid WORKER_COUNT",
			env: map[string]string{
				"WORKER_COUNT": "invalid",
			},
			wantErr: true,
		},
		{
			name: "zero WORKER_COUNT",
			env: map[string]string{
				"WORKER_COUNT": "0",
			},
			wantErr: true,
		},
		{
			name: "invalid CALL_TIMEOUT_SECONDS",
			env: map[string]string{
				"CALL_TIMEOUT_SECONDS": "ten",
			},
			wantErr: true,
		},
		{
			name: "invalid RETRY_BACKOFF_SECONDS",
			env: map[string]string{
				"RETRY_BACKOFF_SECONDS": "1h",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear any env vars that could leak between cases
			keys := []string{
				"PORT", "LOG_LEVEL", "ALLOWED_ORIGINS", "ACCOUNT_MANAGERS",
				"WORKER_COUNT", "QUEUE_TICK_MS", "CALL_TIMEOUT_SECONDS",
				"POLL_INTERVAL_SECONDS", "RETRY_BACKOFF_SECONDS", "WS_WRITE_TIMEOUT",
			}
			for _, k := range keys {
				os.Unsetenv(k)
			}
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range tt.env {
					os.Unsetenv(k)
				}
			}()

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
