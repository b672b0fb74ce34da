package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/outboundhq/dialer/internal/agent"
	"github.com/outboundhq/dialer/internal/api"
	"github.com/outboundhq/dialer/internal/campaign"
	"github.com/outboundhq/dialer/internal/config"
	"github.com/outboundhq/dialer/internal/events"
	"github.com/outboundhq/dialer/internal/metrics"
	"github.com/outboundhq/dialer/internal/monitor"
	"github.com/outboundhq/dialer/internal/provider"
	"github.com/outboundhq/dialer/internal/queue"
	"github.com/outboundhq/dialer/internal/storage"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/outboundhq/dialer/pkg/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("workers", cfg.WorkerCount).
		Msg("starting dialer server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create event hub
	hub := events.NewHub(log.Logger)
	go hub.Run()
	wsHandler := events.NewHandler(hub, cfg, log.Logger)

	// CRM: DynamoDB when configured, in-memory otherwise
	crm, err := storage.NewCRM(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CRM store")
	}
	if crm == nil {
		crm = provider.NewMemoryCRM()
		log.Info().Msg("using in-memory CRM")
	}

	enrichment := provider.NewMemoryEnrichment()
	telephony := provider.NewSimTelephony(log.Logger)

	// Account manager roster from config
	roster := make([]types.AccountManager, 0, len(cfg.AccountManagers))
	for _, id := range cfg.AccountManagers {
		roster = append(roster, types.AccountManager{ID: id, Name: id, Specialty: "Sales"})
	}

	// Queue, orchestrator, and worker pool share one job queue
	jobQueue := queue.New(cfg.RetryBackoff, log.Logger)
	orchestrator := campaign.New(crm, enrichment, jobQueue, roster, hub, log.Logger)

	callMonitor := monitor.New(telephony, cfg.PollInterval, log.Logger)
	pool := campaign.NewPool(jobQueue, crm, telephony, callMonitor, agent.NewRegistry(), campaign.PoolOptions{
		Workers:     cfg.WorkerCount,
		Tick:        cfg.QueueTick,
		CallTimeout: cfg.CallTimeout,
		Publisher:   hub,
	}, log.Logger)
	go pool.Start(ctx)

	// Periodic queue heartbeat for connected dashboards
	statusTicker := events.NewTicker(hub, jobQueue, cfg.QueueTick, log.Logger)
	go statusTicker.Start(ctx)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())
	r.Get("/ws", wsHandler.ServeHTTP)

	api.NewCampaignHandler(orchestrator, log.Logger).Register(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the worker pool; in-flight calls finish first
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"dialer"}`)
}
