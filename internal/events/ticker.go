package events

import (
	"context"
	"time"

	"github.com/outboundhq/dialer/internal/queue"
	"github.com/rs/zerolog"
)

// QueueStatus is the periodic queue heartbeat sent to clients
type QueueStatus struct {
	Depth      int   `json:"depth"`
	Paused     bool  `json:"paused"`
	ServerTime int64 `json:"server_time"`
}

// Ticker periodically broadcasts queue status to the hub
type Ticker struct {
	hub      *Hub
	queue    *queue.Queue
	interval time.Duration
	logger   zerolog.Logger
}

// NewTicker creates a new Ticker
func NewTicker(hub *Hub, q *queue.Queue, interval time.Duration, logger zerolog.Logger) *Ticker {
	return &Ticker{
		hub:      hub,
		queue:    q,
		interval: interval,
		logger:   logger,
	}
}

// Start begins broadcasting queue status updates
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info().Dur("interval", t.interval).Msg("queue status ticker started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("queue status ticker stopped")
			return

		case now := <-ticker.C:
			status := QueueStatus{
				Depth:      t.queue.Depth(),
				Paused:     t.queue.Paused(),
				ServerTime: now.Unix(),
			}
			t.hub.Publish("queue_status", status)
			t.logger.Debug().
				Int("depth", status.Depth).
				Int("clients", t.hub.ClientCount()).
				Msg("broadcasted queue status")
		}
	}
}
