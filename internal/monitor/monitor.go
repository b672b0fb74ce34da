// Package monitor tracks in-flight calls until they reach a terminal state,
// feeding the growing transcript through the sentiment and objection
// heuristics so intermediate state stays observable.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/outboundhq/dialer/internal/provider"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often a call's remote status is checked
const DefaultPollInterval = 5 * time.Second

// Progress is the observable intermediate state of a monitored call
type Progress struct {
	Sentiment  float64  `json:"sentiment"`
	Objections []string `json:"objections"`
	Transcript string   `json:"transcript"`
}

// Completion is the final status of a call plus the heuristics over its
// full transcript
type Completion struct {
	Status   types.RemoteCallStatus
	Progress Progress
}

// Monitor polls call status on the telephony provider
type Monitor struct {
	telephony provider.Telephony
	interval  time.Duration
	logger    zerolog.Logger

	mu       sync.RWMutex
	inflight map[string]Progress
}

// New creates a Monitor polling at the given interval.
// A non-positive interval falls back to the default.
func New(telephony provider.Telephony, interval time.Duration, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		telephony: telephony,
		interval:  interval,
		logger:    logger,
		inflight:  make(map[string]Progress),
	}
}

// Snapshot returns the latest observed progress for an in-flight call
func (m *Monitor) Snapshot(callID string) (Progress, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.inflight[callID]
	return p, ok
}

// AwaitCompletion polls the call until it reaches a terminal status or the
// timeout elapses. Timeouts return ErrCallTimeout; failed and no-answer
// statuses return an error so the caller's retry policy applies.
func (m *Monitor) AwaitCompletion(ctx context.Context, callID string, timeout time.Duration) (Completion, error) {
	deadline := time.After(timeout)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer m.clear(callID)

	for {
		status, err := m.telephony.GetStatus(ctx, callID)
		if err != nil {
			return Completion{}, fmt.Errorf("call %s status: %w", callID, err)
		}

		progress := Progress{
			Sentiment:  SentimentScore(status.Transcript),
			Objections: ExtractObjections(status.Transcript),
			Transcript: status.Transcript,
		}
		m.mu.Lock()
		m.inflight[callID] = progress
		m.mu.Unlock()

		switch status.Status {
		case types.RemoteStatusEnded:
			m.logger.Debug().
				Str("call_id", callID).
				Int("duration", status.DurationSeconds).
				Float64("sentiment", progress.Sentiment).
				Msg("call ended")
			return Completion{Status: status, Progress: progress}, nil

		case types.RemoteStatusFailed, types.RemoteStatusNoAnswer:
			return Completion{Status: status, Progress: progress},
				fmt.Errorf("call %s terminated with status %s", callID, status.Status)
		}

		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-deadline:
			return Completion{}, fmt.Errorf("call %s after %s: %w", callID, timeout, types.ErrCallTimeout)
		case <-ticker.C:
		}
	}
}

func (m *Monitor) clear(callID string) {
	m.mu.Lock()
	delete(m.inflight, callID)
	m.mu.Unlock()
}
