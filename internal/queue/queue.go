// Package queue implements the shared call-job queue: priority-ordered
// dequeue with delayed visibility, deduplication, and retry with
// exponential backoff. Construct one per orchestrator and inject it; the
// queue is the only shared mutable structure in the pipeline.
package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

// Queue is a mutex-guarded priority queue of call jobs
type Queue struct {
	mu      sync.Mutex
	waiting []*types.Job
	active  map[string]*types.Job // jobID -> job
	seen    map[string]bool       // dedupe key -> enqueued before

	completed map[string]int // campaignID -> terminal successes
	failed    map[string]int // campaignID -> terminal failures

	paused      bool
	backoffBase time.Duration
	logger      zerolog.Logger
}

// New creates an empty queue. backoffBase is the delay after the first
// failed attempt, doubling per subsequent attempt.
func New(backoffBase time.Duration, logger zerolog.Logger) *Queue {
	return &Queue{
		active:      make(map[string]*types.Job),
		seen:        make(map[string]bool),
		completed:   make(map[string]int),
		failed:      make(map[string]int),
		backoffBase: backoffBase,
		logger:      logger,
	}
}

func dedupeKey(campaignID, prospectID string) string {
	return fmt.Sprintf("call-%s-%s", campaignID, prospectID)
}

// Enqueue adds a job unless its (campaign, prospect) key was queued before.
// Returns false for duplicates.
func (q *Queue) Enqueue(job *types.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := dedupeKey(job.CampaignID, job.Prospect.ID)
	if q.seen[key] {
		q.logger.Debug().
			Str("campaign_id", job.CampaignID).
			Str("prospect_id", job.Prospect.ID).
			Msg("duplicate job ignored")
		return false
	}
	q.seen[key] = true
	q.waiting = append(q.waiting, job)

	q.logger.Debug().
		Str("job_id", job.ID).
		Str("campaign_id", job.CampaignID).
		Int("priority", job.Priority).
		Time("scheduled", job.ScheduledTime).
		Msg("job enqueued")
	return true
}

// Dequeue removes and returns the highest-priority job whose scheduled time
// has arrived, or nil. Delayed jobs become visible only at their scheduled
// time, so wall-clock arrival can reorder dequeue relative to priority.
// Returns nil while the queue is paused.
func (q *Queue) Dequeue(now time.Time) *types.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.paused {
		return nil
	}

	best := -1
	for i, job := range q.waiting {
		if job.ScheduledTime.After(now) {
			continue
		}
		if best == -1 || job.Priority > q.waiting[best].Priority {
			best = i
		}
	}
	if best == -1 {
		return nil
	}

	job := q.waiting[best]
	q.waiting = append(q.waiting[:best], q.waiting[best+1:]...)
	job.Attempt++
	q.active[job.ID] = job
	return job
}

// Complete marks an active job as terminally successful
func (q *Queue) Complete(jobID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.active[jobID]
	if !ok {
		return
	}
	delete(q.active, jobID)
	q.completed[job.CampaignID]++
}

// Fail records a failed attempt. Jobs under the attempt limit are
// rescheduled with exponential backoff and return true; exhausted jobs are
// terminally failed and return false.
func (q *Queue) Fail(jobID string, cause error, now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.active[jobID]
	if !ok {
		return false
	}
	delete(q.active, jobID)
	if cause != nil {
		job.LastError = cause.Error()
	}

	if job.Attempt >= types.MaxJobAttempts {
		q.failed[job.CampaignID]++
		q.logger.Warn().
			Str("job_id", job.ID).
			Str("campaign_id", job.CampaignID).
			Int("attempts", job.Attempt).
			Str("last_error", job.LastError).
			Msg("job failed permanently")
		return false
	}

	// Backoff doubles per completed attempt: base, 2x base, ...
	delay := q.backoffBase << (job.Attempt - 1)
	job.ScheduledTime = now.Add(delay)
	q.waiting = append(q.waiting, job)

	q.logger.Info().
		Str("job_id", job.ID).
		Int("attempt", job.Attempt).
		Dur("backoff", delay).
		Msg("job scheduled for retry")
	return true
}

// Cancel removes all waiting jobs for a campaign. Active jobs keep running.
// Safe to call concurrently with workers.
func (q *Queue) Cancel(campaignID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.waiting[:0]
	removed := 0
	for _, job := range q.waiting {
		if job.CampaignID == campaignID {
			removed++
			continue
		}
		kept = append(kept, job)
	}
	q.waiting = kept

	q.logger.Info().
		Str("campaign_id", campaignID).
		Int("removed", removed).
		Msg("campaign jobs cancelled")
	return removed
}

// Pause stops dequeuing. Queue-wide: jobs from every campaign stop being
// handed to workers, matching the shared-queue semantics of the original
// system. Known limitation, see DESIGN.md.
func (q *Queue) Pause() {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()
}

// Resume restarts dequeuing
func (q *Queue) Resume() {
	q.mu.Lock()
	q.paused = false
	q.mu.Unlock()
}

// Paused reports whether dequeuing is stopped
func (q *Queue) Paused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

// Stats counts jobs by state for one campaign
func (q *Queue) Stats(campaignID string) types.CampaignStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := types.CampaignStats{
		Completed: q.completed[campaignID],
		Failed:    q.failed[campaignID],
	}
	for _, job := range q.waiting {
		if job.CampaignID == campaignID {
			stats.Waiting++
		}
	}
	for _, job := range q.active {
		if job.CampaignID == campaignID {
			stats.Active++
		}
	}
	return stats
}

// Depth returns the number of waiting jobs across all campaigns
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
