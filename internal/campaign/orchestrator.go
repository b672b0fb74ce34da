// Package campaign runs outbound campaigns end to end: it loads and
// researches prospects, queues calls with spacing and optimal timing, and
// drives a worker pool that executes calls and reports results to the CRM.
package campaign

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/outboundhq/dialer/internal/metrics"
	"github.com/outboundhq/dialer/internal/provider"
	"github.com/outboundhq/dialer/internal/queue"
	"github.com/outboundhq/dialer/internal/timing"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

const millisPerDay = 24 * 60 * 60 * 1000

// Publisher receives campaign lifecycle events for live observers
type Publisher interface {
	Publish(event string, payload any)
}

// NopPublisher drops all events
type NopPublisher struct{}

func (NopPublisher) Publish(string, any) {}

// DefaultRoster is used when no account managers are configured
func DefaultRoster() []types.AccountManager {
	return []types.AccountManager{
		{
			ID:           "am-001",
			Name:         "John Smith",
			Email:        "john.smith@company.com",
			Specialty:    "Enterprise Sales",
			CalendarLink: "https://calendar.com/john-smith",
		},
	}
}

// record tracks one launched campaign
type record struct {
	config types.CampaignConfig
	state  types.CampaignState
	queued int
	total  int
}

// Orchestrator owns the campaign lifecycle and the shared job queue.
// Constructed once and injected into workers; no package-level state.
type Orchestrator struct {
	crm        provider.CRM
	enrichment provider.Enrichment
	queue      *queue.Queue
	roster     []types.AccountManager
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	mu        sync.RWMutex
	campaigns map[string]*record
	nextAM    int
}

// New creates an Orchestrator. An empty roster falls back to the default
// account manager; a nil publisher drops events.
func New(crm provider.CRM, enrichment provider.Enrichment, q *queue.Queue, roster []types.AccountManager, publisher Publisher, logger zerolog.Logger) *Orchestrator {
	if len(roster) == 0 {
		roster = DefaultRoster()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Orchestrator{
		crm:        crm,
		enrichment: enrichment,
		queue:      q,
		roster:     roster,
		publisher:  publisher,
		metrics:    metrics.Get(),
		logger:     logger,
		campaigns:  make(map[string]*record),
	}
}

// Queue exposes the shared job queue for worker wiring
func (o *Orchestrator) Queue() *queue.Queue {
	return o.queue
}

func validateConfig(config *types.CampaignConfig) error {
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", types.ErrInvalidConfig)
	}
	if config.MinProbability < 0 || config.MinProbability > 100 {
		return fmt.Errorf("%w: min_probability %d out of range [0,100]", types.ErrInvalidConfig, config.MinProbability)
	}
	if config.MaxCallsPerDay < 1 {
		return fmt.Errorf("%w: max_calls_per_day must be at least 1, got %d", types.ErrInvalidConfig, config.MaxCallsPerDay)
	}
	if config.CallHours.Start < 0 || config.CallHours.End > 23 || config.CallHours.Start >= config.CallHours.End {
		return fmt.Errorf("%w: call_hours %d-%d is not a valid window", types.ErrInvalidConfig, config.CallHours.Start, config.CallHours.End)
	}
	if config.ID == "" {
		config.ID = uuid.New().String()
	}
	return nil
}

// Launch loads prospects, researches and scores them, filters by the
// probability threshold, and queues one call per qualified prospect with
// rate-limit spacing. Config validation is the only fatal failure; a bad
// prospect just drops out of the qualified set.
func (o *Orchestrator) Launch(ctx context.Context, config types.CampaignConfig) (types.CampaignSummary, error) {
	if err := validateConfig(&config); err != nil {
		return types.CampaignSummary{}, err
	}

	o.logger.Info().
		Str("campaign_id", config.ID).
		Str("name", config.Name).
		Msg("launching campaign")

	prospects, err := o.crm.QueryProspects(ctx, config.Filters)
	if err != nil {
		return types.CampaignSummary{}, fmt.Errorf("load prospects: %w", err)
	}
	o.metrics.RecordProspectsLoaded(len(prospects))

	now := time.Now()
	researched := batchResearch(ctx, o, prospects, now, o.logger)

	qualified := make([]*types.ResearchContext, 0, len(researched))
	for _, r := range researched {
		if r.SuccessProbability >= config.MinProbability {
			qualified = append(qualified, r)
		}
	}
	o.logger.Info().
		Str("campaign_id", config.ID).
		Int("loaded", len(prospects)).
		Int("researched", len(researched)).
		Int("qualified", len(qualified)).
		Int("threshold", config.MinProbability).
		Msg("research phase complete")

	// Highest probability first; load order breaks ties
	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].SuccessProbability > qualified[j].SuccessProbability
	})

	spacing := time.Duration(millisPerDay/config.MaxCallsPerDay) * time.Millisecond

	queued := 0
	for i, research := range qualified {
		prospect := research.Prospect
		scheduled := timing.NextContactTime(prospect.Timezone, prospect.Role, config.CallHours, now).
			Add(time.Duration(i) * spacing)

		job := &types.Job{
			ID:             fmt.Sprintf("call-%s-%s", config.ID, prospect.ID),
			CampaignID:     config.ID,
			Prospect:       prospect,
			Research:       *research,
			AccountManager: o.assignAccountManager(),
			ScheduledTime:  scheduled,
			Priority:       research.SuccessProbability,
		}
		if o.queue.Enqueue(job) {
			queued++
			o.metrics.RecordJobQueued()
		}
	}

	o.mu.Lock()
	o.campaigns[config.ID] = &record{
		config: config,
		state:  types.CampaignRunning,
		queued: queued,
		total:  len(prospects),
	}
	o.mu.Unlock()
	o.metrics.SetCampaignState("", types.CampaignRunning)

	summary := types.CampaignSummary{
		CampaignID:     config.ID,
		TotalProspects: len(prospects),
		QueuedCalls:    queued,
	}
	o.publisher.Publish("campaign_launched", summary)
	o.logger.Info().
		Str("campaign_id", config.ID).
		Int("queued_calls", queued).
		Msg("campaign launched")

	return summary, nil
}

// assignAccountManager hands out account managers round-robin
func (o *Orchestrator) assignAccountManager() types.AccountManager {
	o.mu.Lock()
	defer o.mu.Unlock()
	am := o.roster[o.nextAM%len(o.roster)]
	o.nextAM++
	return am
}

// Pause stops worker dequeuing. Scope is queue-wide rather than
// per-campaign; see the queue documentation.
func (o *Orchestrator) Pause(campaignID string) error {
	if err := o.transition(campaignID, types.CampaignRunning, types.CampaignPaused); err != nil {
		return err
	}
	o.queue.Pause()
	o.publisher.Publish("campaign_paused", campaignID)
	o.logger.Info().Str("campaign_id", campaignID).Msg("campaign paused")
	return nil
}

// Resume restarts worker dequeuing
func (o *Orchestrator) Resume(campaignID string) error {
	if err := o.transition(campaignID, types.CampaignPaused, types.CampaignRunning); err != nil {
		return err
	}
	o.queue.Resume()
	o.publisher.Publish("campaign_resumed", campaignID)
	o.logger.Info().Str("campaign_id", campaignID).Msg("campaign resumed")
	return nil
}

// Cancel removes all not-yet-started jobs for the campaign. In-flight jobs
// finish and still report their results.
func (o *Orchestrator) Cancel(campaignID string) (int, error) {
	o.mu.Lock()
	rec, ok := o.campaigns[campaignID]
	if !ok {
		o.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", types.ErrCampaignNotFound, campaignID)
	}
	prev := rec.state
	rec.state = types.CampaignCancelled
	o.mu.Unlock()

	removed := o.queue.Cancel(campaignID)
	o.metrics.SetCampaignState(prev, types.CampaignCancelled)
	o.publisher.Publish("campaign_cancelled", campaignID)
	o.logger.Info().
		Str("campaign_id", campaignID).
		Int("removed_jobs", removed).
		Msg("campaign cancelled")
	return removed, nil
}

// Stats counts the campaign's jobs by state
func (o *Orchestrator) Stats(campaignID string) (types.CampaignStats, error) {
	o.mu.RLock()
	_, ok := o.campaigns[campaignID]
	o.mu.RUnlock()
	if !ok {
		return types.CampaignStats{}, fmt.Errorf("%w: %s", types.ErrCampaignNotFound, campaignID)
	}
	stats := o.queue.Stats(campaignID)
	o.settle(campaignID, stats)
	return stats, nil
}

// State reports the campaign's lifecycle state
func (o *Orchestrator) State(campaignID string) (types.CampaignState, error) {
	o.mu.RLock()
	rec, ok := o.campaigns[campaignID]
	o.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrCampaignNotFound, campaignID)
	}
	o.settle(campaignID, o.queue.Stats(campaignID))
	o.mu.RLock()
	defer o.mu.RUnlock()
	return rec.state, nil
}

// settle flips a drained running campaign to completed
func (o *Orchestrator) settle(campaignID string, stats types.CampaignStats) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec, ok := o.campaigns[campaignID]
	if !ok || rec.state != types.CampaignRunning {
		return
	}
	if rec.queued > 0 && stats.Waiting == 0 && stats.Active == 0 {
		rec.state = types.CampaignCompleted
		o.metrics.SetCampaignState(types.CampaignRunning, types.CampaignCompleted)
		o.publisher.Publish("campaign_completed", campaignID)
	}
}

func (o *Orchestrator) transition(campaignID string, from, to types.CampaignState) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec, ok := o.campaigns[campaignID]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrCampaignNotFound, campaignID)
	}
	if rec.state != from {
		return fmt.Errorf("campaign %s is %s, expected %s", campaignID, rec.state, from)
	}
	rec.state = to
	o.metrics.SetCampaignState(from, to)
	return nil
}
