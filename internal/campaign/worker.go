package campaign

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/outboundhq/dialer/internal/agent"
	"github.com/outboundhq/dialer/internal/metrics"
	"github.com/outboundhq/dialer/internal/monitor"
	"github.com/outboundhq/dialer/internal/provider"
	"github.com/outboundhq/dialer/internal/queue"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

// Pool executes queued calls on a fixed number of workers. Each worker
// owns one job at a time; the queue is the only shared structure.
type Pool struct {
	queue     *queue.Queue
	crm       provider.CRM
	telephony provider.Telephony
	monitor   *monitor.Monitor
	semantic  provider.SemanticContext
	registry  *agent.Registry
	publisher Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	workers     int
	tick        time.Duration
	callTimeout time.Duration
}

// PoolOptions configures a worker pool
type PoolOptions struct {
	Workers     int           // default 5
	Tick        time.Duration // default 1s
	CallTimeout time.Duration // default 10m
	Semantic    provider.SemanticContext
	Publisher   Publisher
}

// NewPool creates a worker pool pulling from the given queue
func NewPool(q *queue.Queue, crm provider.CRM, telephony provider.Telephony, mon *monitor.Monitor, registry *agent.Registry, opts PoolOptions, logger zerolog.Logger) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 5
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Minute
	}
	if opts.Publisher == nil {
		opts.Publisher = NopPublisher{}
	}
	if registry == nil {
		registry = agent.NewRegistry()
	}
	return &Pool{
		queue:       q,
		crm:         crm,
		telephony:   telephony,
		monitor:     mon,
		semantic:    opts.Semantic,
		registry:    registry,
		publisher:   opts.Publisher,
		metrics:     metrics.Get(),
		logger:      logger,
		workers:     opts.Workers,
		tick:        opts.Tick,
		callTimeout: opts.CallTimeout,
	}
}

// Start runs the pool until the context is cancelled. It blocks; run it in
// a goroutine. In-flight calls finish before Start returns.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info().Int("workers", p.workers).Msg("worker pool started")

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.run(ctx, id)
		}(i)
	}
	wg.Wait()
	p.logger.Info().Msg("worker pool stopped")
}

// run is one worker's pull loop
func (p *Pool) run(ctx context.Context, id int) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job := p.queue.Dequeue(time.Now())
			if job == nil {
				continue
			}
			p.execute(ctx, id, job)
		}
	}
}

// execute runs one call attempt end to end and reports its terminal result
// exactly once
func (p *Pool) execute(ctx context.Context, workerID int, job *types.Job) {
	logger := p.logger.With().
		Int("worker", workerID).
		Str("job_id", job.ID).
		Str("campaign_id", job.CampaignID).
		Str("prospect", job.Prospect.Name).
		Int("attempt", job.Attempt).
		Logger()
	logger.Info().Msg("processing call")

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	result, err := p.runCall(callCtx, job)
	if err != nil {
		p.fail(ctx, job, err, logger)
		return
	}

	if err := p.crm.LogActivity(ctx, types.ActivityRecord{
		ProspectID:      job.Prospect.ID,
		CampaignID:      job.CampaignID,
		ActivityType:    "call",
		Outcome:         string(result.Outcome),
		DurationSeconds: result.DurationSeconds,
		Transcript:      result.Transcript,
		SentimentScore:  result.SentimentScore,
		MeetingBooked:   result.MeetingBooked,
		Timestamp:       time.Now(),
	}); err != nil {
		logger.Error().Err(err).Msg("failed to log call activity")
	}

	if result.MeetingBooked {
		if err := p.crm.UpdateStage(ctx, job.Prospect.ID, "Meeting Scheduled"); err != nil {
			logger.Error().Err(err).Msg("failed to update prospect stage")
		}
	}

	p.queue.Complete(job.ID)
	p.metrics.RecordJobCompleted()
	p.metrics.RecordCallOutcome(result.Outcome)
	p.publisher.Publish("call_completed", result)
	logger.Info().
		Str("outcome", string(result.Outcome)).
		Bool("meeting_booked", result.MeetingBooked).
		Float64("sentiment", result.SentimentScore).
		Msg("call completed")
}

// runCall places the call and waits for its terminal status
func (p *Pool) runCall(ctx context.Context, job *types.Job) (types.CallResult, error) {
	callContext := types.CallContext{
		ProspectInfo:   job.Research,
		CallObjective:  "book a discovery meeting",
		AccountManager: job.AccountManager,
		State: types.ConversationState{
			Stage:            types.StageOpening,
			Sentiment:        0.5,
			ObjectionsRaised: []string{},
		},
		CampaignID: job.CampaignID,
	}

	// Semantic context is optional; a lookup failure never fails the call
	historical := ""
	if p.semantic != nil {
		if h, err := p.semantic.HistoricalContext(ctx, job.Prospect.ID); err == nil {
			historical = h
		}
	}
	instructions := agent.BuildInstructions(callContext, historical)

	callID, err := p.telephony.StartCall(ctx, job.Prospect.Phone, instructions, p.registry.Definitions())
	if err != nil {
		return types.CallResult{}, err
	}
	p.metrics.RecordCallStarted()

	completion, err := p.monitor.AwaitCompletion(ctx, callID, p.callTimeout)
	if err != nil {
		if errors.Is(err, types.ErrCallTimeout) {
			p.metrics.RecordCallTimeout()
		}
		return types.CallResult{}, err
	}

	// Terminal state from the final status: transcript heuristics plus the
	// platform's ended reason. An assistant-initiated hangup only happens
	// once the conversation has reached its close.
	state := callContext.State
	state.Sentiment = completion.Progress.Sentiment
	state.ObjectionsRaised = completion.Progress.Objections
	if completion.Status.EndedReason == types.EndedReasonAssistantRequest {
		state.Stage = types.StageClosing
	}

	invocations := make([]agent.Invocation, 0, len(completion.Status.ToolCalls))
	for _, call := range completion.Status.ToolCalls {
		invocations = append(invocations, agent.Invocation{
			Name:   agent.ToolName(call.Name),
			Params: call.Params,
		})
	}

	result := agent.ClassifyOutcome(completion.Progress.Transcript, state, invocations)
	result.CallID = callID
	result.DurationSeconds = completion.Status.DurationSeconds
	return result, nil
}

// fail applies the retry policy and, on the final attempt, reports the
// failure to the CRM exactly once
func (p *Pool) fail(ctx context.Context, job *types.Job, cause error, logger zerolog.Logger) {
	retried := p.queue.Fail(job.ID, cause, time.Now())
	if retried {
		p.metrics.RecordJobRetry()
		logger.Warn().Err(cause).Msg("call failed, scheduled for retry")
		return
	}

	cause = fmt.Errorf("%w: %v", types.ErrQueueExhausted, cause)
	p.metrics.RecordJobFailed()
	logger.Error().Err(cause).Msg("call failed permanently")

	if err := p.crm.LogActivity(ctx, types.ActivityRecord{
		ProspectID:   job.Prospect.ID,
		CampaignID:   job.CampaignID,
		ActivityType: "call_failed",
		Outcome:      "failed",
		Notes:        cause.Error(),
		Timestamp:    time.Now(),
	}); err != nil {
		logger.Error().Err(err).Msg("failed to log call failure")
	}
	p.publisher.Publish("call_failed", job.ID)
}
