package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/outboundhq/dialer/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Research metrics
	ProspectsLoadedTotal    int64
	ProspectsScoredTotal    int64
	EnrichmentFailuresTotal int64

	// Queue metrics
	JobsQueuedTotal    int64
	JobsCompletedTotal int64
	JobsFailedTotal    int64
	JobRetriesTotal    int64

	// Call metrics
	CallsStartedTotal   int64
	CallTimeoutsTotal   int64
	MeetingsBookedTotal int64
	callsByOutcome      map[types.CallOutcome]int64

	// Campaign metrics
	campaignsByState map[types.CampaignState]int

	// WebSocket metrics
	WebSocketConnectionsTotal int64
	EventsBroadcastTotal      int64

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			callsByOutcome:   make(map[types.CallOutcome]int64),
			campaignsByState: make(map[types.CampaignState]int),
			startTime:        time.Now(),
		}
	})
	return instance
}

// RecordProspectsLoaded adds to the loaded prospects counter
func (m *Metrics) RecordProspectsLoaded(n int) {
	m.mu.Lock()
	m.ProspectsLoadedTotal += int64(n)
	m.mu.Unlock()
}

// RecordProspectScored increments the scored prospects counter
func (m *Metrics) RecordProspectScored() {
	m.mu.Lock()
	m.ProspectsScoredTotal++
	m.mu.Unlock()
}

// RecordEnrichmentFailure increments the enrichment failure counter
func (m *Metrics) RecordEnrichmentFailure() {
	m.mu.Lock()
	m.EnrichmentFailuresTotal++
	m.mu.Unlock()
}

// RecordJobQueued increments the queued jobs counter
func (m *Metrics) RecordJobQueued() {
	m.mu.Lock()
	m.JobsQueuedTotal++
	m.mu.Unlock()
}

// RecordJobCompleted increments the completed jobs counter
func (m *Metrics) RecordJobCompleted() {
	m.mu.Lock()
	m.JobsCompletedTotal++
	m.mu.Unlock()
}

// RecordJobFailed increments the terminally failed jobs counter
func (m *Metrics) RecordJobFailed() {
	m.mu.Lock()
	m.JobsFailedTotal++
	m.mu.Unlock()
}

// RecordJobRetry increments the retry counter
func (m *Metrics) RecordJobRetry() {
	m.mu.Lock()
	m.JobRetriesTotal++
	m.mu.Unlock()
}

// RecordCallStarted increments the started calls counter
func (m *Metrics) RecordCallStarted() {
	m.mu.Lock()
	m.CallsStartedTotal++
	m.mu.Unlock()
}

// RecordCallTimeout increments the call timeout counter
func (m *Metrics) RecordCallTimeout() {
	m.mu.Lock()
	m.CallTimeoutsTotal++
	m.mu.Unlock()
}

// RecordCallOutcome counts a classified call outcome
func (m *Metrics) RecordCallOutcome(outcome types.CallOutcome) {
	m.mu.Lock()
	m.callsByOutcome[outcome]++
	if outcome == types.OutcomeMeetingBooked {
		m.MeetingsBookedTotal++
	}
	m.mu.Unlock()
}

// SetCampaignState records a campaign transition for the state gauge
func (m *Metrics) SetCampaignState(from, to types.CampaignState) {
	m.mu.Lock()
	if from != "" && m.campaignsByState[from] > 0 {
		m.campaignsByState[from]--
	}
	m.campaignsByState[to]++
	m.mu.Unlock()
}

// RecordWebSocketConnection increments the connection counter
func (m *Metrics) RecordWebSocketConnection() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.mu.Unlock()
}

// RecordEventBroadcast increments the broadcast counter
func (m *Metrics) RecordEventBroadcast() {
	m.mu.Lock()
	m.EventsBroadcastTotal++
	m.mu.Unlock()
}

// Handler serves metrics in Prometheus text exposition format
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")

		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + `="` + labels[i+1] + `"`
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("dialer_uptime_seconds", time.Since(m.startTime).Seconds())

		// Research metrics
		write("dialer_prospects_loaded_total", m.ProspectsLoadedTotal)
		write("dialer_prospects_scored_total", m.ProspectsScoredTotal)
		write("dialer_enrichment_failures_total", m.EnrichmentFailuresTotal)

		// Queue metrics
		write("dialer_jobs_queued_total", m.JobsQueuedTotal)
		write("dialer_jobs_completed_total", m.JobsCompletedTotal)
		write("dialer_jobs_failed_total", m.JobsFailedTotal)
		write("dialer_job_retries_total", m.JobRetriesTotal)

		// Call metrics
		write("dialer_calls_started_total", m.CallsStartedTotal)
		write("dialer_call_timeouts_total", m.CallTimeoutsTotal)
		write("dialer_meetings_booked_total", m.MeetingsBookedTotal)
		for outcome, count := range m.callsByOutcome {
			write("dialer_calls_by_outcome", count, "outcome", string(outcome))
		}

		// Campaign metrics
		for state, count := range m.campaignsByState {
			write("dialer_campaigns_by_state", count, "state", string(state))
		}

		// WebSocket metrics
		write("dialer_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("dialer_events_broadcast_total", m.EventsBroadcastTotal)
	}
}
