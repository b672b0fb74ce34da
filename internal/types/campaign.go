package types

import "time"

// CampaignState represents the lifecycle of a campaign
type CampaignState string

const (
	CampaignCreated   CampaignState = "created"
	CampaignRunning   CampaignState = "running"
	CampaignPaused    CampaignState = "paused"
	CampaignCompleted CampaignState = "completed"
	CampaignCancelled CampaignState = "cancelled"
)

// CallHours is the allowed calling window in UTC hours
type CallHours struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ProspectFilters narrows the prospect set loaded from the CRM
type ProspectFilters struct {
	Industries     []string `json:"industries,omitempty"`
	CompanySizeMin int      `json:"company_size_min,omitempty"`
	CompanySizeMax int      `json:"company_size_max,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	AccountStatus  []string `json:"account_status,omitempty"`
}

// CampaignConfig describes one outbound campaign. Immutable once launched.
type CampaignConfig struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Filters        ProspectFilters `json:"filters"`
	MinProbability int             `json:"min_probability"`
	MaxCallsPerDay int             `json:"max_calls_per_day"`
	CallHours      CallHours       `json:"call_hours"`
}

// CampaignSummary is returned by a successful launch
type CampaignSummary struct {
	CampaignID     string `json:"campaign_id"`
	TotalProspects int    `json:"total_prospects"`
	QueuedCalls    int    `json:"queued_calls"`
}

// CampaignStats counts jobs by state for one campaign
type CampaignStats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// ActivityRecord is one CRM activity log row for a call attempt
type ActivityRecord struct {
	ProspectID      string    `json:"prospect_id"`
	CampaignID      string    `json:"campaign_id"`
	ActivityType    string    `json:"activity_type"`
	Outcome         string    `json:"outcome"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	Transcript      string    `json:"transcript,omitempty"`
	SentimentScore  float64   `json:"sentiment_score,omitempty"`
	MeetingBooked   bool      `json:"meeting_booked"`
	Notes           string    `json:"notes,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
