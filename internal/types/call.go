package types

import (
	"encoding/json"
	"time"
)

// ConversationStage represents the phase of an in-flight call
type ConversationStage string

const (
	StageOpening       ConversationStage = "opening"
	StageDiscovery     ConversationStage = "discovery"
	StageQualification ConversationStage = "qualification"
	StageBooking       ConversationStage = "booking"
	StageObjection     ConversationStage = "objection"
	StageClosing       ConversationStage = "closing"
)

// QualificationData tracks BANT progress during discovery
type QualificationData struct {
	BudgetConfirmed    bool   `json:"budget_confirmed"`
	AuthorityConfirmed bool   `json:"authority_confirmed"`
	NeedIdentified     bool   `json:"need_identified"`
	TimelineDiscussed  bool   `json:"timeline_discussed"`
	Notes              string `json:"notes,omitempty"`
}

// ConversationState is the live state of one call. Owned exclusively by the
// call agent processing that call and discarded when the call ends.
type ConversationState struct {
	Stage            ConversationStage  `json:"stage"`
	Turns            int                `json:"turns"`
	Sentiment        float64            `json:"sentiment"` // 0-1
	ObjectionsRaised []string           `json:"objections_raised"`
	Qualification    *QualificationData `json:"qualification,omitempty"`
}

// AccountManager is the human the call tries to book a meeting with
type AccountManager struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Specialty    string `json:"specialty"`
	CalendarLink string `json:"calendar_link"`
}

// CallContext carries everything a worker needs to run one call
type CallContext struct {
	ProspectInfo   ResearchContext   `json:"prospect_info"`
	CallObjective  string            `json:"call_objective"`
	AccountManager AccountManager    `json:"account_manager"`
	State          ConversationState `json:"conversation_state"`
	CampaignID     string            `json:"campaign_id"`
}

// CallStatus is the terminal status of a call attempt
type CallStatus string

const (
	CallCompleted CallStatus = "completed"
	CallFailed    CallStatus = "failed"
	CallNoAnswer  CallStatus = "no-answer"
	CallVoicemail CallStatus = "voicemail"
)

// Remote call statuses reported by the telephony provider
const (
	RemoteStatusQueued     = "queued"
	RemoteStatusInProgress = "in-progress"
	RemoteStatusEnded      = "ended"
	RemoteStatusFailed     = "failed"
	RemoteStatusNoAnswer   = "no-answer"
)

// EndedReasonAssistantRequest means the assistant ended the call itself,
// which only happens after the conversation reached its close.
const EndedReasonAssistantRequest = "assistant-request"

// ToolCall is one tool invocation reported by the voice platform
type ToolCall struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
}

// RemoteCallStatus is a point-in-time view of an in-flight call.
// EndedReason and ToolCalls are populated only on terminal statuses.
type RemoteCallStatus struct {
	Status          string     `json:"status"`
	Transcript      string     `json:"transcript,omitempty"`
	DurationSeconds int        `json:"duration_seconds,omitempty"`
	EndedReason     string     `json:"ended_reason,omitempty"`
	ToolCalls       []ToolCall `json:"tool_calls,omitempty"`
}

// CallOutcome is the terminal classification of a completed call
type CallOutcome string

const (
	OutcomeMeetingBooked CallOutcome = "meeting_booked"
	OutcomeFollowUp      CallOutcome = "follow_up"
	OutcomeNotInterested CallOutcome = "not_interested"
	OutcomeCallback      CallOutcome = "callback"
)

// MeetingDetails is created when a book_meeting tool invocation succeeds
type MeetingDetails struct {
	Datetime         time.Time `json:"datetime"`
	DurationMinutes  int       `json:"duration_minutes"`
	MeetingType      string    `json:"meeting_type"`
	AccountManagerID string    `json:"account_manager_id"`
	ProspectEmail    string    `json:"prospect_email"`
}

// CallResult is the structured outcome of one call attempt.
// Produced exactly once per attempt, immutable after creation.
type CallResult struct {
	CallID          string          `json:"call_id"`
	Status          CallStatus      `json:"status"`
	DurationSeconds int             `json:"duration_seconds"`
	Transcript      string          `json:"transcript"`
	SentimentScore  float64         `json:"sentiment_score"`
	Outcome         CallOutcome     `json:"outcome"`
	MeetingBooked   bool            `json:"meeting_booked"`
	MeetingDetails  *MeetingDetails `json:"meeting_details,omitempty"`
	NextAction      string          `json:"next_action,omitempty"`
}
