package types

import "time"

// JobState represents where a job sits in the queue lifecycle
type JobState string

const (
	JobWaiting   JobState = "waiting"
	JobActive    JobState = "active"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// MaxJobAttempts is the total number of execution attempts per job
const MaxJobAttempts = 3

// Job is one queued call attempt. Created at enqueue time, mutated only by
// the queue's retry mechanism, destroyed on terminal success or failure.
type Job struct {
	ID             string          `json:"id"`
	CampaignID     string          `json:"campaign_id"`
	Prospect       Prospect        `json:"prospect"`
	Research       ResearchContext `json:"research_context"`
	AccountManager AccountManager  `json:"account_manager"`
	ScheduledTime  time.Time       `json:"scheduled_time"`
	Priority       int             `json:"priority"`
	Attempt        int             `json:"attempt"`
	LastError      string          `json:"last_error,omitempty"`
}
