package types

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is returned when a call invokes an unregistered tool name
	ErrUnknownTool = errors.New("unknown tool")

	// ErrCallTimeout is returned when a call does not reach a terminal
	// status before the configured deadline. Retryable.
	ErrCallTimeout = errors.New("call timeout")

	// ErrQueueExhausted marks a job that failed all its attempts. Terminal.
	ErrQueueExhausted = errors.New("all retry attempts exhausted")

	// ErrInvalidConfig is returned for campaign configs that cannot be launched
	ErrInvalidConfig = errors.New("invalid campaign config")

	// ErrCampaignNotFound is returned for operations on unknown campaign ids
	ErrCampaignNotFound = errors.New("campaign not found")
)

// ScoringError reports malformed signal input to the scorer. It fails the
// single prospect, never the batch.
type ScoringError struct {
	Field  string
	Reason string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring: invalid %s: %s", e.Field, e.Reason)
}
