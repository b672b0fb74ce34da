package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

// simCall tracks one simulated call in flight
type simCall struct {
	status      string
	transcript  string
	started     time.Time
	ended       *time.Time
	endedReason string
	toolCalls   []types.ToolCall
}

// SimTelephony simulates a voice platform for local development. Calls
// progress from queued through in-progress to ended, growing a transcript
// drawn from canned conversations.
type SimTelephony struct {
	mu       sync.RWMutex
	calls    map[string]*simCall
	rng      *rand.Rand
	logger   zerolog.Logger
	RingTime time.Duration
	TalkTime time.Duration
}

// simConversation is one canned call: the transcript plus how the platform
// reports the ending (reason and any tools the assistant invoked)
type simConversation struct {
	transcript  string
	endedReason string
	toolCalls   []types.ToolCall
}

var simConversations = []simConversation{
	{
		transcript:  "Hi, yes this is speaking. Oh interesting, tell me more. That sounds good actually. Yes, Tuesday works, perfect.",
		endedReason: types.EndedReasonAssistantRequest,
		toolCalls: []types.ToolCall{{
			Name:   "book_meeting",
			Params: json.RawMessage(`{"datetime":"2026-09-08T10:00:00Z","prospect_email":"prospect@example.com","meeting_type":"discovery"}`),
		}},
	},
	{
		transcript:  "Hello? Sorry, I'm quite busy right now. Not interested, thanks. Please remove me from your list.",
		endedReason: "customer-ended-call",
	},
	{
		transcript:  "Hi there. We already have a vendor for that. It's too expensive for us anyway. Send me information and I'll look.",
		endedReason: types.EndedReasonAssistantRequest,
	},
	{
		transcript:  "Yes, speaking. Interested, but the timing is off. Call back later next quarter maybe.",
		endedReason: "customer-ended-call",
	},
}

// NewSimTelephony creates a simulated telephony provider
func NewSimTelephony(logger zerolog.Logger) *SimTelephony {
	return &SimTelephony{
		calls:    make(map[string]*simCall),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
		RingTime: 2 * time.Second,
		TalkTime: 10 * time.Second,
	}
}

func (s *SimTelephony) StartCall(_ context.Context, phoneNumber, _ string, _ []ToolDefinition) (string, error) {
	callID := uuid.New().String()

	s.mu.Lock()
	s.calls[callID] = &simCall{status: types.RemoteStatusQueued, started: time.Now()}
	conv := simConversations[s.rng.Intn(len(simConversations))]
	s.mu.Unlock()

	s.logger.Debug().
		Str("call_id", callID).
		Str("phone", phoneNumber).
		Msg("simulated call started")

	go s.runCall(callID, conv)
	return callID, nil
}

// runCall advances a call through its lifecycle
func (s *SimTelephony) runCall(callID string, conv simConversation) {
	time.Sleep(s.RingTime)
	s.setStatus(callID, types.RemoteStatusInProgress, "")

	// Reveal the transcript in chunks while the call is in progress
	chunk := len(conv.transcript) / 4
	for i := 1; i <= 4; i++ {
		time.Sleep(s.TalkTime / 4)
		end := i * chunk
		if i == 4 {
			end = len(conv.transcript)
		}
		s.setStatus(callID, types.RemoteStatusInProgress, conv.transcript[:end])
	}

	s.finish(callID, conv.transcript, conv.endedReason, conv.toolCalls)
}

func (s *SimTelephony) setStatus(callID, status, transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call, ok := s.calls[callID]
	if !ok || call.ended != nil {
		return
	}
	call.status = status
	if transcript != "" {
		call.transcript = transcript
	}
}

// finish moves a call to its terminal status, recording how it ended
func (s *SimTelephony) finish(callID, transcript, reason string, toolCalls []types.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call, ok := s.calls[callID]
	if !ok || call.ended != nil {
		return
	}
	call.status = types.RemoteStatusEnded
	if transcript != "" {
		call.transcript = transcript
	}
	call.endedReason = reason
	call.toolCalls = toolCalls
	now := time.Now()
	call.ended = &now
}

func (s *SimTelephony) GetStatus(_ context.Context, callID string) (types.RemoteCallStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	call, ok := s.calls[callID]
	if !ok {
		return types.RemoteCallStatus{}, fmt.Errorf("unknown call %s", callID)
	}

	duration := time.Since(call.started)
	if call.ended != nil {
		duration = call.ended.Sub(call.started)
	}

	return types.RemoteCallStatus{
		Status:          call.status,
		Transcript:      call.transcript,
		DurationSeconds: int(duration.Seconds()),
		EndedReason:     call.endedReason,
		ToolCalls:       call.toolCalls,
	}, nil
}

func (s *SimTelephony) EndCall(_ context.Context, callID string) error {
	s.finish(callID, "", "customer-ended-call", nil)
	return nil
}
