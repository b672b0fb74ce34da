package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/outboundhq/dialer/internal/types"
)

func TestSessionForwardProgression(t *testing.T) {
	s := NewSession(NewRegistry())

	if s.State().Stage != types.StageOpening {
		t.Fatalf("expected opening, got %s", s.State().Stage)
	}

	stages := []types.ConversationStage{
		types.StageDiscovery,
		types.StageQualification,
		types.StageBooking,
		types.StageClosing,
	}
	for _, stage := range stages {
		if err := s.Advance(stage); err != nil {
			t.Fatalf("advance to %s: %v", stage, err)
		}
		if s.State().Stage != stage {
			t.Fatalf("expected %s, got %s", stage, s.State().Stage)
		}
	}
}

func TestSessionNeverReverts(t *testing.T) {
	s := NewSession(NewRegistry())

	if err := s.Advance(types.StageQualification); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := s.Advance(types.StageDiscovery); err == nil {
		t.Error("expected error reverting qualification -> discovery")
	}
	if err := s.Advance(types.StageQualification); err == nil {
		t.Error("expected error on self-transition")
	}
}

func TestSessionClosingIsAbsorbing(t *testing.T) {
	s := NewSession(NewRegistry())

	if err := s.Advance(types.StageClosing); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := s.Advance(types.StageBooking); err == nil {
		t.Error("expected error advancing out of closing")
	}
}

func TestSessionObjectionInterruptsAndReturns(t *testing.T) {
	s := NewSession(NewRegistry())

	if err := s.Advance(types.StageDiscovery); err != nil {
		t.Fatalf("advance: %v", err)
	}

	s.RaiseObjection("too expensive")
	if s.State().Stage != types.StageObjection {
		t.Fatalf("expected objection stage, got %s", s.State().Stage)
	}

	// Advancing mid-objection is rejected
	if err := s.Advance(types.StageQualification); err == nil {
		t.Error("expected error advancing during objection")
	}

	s.ResolveObjection()
	if s.State().Stage != types.StageDiscovery {
		t.Errorf("expected return to discovery, got %s", s.State().Stage)
	}
	if len(s.State().ObjectionsRaised) != 1 || s.State().ObjectionsRaised[0] != "too expensive" {
		t.Errorf("unexpected objections: %v", s.State().ObjectionsRaised)
	}
}

func TestSessionBookMeetingGatedOnQualification(t *testing.T) {
	s := NewSession(NewRegistry())
	ctx := context.Background()
	params := json.RawMessage(`{"datetime":"2025-06-10T14:00:00Z","prospect_email":"jane@acme.example","meeting_type":"discovery"}`)

	// Before qualification, booking must fail
	if _, err := s.Invoke(ctx, ToolBookMeeting, params); err == nil {
		t.Fatal("expected error booking from opening stage")
	}

	if err := s.Advance(types.StageDiscovery); err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(types.StageQualification); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Invoke(ctx, ToolBookMeeting, params); err == nil {
		t.Fatal("expected error booking during qualification")
	}

	if err := s.Advance(types.StageBooking); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Invoke(ctx, ToolBookMeeting, params); err != nil {
		t.Fatalf("booking after qualification: %v", err)
	}

	if len(s.Invocations()) != 1 || s.Invocations()[0].Name != ToolBookMeeting {
		t.Errorf("expected one book_meeting invocation, got %v", s.Invocations())
	}
}

func TestSessionUnknownTool(t *testing.T) {
	s := NewSession(NewRegistry())

	_, err := s.Invoke(context.Background(), ToolName("transfer_call"), json.RawMessage(`{}`))
	if !errors.Is(err, types.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if len(s.Invocations()) != 0 {
		t.Error("failed invocation should not be recorded")
	}
}

func TestSessionHandlerErrorSurfaced(t *testing.T) {
	registry := NewRegistry()
	handlerErr := errors.New("calendar service down")
	registry.CheckCalendar = func(_ context.Context, _ CalendarParams) (CalendarResult, error) {
		return CalendarResult{}, handlerErr
	}

	s := NewSession(registry)
	_, err := s.Invoke(context.Background(), ToolCheckCalendar, json.RawMessage(`{"preferred_dates":[]}`))
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error surfaced, got %v", err)
	}

	// State preserved, the caller decides whether to continue
	if s.State().Stage != types.StageOpening {
		t.Errorf("state changed after handler error: %s", s.State().Stage)
	}
}

func TestSessionQualificationUpdateRecorded(t *testing.T) {
	s := NewSession(NewRegistry())

	raw := json.RawMessage(`{"budget_confirmed":true,"need_identified":true}`)
	if _, err := s.Invoke(context.Background(), ToolUpdateQualification, raw); err != nil {
		t.Fatalf("update qualification: %v", err)
	}

	q := s.State().Qualification
	if q == nil || !q.BudgetConfirmed || !q.NeedIdentified || q.AuthorityConfirmed {
		t.Errorf("unexpected qualification data: %+v", q)
	}
}

func TestSessionSentimentClamped(t *testing.T) {
	s := NewSession(NewRegistry())

	s.SetSentiment(1.4)
	if s.State().Sentiment != 1 {
		t.Errorf("expected clamp to 1, got %f", s.State().Sentiment)
	}
	s.SetSentiment(-0.2)
	if s.State().Sentiment != 0 {
		t.Errorf("expected clamp to 0, got %f", s.State().Sentiment)
	}
}
