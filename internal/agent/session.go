package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/outboundhq/dialer/internal/types"
)

// stageOrder positions the forward stages. Objection sits outside the order;
// it interrupts a stage and returns to it.
var stageOrder = map[types.ConversationStage]int{
	types.StageOpening:       0,
	types.StageDiscovery:     1,
	types.StageQualification: 2,
	types.StageBooking:       3,
	types.StageClosing:       4,
}

// Session owns the conversation state for one in-flight call. It is not
// safe for concurrent use; a session belongs to exactly one worker.
type Session struct {
	registry    *Registry
	state       types.ConversationState
	interrupted types.ConversationStage
	invocations []Invocation
}

// NewSession starts a conversation at the opening stage with neutral sentiment
func NewSession(registry *Registry) *Session {
	return &Session{
		registry: registry,
		state: types.ConversationState{
			Stage:            types.StageOpening,
			Sentiment:        0.5,
			ObjectionsRaised: []string{},
		},
	}
}

// State returns a snapshot of the current conversation state
func (s *Session) State() types.ConversationState {
	return s.state
}

// Invocations returns the tool calls made so far, in order
func (s *Session) Invocations() []Invocation {
	return s.invocations
}

// Advance moves the conversation to the next stage. Forward moves along
// opening → discovery → qualification → booking → closing are allowed,
// skipping ahead is allowed, reverting is not. Objection is entered via
// RaiseObjection, not Advance.
func (s *Session) Advance(next types.ConversationStage) error {
	if next == types.StageObjection {
		return fmt.Errorf("objection stage is entered by raising an objection, not advancing")
	}

	current := s.state.Stage
	if current == types.StageObjection {
		return fmt.Errorf("resolve the objection before advancing from %s", s.interrupted)
	}
	if current == types.StageClosing {
		return fmt.Errorf("conversation already closing")
	}

	if stageOrder[next] <= stageOrder[current] {
		return fmt.Errorf("cannot move from %s back to %s", current, next)
	}

	s.state.Stage = next
	s.state.Turns++
	return nil
}

// RaiseObjection interrupts the current stage and records the objection
func (s *Session) RaiseObjection(objection string) {
	if s.state.Stage != types.StageObjection {
		s.interrupted = s.state.Stage
		s.state.Stage = types.StageObjection
	}
	s.state.ObjectionsRaised = append(s.state.ObjectionsRaised, objection)
	s.state.Turns++
}

// ResolveObjection returns the conversation to the stage the objection
// interrupted. No-op outside the objection stage.
func (s *Session) ResolveObjection() {
	if s.state.Stage != types.StageObjection {
		return
	}
	s.state.Stage = s.interrupted
	s.state.Turns++
}

// SetSentiment updates the live sentiment estimate, clamped to [0,1]
func (s *Session) SetSentiment(score float64) {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	s.state.Sentiment = score
}

// Invoke runs a registered tool through the session, recording the
// invocation on success. book_meeting is gated behind completed
// qualification: the conversation must have reached the booking stage.
func (s *Session) Invoke(ctx context.Context, name ToolName, raw json.RawMessage) (any, error) {
	if name == ToolBookMeeting && stageOrder[s.state.Stage] < stageOrder[types.StageBooking] {
		return nil, fmt.Errorf("book_meeting requires completed qualification, conversation is at %s", s.state.Stage)
	}

	result, err := s.registry.Invoke(ctx, name, raw)
	if err != nil {
		return nil, err
	}

	s.invocations = append(s.invocations, Invocation{Name: name, Params: raw})

	if name == ToolUpdateQualification {
		var params QualificationParams
		if err := json.Unmarshal(raw, &params); err == nil {
			s.state.Qualification = &types.QualificationData{
				BudgetConfirmed:    params.BudgetConfirmed,
				AuthorityConfirmed: params.AuthorityConfirmed,
				NeedIdentified:     params.NeedIdentified,
				TimelineDiscussed:  params.TimelineDiscussed,
				Notes:              params.Notes,
			}
		}
	}

	return result, nil
}
