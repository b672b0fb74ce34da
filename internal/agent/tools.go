package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/outboundhq/dialer/internal/provider"
	"github.com/outboundhq/dialer/internal/types"
)

// ToolName identifies a callable tool. The set is fixed and closed.
type ToolName string

const (
	ToolCheckCalendar       ToolName = "check_calendar_availability"
	ToolBookMeeting         ToolName = "book_meeting"
	ToolEndCall             ToolName = "end_call"
	ToolUpdateQualification ToolName = "update_qualification_status"
)

// EndCallReason enumerates the allowed reasons for ending a call
type EndCallReason string

const (
	EndReasonMeetingBooked     EndCallReason = "meeting_booked"
	EndReasonNotInterested     EndCallReason = "not_interested"
	EndReasonCallbackRequested EndCallReason = "callback_requested"
	EndReasonNotQualified      EndCallReason = "not_qualified"
)

// CalendarParams requests availability for potential meeting times
type CalendarParams struct {
	PreferredDates  []string `json:"preferred_dates"`
	DurationMinutes int      `json:"duration_minutes,omitempty"` // defaults to 30
}

// CalendarSlot is one availability answer
type CalendarSlot struct {
	Datetime  time.Time `json:"datetime"`
	Available bool      `json:"available"`
}

// CalendarResult lists the slots found for a calendar check
type CalendarResult struct {
	AvailableSlots []CalendarSlot `json:"available_slots"`
}

// BookMeetingParams books a meeting after qualification is complete
type BookMeetingParams struct {
	Datetime      time.Time `json:"datetime"`
	ProspectEmail string    `json:"prospect_email"`
	MeetingType   string    `json:"meeting_type"`
	Notes         string    `json:"notes,omitempty"`
}

// BookingConfirmation acknowledges a booked meeting
type BookingConfirmation struct {
	BookingConfirmed      bool   `json:"booking_confirmed"`
	CalendarInviteSent    bool   `json:"calendar_invite_sent"`
	ConfirmationEmailSent bool   `json:"confirmation_email_sent"`
	MeetingID             string `json:"meeting_id"`
}

// EndCallParams ends the call with an appropriate follow-up action
type EndCallParams struct {
	Reason           EndCallReason `json:"reason"`
	FollowUpAction   string        `json:"follow_up_action"`
	CallbackDatetime *time.Time    `json:"callback_datetime,omitempty"`
}

// EndCallAck acknowledges the call ending
type EndCallAck struct {
	CallEnded         bool `json:"call_ended"`
	FollowUpScheduled bool `json:"follow_up_scheduled"`
}

// QualificationParams updates BANT status during discovery
type QualificationParams struct {
	BudgetConfirmed    bool   `json:"budget_confirmed"`
	AuthorityConfirmed bool   `json:"authority_confirmed"`
	NeedIdentified     bool   `json:"need_identified"`
	TimelineDiscussed  bool   `json:"timeline_discussed"`
	Notes              string `json:"notes,omitempty"`
}

// QualificationAck acknowledges a qualification update
type QualificationAck struct {
	QualificationUpdated bool `json:"qualification_updated"`
}

// Invocation records one tool call made during a conversation
type Invocation struct {
	Name   ToolName        `json:"name"`
	Params json.RawMessage `json:"params"`
}

// Registry is the fixed dispatch table of callable tools. Handlers are
// fields so callers can wire real services; defaults return canned results.
// Handler errors are surfaced to the caller, never swallowed.
type Registry struct {
	CheckCalendar       func(ctx context.Context, params CalendarParams) (CalendarResult, error)
	BookMeeting         func(ctx context.Context, params BookMeetingParams) (BookingConfirmation, error)
	EndCall             func(ctx context.Context, params EndCallParams) (EndCallAck, error)
	UpdateQualification func(ctx context.Context, params QualificationParams) (QualificationAck, error)
}

// NewRegistry creates a Registry with default handlers
func NewRegistry() *Registry {
	return &Registry{
		CheckCalendar: func(_ context.Context, params CalendarParams) (CalendarResult, error) {
			if params.DurationMinutes <= 0 {
				params.DurationMinutes = 30
			}
			slots := make([]CalendarSlot, 0, len(params.PreferredDates))
			for _, d := range params.PreferredDates {
				when, err := time.Parse(time.RFC3339, d)
				if err != nil {
					return CalendarResult{}, fmt.Errorf("invalid preferred date %q: %w", d, err)
				}
				slots = append(slots, CalendarSlot{Datetime: when, Available: true})
			}
			return CalendarResult{AvailableSlots: slots}, nil
		},
		BookMeeting: func(_ context.Context, _ BookMeetingParams) (BookingConfirmation, error) {
			return BookingConfirmation{
				BookingConfirmed:      true,
				CalendarInviteSent:    true,
				ConfirmationEmailSent: true,
				MeetingID:             "mtg_" + uuid.New().String()[:8],
			}, nil
		},
		EndCall: func(_ context.Context, params EndCallParams) (EndCallAck, error) {
			return EndCallAck{
				CallEnded:         true,
				FollowUpScheduled: params.CallbackDatetime != nil,
			}, nil
		},
		UpdateQualification: func(_ context.Context, _ QualificationParams) (QualificationAck, error) {
			return QualificationAck{QualificationUpdated: true}, nil
		},
	}
}

// Invoke dispatches a tool call by name with JSON-encoded parameters.
// Unregistered names fail with ErrUnknownTool.
func (r *Registry) Invoke(ctx context.Context, name ToolName, raw json.RawMessage) (any, error) {
	switch name {
	case ToolCheckCalendar:
		var params CalendarParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("decode %s params: %w", name, err)
		}
		return r.CheckCalendar(ctx, params)

	case ToolBookMeeting:
		var params BookMeetingParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("decode %s params: %w", name, err)
		}
		return r.BookMeeting(ctx, params)

	case ToolEndCall:
		var params EndCallParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("decode %s params: %w", name, err)
		}
		return r.EndCall(ctx, params)

	case ToolUpdateQualification:
		var params QualificationParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("decode %s params: %w", name, err)
		}
		return r.UpdateQualification(ctx, params)

	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTool, name)
	}
}

// Definitions returns the tool set in the form the voice platform expects
func (r *Registry) Definitions() []provider.ToolDefinition {
	return []provider.ToolDefinition{
		{Name: string(ToolCheckCalendar), Description: "Check account manager availability for potential meeting times"},
		{Name: string(ToolBookMeeting), Description: "Book a meeting after qualification is complete"},
		{Name: string(ToolEndCall), Description: "End the call gracefully with appropriate follow-up action"},
		{Name: string(ToolUpdateQualification), Description: "Update BANT qualification status during discovery"},
	}
}
