package agent

import (
	"encoding/json"

	"github.com/outboundhq/dialer/internal/types"
)

// nextActions maps each outcome to a human-readable follow-up instruction
var nextActions = map[types.CallOutcome]string{
	types.OutcomeMeetingBooked: "Send meeting confirmation and prep materials",
	types.OutcomeFollowUp:      "Send follow-up email with relevant case studies",
	types.OutcomeCallback:      "Schedule callback for discussed timeframe",
	types.OutcomeNotInterested: "Mark as unqualified, no further outreach",
}

// ClassifyOutcome derives the terminal classification for a completed call.
// Meeting bookings win; otherwise a closing stage with positive sentiment is
// a follow-up, more than two objections means not interested, and anything
// else becomes a callback. CallID, status, and duration are filled by the
// caller.
func ClassifyOutcome(transcript string, state types.ConversationState, invocations []Invocation) types.CallResult {
	var booking *BookMeetingParams
	for _, inv := range invocations {
		if inv.Name == ToolBookMeeting {
			var params BookMeetingParams
			if err := json.Unmarshal(inv.Params, &params); err == nil {
				booking = &params
			}
			break
		}
	}

	var outcome types.CallOutcome
	switch {
	case booking != nil:
		outcome = types.OutcomeMeetingBooked
	case state.Stage == types.StageClosing && state.Sentiment > 0.5:
		outcome = types.OutcomeFollowUp
	case len(state.ObjectionsRaised) > 2:
		outcome = types.OutcomeNotInterested
	default:
		outcome = types.OutcomeCallback
	}

	result := types.CallResult{
		Status:         types.CallCompleted,
		Transcript:     transcript,
		SentimentScore: state.Sentiment,
		Outcome:        outcome,
		MeetingBooked:  booking != nil,
		NextAction:     nextActions[outcome],
	}

	if booking != nil {
		result.MeetingDetails = &types.MeetingDetails{
			Datetime:        booking.Datetime,
			DurationMinutes: 30,
			MeetingType:     booking.MeetingType,
			ProspectEmail:   booking.ProspectEmail,
		}
	}

	return result
}
