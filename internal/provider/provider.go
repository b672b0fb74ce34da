// Package provider defines the contracts the pipeline needs from external
// collaborators. No wire format is prescribed here; adapters decide transport.
package provider

import (
	"context"

	"github.com/outboundhq/dialer/internal/types"
)

// CRM is the system of record for prospects and activity history
type CRM interface {
	QueryProspects(ctx context.Context, filters types.ProspectFilters) ([]types.Prospect, error)
	FetchProspectData(ctx context.Context, crmID string) (types.CRMData, error)
	LogActivity(ctx context.Context, record types.ActivityRecord) error
	UpdateStage(ctx context.Context, prospectID, stage string) error
}

// Enrichment augments a prospect with external company signals.
// Enrich may fail per-prospect; callers must not let one failure abort a batch.
type Enrichment interface {
	Enrich(ctx context.Context, prospect types.Prospect) (types.EnrichmentData, error)
}

// ToolDefinition describes a callable tool exposed to the voice platform
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Telephony drives outbound calls on the voice platform
type Telephony interface {
	StartCall(ctx context.Context, phoneNumber, instructions string, tools []ToolDefinition) (callID string, err error)
	GetStatus(ctx context.Context, callID string) (types.RemoteCallStatus, error)
	EndCall(ctx context.Context, callID string) error
}

// SemanticContext retrieves historical context for prompt construction.
// Optional; absence degrades to a fixed placeholder and never fails a call.
type SemanticContext interface {
	HistoricalContext(ctx context.Context, prospectID string) (string, error)
}
