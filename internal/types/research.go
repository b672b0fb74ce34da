package types

// ApproachStrategy is the recommended style for opening the conversation
type ApproachStrategy string

const (
	ApproachConsultative ApproachStrategy = "consultative"
	ApproachDirect       ApproachStrategy = "direct"
	ApproachEducational  ApproachStrategy = "educational"
)

// ResearchContext is the full pre-call dossier for one prospect.
// Built once per campaign by the research phase, read-only afterwards.
type ResearchContext struct {
	Prospect            Prospect          `json:"prospect"`
	CRMData             CRMData           `json:"crm_data"`
	EnrichmentData      EnrichmentData    `json:"enrichment_data"`
	TalkingPoints       []string          `json:"talking_points"`
	PainPoints          []string          `json:"pain_points"`
	ApproachStrategy    ApproachStrategy  `json:"approach_strategy"`
	ObjectionStrategies map[string]string `json:"objection_strategies"`
	SuccessProbability  int               `json:"success_probability"` // 0-100
}
