package types

import "time"

// AccountStatus represents the CRM lifecycle status of an account
type AccountStatus string

const (
	AccountNew         AccountStatus = "new"
	AccountContacted   AccountStatus = "contacted"
	AccountQualified   AccountStatus = "qualified"
	AccountUnqualified AccountStatus = "unqualified"
)

// InteractionType represents the channel of a past interaction
type InteractionType string

const (
	InteractionCall    InteractionType = "call"
	InteractionEmail   InteractionType = "email"
	InteractionMeeting InteractionType = "meeting"
)

// Prospect is a contact loaded from the CRM. Immutable for a campaign run.
type Prospect struct {
	ID          string `json:"id"`
	CRMID       string `json:"crm_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	Timezone    string `json:"timezone"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// Interaction is a single past touchpoint with a prospect
type Interaction struct {
	ID        string          `json:"id"`
	Type      InteractionType `json:"type"`
	Date      time.Time       `json:"date"`
	Summary   string          `json:"summary"`
	Outcome   string          `json:"outcome,omitempty"`
	Sentiment float64         `json:"sentiment,omitempty"` // 0-1, 0 means unknown
}

// CRMData holds the structured CRM signals for a prospect
type CRMData struct {
	AccountStatus    AccountStatus `json:"account_status"`
	PastInteractions []Interaction `json:"past_interactions"`
	DealValue        float64       `json:"deal_value,omitempty"`
	Industry         string        `json:"industry"`
	CompanySize      int           `json:"company_size,omitempty"`
	LastContactDate  *time.Time    `json:"last_contact_date,omitempty"`
}

// EnrichmentData holds external signals gathered for a prospect's company
type EnrichmentData struct {
	CompanySize        int      `json:"company_size"`
	RecentNews         []string `json:"recent_news"`
	FundingStage       string   `json:"funding_stage"`
	TechStack          []string `json:"tech_stack"`
	EmployeeGrowthRate float64  `json:"employee_growth_rate,omitempty"` // percent
	RevenueEstimate    string   `json:"revenue_estimate,omitempty"`
}
