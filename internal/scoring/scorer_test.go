package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/outboundhq/dialer/internal/types"
)

func TestScoreBaseline(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	score, err := Score(types.CRMData{AccountStatus: types.AccountNew}, types.EnrichmentData{}, types.ApproachDirect, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 50 {
		t.Errorf("expected baseline 50, got %d", score)
	}
}

func TestScoreAccountStatus(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		status types.AccountStatus
		want   int
	}{
		{types.AccountQualified, 70},
		{types.AccountContacted, 60},
		{types.AccountUnqualified, 20},
		{types.AccountNew, 50},
	}

	for _, tt := range tests {
		score, err := Score(types.CRMData{AccountStatus: tt.status}, types.EnrichmentData{}, types.ApproachDirect, now)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.status, err)
		}
		if score != tt.want {
			t.Errorf("status %s: expected %d, got %d", tt.status, tt.want, score)
		}
	}
}

func TestScorePositiveInteractions(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	old := now.Add(-60 * 24 * time.Hour)

	crm := types.CRMData{
		AccountStatus: types.AccountNew,
		PastInteractions: []types.Interaction{
			{Date: old, Sentiment: 0.7},
			{Date: old, Sentiment: 0.6},
			{Date: old, Sentiment: 0.3}, // not positive
		},
	}

	score, err := Score(crm, types.EnrichmentData{}, types.ApproachDirect, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 50 + 2*5 for the two positive interactions, no recency bonus
	if score != 60 {
		t.Errorf("expected 60, got %d", score)
	}
}

func TestScoreRecentStrongInteraction(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	crm := types.CRMData{
		AccountStatus: types.AccountNew,
		PastInteractions: []types.Interaction{
			{Date: now.Add(-7 * 24 * time.Hour), Sentiment: 0.8},
		},
	}

	score, err := Score(crm, types.EnrichmentData{}, types.ApproachDirect, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 50 + 5 (positive) + 15 (recent strong)
	if score != 70 {
		t.Errorf("expected 70, got %d", score)
	}
}

func TestScoreCompanySignals(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	enrichment := types.EnrichmentData{
		FundingStage:       "Series B",
		EmployeeGrowthRate: 35,
	}

	score, err := Score(types.CRMData{AccountStatus: types.AccountNew}, enrichment, types.ApproachDirect, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 50 + 10 (funding) + 10 (growth)
	if score != 70 {
		t.Errorf("expected 70, got %d", score)
	}
}

func TestScoreStrategyAlignment(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	crm := types.CRMData{AccountStatus: types.AccountContacted}

	aligned, err := Score(crm, types.EnrichmentData{}, types.ApproachConsultative, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	direct, err := Score(crm, types.EnrichmentData{}, types.ApproachDirect, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aligned-direct != 5 {
		t.Errorf("expected +5 alignment bonus, got %d vs %d", aligned, direct)
	}
}

func TestScoreClampedToRange(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	// Pile every bonus on top of qualified status plus many positive interactions
	interactions := make([]types.Interaction, 12)
	for i := range interactions {
		interactions[i] = types.Interaction{Date: now.Add(-2 * 24 * time.Hour), Sentiment: 0.9}
	}
	high := types.CRMData{
		AccountStatus:    types.AccountQualified,
		PastInteractions: interactions,
		DealValue:        100000,
	}
	enrichment := types.EnrichmentData{FundingStage: "Growth", EmployeeGrowthRate: 50}

	score, err := Score(high, enrichment, types.ApproachConsultative, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 100 {
		t.Errorf("expected clamp to 100, got %d", score)
	}

	// Unqualified with nothing else should still stay at the floor
	low := types.CRMData{AccountStatus: types.AccountUnqualified}
	score, err = Score(low, types.EnrichmentData{}, types.ApproachDirect, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score < 0 || score > 100 {
		t.Errorf("score %d outside [0,100]", score)
	}
}

func TestScoreInvalidInput(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	_, err := Score(types.CRMData{DealValue: -1}, types.EnrichmentData{}, types.ApproachDirect, now)
	var scoreErr *types.ScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("expected ScoringError, got %v", err)
	}

	crm := types.CRMData{
		PastInteractions: []types.Interaction{{Date: now, Sentiment: 1.5}},
	}
	_, err = Score(crm, types.EnrichmentData{}, types.ApproachDirect, now)
	if !errors.As(err, &scoreErr) {
		t.Fatalf("expected ScoringError for bad sentiment, got %v", err)
	}
}
