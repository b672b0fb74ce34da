// Package scoring computes success-probability scores for prospects from
// CRM and enrichment signals. Scoring is a pure function of its inputs so
// campaign runs are reproducible.
package scoring

import (
	"strings"
	"time"

	"github.com/outboundhq/dialer/internal/types"
)

const (
	baseScore = 50

	recentInteractionWindow = 30 * 24 * time.Hour

	positiveSentimentFloor = 0.5
	strongSentimentFloor   = 0.6

	highGrowthRate = 20.0
	highDealValue  = 50000.0
)

// Score computes a 0-100 success probability for a prospect.
// now anchors the recency window for past interactions.
func Score(crm types.CRMData, enrichment types.EnrichmentData, strategy types.ApproachStrategy, now time.Time) (int, error) {
	if crm.DealValue < 0 {
		return 0, &types.ScoringError{Field: "deal_value", Reason: "must not be negative"}
	}
	for _, i := range crm.PastInteractions {
		if i.Sentiment < 0 || i.Sentiment > 1 {
			return 0, &types.ScoringError{Field: "sentiment", Reason: "must be within [0,1]"}
		}
	}

	score := baseScore

	// Account status factor
	switch crm.AccountStatus {
	case types.AccountQualified:
		score += 20
	case types.AccountContacted:
		score += 10
	case types.AccountUnqualified:
		score -= 30
	}

	// Past interactions factor
	for _, i := range crm.PastInteractions {
		if i.Sentiment > positiveSentimentFloor {
			score += 5
		}
	}
	for _, i := range crm.PastInteractions {
		if now.Sub(i.Date) < recentInteractionWindow {
			if i.Sentiment > strongSentimentFloor {
				score += 15
			}
			break
		}
	}

	// Company signals factor
	if strings.Contains(enrichment.FundingStage, "Series") || strings.Contains(enrichment.FundingStage, "Growth") {
		score += 10
	}
	if enrichment.EmployeeGrowthRate > highGrowthRate {
		score += 10
	}

	// Deal value factor
	if crm.DealValue > highDealValue {
		score += 10
	}

	// Approach strategy alignment
	if strategy == types.ApproachConsultative && crm.AccountStatus == types.AccountContacted {
		score += 5
	}

	return clamp(score), nil
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
