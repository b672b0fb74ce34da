package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/outboundhq/dialer/internal/scoring"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// researchConcurrency bounds the parallel research fan-out so one slow
// prospect never serializes the batch
const researchConcurrency = 10

// buildApproach derives the opening style from what the CRM and the role
// already tell us
func buildApproach(prospect types.Prospect, crm types.CRMData) types.ApproachStrategy {
	role := strings.ToLower(prospect.Role)
	if strings.Contains(role, "executive") || strings.Contains(role, "c-level") ||
		strings.Contains(role, "ceo") || strings.Contains(role, "cto") {
		return types.ApproachDirect
	}
	if crm.AccountStatus == types.AccountNew {
		return types.ApproachEducational
	}
	return types.ApproachConsultative
}

// buildTalkingPoints produces role- and industry-tailored openers
func buildTalkingPoints(prospect types.Prospect, crm types.CRMData, enrichment types.EnrichmentData) []string {
	points := []string{
		fmt.Sprintf("Challenges %ss face in %s", prospect.Role, crm.Industry),
		fmt.Sprintf("How companies of %d employees scale efficiently", enrichment.CompanySize),
		"Relevant case studies from similar companies",
	}
	if len(enrichment.RecentNews) > 0 {
		points = append(points, fmt.Sprintf("Recent development: %s", enrichment.RecentNews[0]))
	}
	if enrichment.FundingStage != "" {
		points = append(points, fmt.Sprintf("Priorities typical for %s stage companies", enrichment.FundingStage))
	}
	return points
}

// buildPainPoints guesses likely pain from company size and growth signals
func buildPainPoints(enrichment types.EnrichmentData) []string {
	var points []string
	switch {
	case enrichment.CompanySize < 50:
		points = append(points, "Manual processes taking too much time", "Wearing too many hats with a small team")
	case enrichment.CompanySize < 500:
		points = append(points, "Difficulty scaling operations", "Process gaps appearing as headcount grows")
	default:
		points = append(points, "Coordination overhead across departments", "Need for better data insights")
	}
	if enrichment.EmployeeGrowthRate > 20 {
		points = append(points, "Onboarding strain from rapid hiring")
	}
	return points
}

// buildObjectionStrategies is the fixed playbook for the common objections
func buildObjectionStrategies() map[string]string {
	return map[string]string{
		"not_interested":        "Acknowledge and ask if there's a better time, offer to send relevant case study",
		"too_busy":              "Respect their time, offer 15-min meeting at their convenience",
		"already_have_solution": "Ask what they like about current solution, find gaps",
	}
}

// researchProspect assembles the full pre-call dossier for one prospect.
// Enrichment or scoring failure fails only this prospect.
func (o *Orchestrator) researchProspect(ctx context.Context, prospect types.Prospect, now time.Time) (*types.ResearchContext, error) {
	crmData, err := o.crm.FetchProspectData(ctx, prospect.CRMID)
	if err != nil {
		return nil, fmt.Errorf("fetch crm data for %s: %w", prospect.ID, err)
	}

	enrichment, err := o.enrichment.Enrich(ctx, prospect)
	if err != nil {
		return nil, fmt.Errorf("enrich %s: %w", prospect.ID, err)
	}

	strategy := buildApproach(prospect, crmData)
	probability, err := scoring.Score(crmData, enrichment, strategy, now)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", prospect.ID, err)
	}

	return &types.ResearchContext{
		Prospect:            prospect,
		CRMData:             crmData,
		EnrichmentData:      enrichment,
		TalkingPoints:       buildTalkingPoints(prospect, crmData, enrichment),
		PainPoints:          buildPainPoints(enrichment),
		ApproachStrategy:    strategy,
		ObjectionStrategies: buildObjectionStrategies(),
		SuccessProbability:  probability,
	}, nil
}

// batchResearch runs the research phase over all prospects with bounded
// parallelism. Failed prospects are logged and dropped; load order is
// preserved for the survivors.
func batchResearch(ctx context.Context, o *Orchestrator, prospects []types.Prospect, now time.Time, logger zerolog.Logger) []*types.ResearchContext {
	results := make([]*types.ResearchContext, len(prospects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(researchConcurrency)

	for i, prospect := range prospects {
		i, prospect := i, prospect
		g.Go(func() error {
			research, err := o.researchProspect(gctx, prospect, now)
			if err != nil {
				logger.Warn().Err(err).
					Str("prospect_id", prospect.ID).
					Str("company", prospect.Company).
					Msg("research failed, dropping prospect")
				o.metrics.RecordEnrichmentFailure()
				return nil
			}
			results[i] = research
			o.metrics.RecordProspectScored()
			return nil
		})
	}
	_ = g.Wait()

	researched := make([]*types.ResearchContext, 0, len(results))
	for _, r := range results {
		if r != nil {
			researched = append(researched, r)
		}
	}
	return researched
}
