package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/outboundhq/dialer/internal/types"
)

// MemoryCRM is an in-memory CRM used by tests and the default server wiring
type MemoryCRM struct {
	mu         sync.RWMutex
	prospects  []types.Prospect
	data       map[string]types.CRMData // crmID -> signals
	activities []types.ActivityRecord
	stages     map[string]string // prospectID -> stage
}

// NewMemoryCRM creates an empty in-memory CRM
func NewMemoryCRM() *MemoryCRM {
	return &MemoryCRM{
		data:   make(map[string]types.CRMData),
		stages: make(map[string]string),
	}
}

// AddProspect registers a prospect and its CRM signals
func (c *MemoryCRM) AddProspect(p types.Prospect, data types.CRMData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prospects = append(c.prospects, p)
	c.data[p.CRMID] = data
}

func (c *MemoryCRM) QueryProspects(_ context.Context, filters types.ProspectFilters) ([]types.Prospect, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]types.Prospect, 0, len(c.prospects))
	for _, p := range c.prospects {
		if len(filters.Roles) > 0 && !contains(filters.Roles, p.Role) {
			continue
		}
		if len(filters.Industries) > 0 {
			data, ok := c.data[p.CRMID]
			if !ok || !contains(filters.Industries, data.Industry) {
				continue
			}
		}
		if len(filters.AccountStatus) > 0 {
			data, ok := c.data[p.CRMID]
			if !ok || !contains(filters.AccountStatus, string(data.AccountStatus)) {
				continue
			}
		}
		matches = append(matches, p)
	}
	return matches, nil
}

func (c *MemoryCRM) FetchProspectData(_ context.Context, crmID string) (types.CRMData, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.data[crmID]
	if !ok {
		return types.CRMData{}, fmt.Errorf("no CRM data for %s", crmID)
	}
	return data, nil
}

func (c *MemoryCRM) LogActivity(_ context.Context, record types.ActivityRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activities = append(c.activities, record)
	return nil
}

func (c *MemoryCRM) UpdateStage(_ context.Context, prospectID, stage string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages[prospectID] = stage
	return nil
}

// Activities returns a copy of all logged activity records
func (c *MemoryCRM) Activities() []types.ActivityRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.ActivityRecord, len(c.activities))
	copy(out, c.activities)
	return out
}

// Stage returns the recorded stage for a prospect
func (c *MemoryCRM) Stage(prospectID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stages[prospectID]
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// MemoryEnrichment serves canned enrichment data keyed by prospect id
type MemoryEnrichment struct {
	mu   sync.RWMutex
	data map[string]types.EnrichmentData
	fail map[string]bool
}

// NewMemoryEnrichment creates an empty in-memory enrichment provider
func NewMemoryEnrichment() *MemoryEnrichment {
	return &MemoryEnrichment{
		data: make(map[string]types.EnrichmentData),
		fail: make(map[string]bool),
	}
}

// Set registers enrichment data for a prospect
func (e *MemoryEnrichment) Set(prospectID string, data types.EnrichmentData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data[prospectID] = data
}

// FailFor makes enrichment fail for a specific prospect
func (e *MemoryEnrichment) FailFor(prospectID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail[prospectID] = true
}

func (e *MemoryEnrichment) Enrich(_ context.Context, prospect types.Prospect) (types.EnrichmentData, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.fail[prospect.ID] {
		return types.EnrichmentData{}, fmt.Errorf("enrichment unavailable for %s", prospect.ID)
	}
	if data, ok := e.data[prospect.ID]; ok {
		return data, nil
	}
	return types.EnrichmentData{CompanySize: 100, FundingStage: "Unknown"}, nil
}

// NoContext is a SemanticContext that always reports no history
type NoContext struct{}

func (NoContext) HistoricalContext(_ context.Context, _ string) (string, error) {
	return "", nil
}

// StaticContext serves pre-seeded historical context per prospect
type StaticContext struct {
	mu      sync.RWMutex
	history map[string]string
}

// NewStaticContext creates an empty StaticContext
func NewStaticContext() *StaticContext {
	return &StaticContext{history: make(map[string]string)}
}

// Set registers historical context for a prospect
func (s *StaticContext) Set(prospectID, context string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[prospectID] = context
}

func (s *StaticContext) HistoricalContext(_ context.Context, prospectID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history[prospectID], nil
}
