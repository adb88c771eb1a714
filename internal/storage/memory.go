package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/spigell/bidscout/internal/procurement"
)

type pairKey struct {
	organizationID string
	opportunityID  string
}

// Memory is an in-process Store used by the CLI, tests and serve without a database.
type Memory struct {
	mu sync.RWMutex

	organizations map[string]*procurement.Organization
	opportunities map[string]*procurement.Opportunity

	scores      map[pairKey]*procurement.RelevanceScore
	scoreIDs    map[string]pairKey
	assessments map[pairKey]*procurement.RiskAssessment
	riskIDs     map[string]pairKey
}

func NewMemory() *Memory {
	return &Memory{
		organizations: make(map[string]*procurement.Organization),
		opportunities: make(map[string]*procurement.Opportunity),
		scores:        make(map[pairKey]*procurement.RelevanceScore),
		scoreIDs:      make(map[string]pairKey),
		assessments:   make(map[pairKey]*procurement.RiskAssessment),
		riskIDs:       make(map[string]pairKey),
	}
}

func (m *Memory) SaveOrganization(_ context.Context, org *procurement.Organization) error {
	if err := org.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organizations[org.ID] = org
	return nil
}

func (m *Memory) GetOrganization(_ context.Context, id string) (*procurement.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.organizations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return org, nil
}

func (m *Memory) SaveOpportunity(_ context.Context, opp *procurement.Opportunity) error {
	if err := opp.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opportunities[opp.ID] = opp
	return nil
}

func (m *Memory) GetOpportunity(_ context.Context, id string) (*procurement.Opportunity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	opp, ok := m.opportunities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return opp, nil
}

func (m *Memory) ListOpportunities(_ context.Context) ([]*procurement.Opportunity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*procurement.Opportunity, 0, len(m.opportunities))
	for _, opp := range m.opportunities {
		out = append(out, opp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveRelevanceScore(_ context.Context, score *procurement.RelevanceScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{score.OrganizationID, score.OpportunityID}
	if prev, ok := m.scores[key]; ok {
		delete(m.scoreIDs, prev.ID)
	}
	m.scores[key] = score
	m.scoreIDs[score.ID] = key
	return nil
}

func (m *Memory) GetRelevanceScore(_ context.Context, id string) (*procurement.RelevanceScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.scoreIDs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.scores[key], nil
}

// ListRelevanceScores returns the organization scores, highest first.
func (m *Memory) ListRelevanceScores(_ context.Context, organizationID string, filter ScoreFilter) ([]*procurement.RelevanceScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*procurement.RelevanceScore
	for key, score := range m.scores {
		if key.organizationID != organizationID || score.OverallScore < filter.MinScore {
			continue
		}
		out = append(out, score)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverallScore != out[j].OverallScore {
			return out[i].OverallScore > out[j].OverallScore
		}
		return out[i].OpportunityID < out[j].OpportunityID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) SaveRiskAssessment(_ context.Context, assessment *procurement.RiskAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{assessment.OrganizationID, assessment.OpportunityID}
	if prev, ok := m.assessments[key]; ok {
		delete(m.riskIDs, prev.ID)
	}
	m.assessments[key] = assessment
	m.riskIDs[assessment.ID] = key
	return nil
}

func (m *Memory) GetRiskAssessment(_ context.Context, id string) (*procurement.RiskAssessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.riskIDs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.assessments[key], nil
}

// ListRiskAssessments returns the organization assessments, riskiest first.
func (m *Memory) ListRiskAssessments(_ context.Context, organizationID string) ([]*procurement.RiskAssessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*procurement.RiskAssessment
	for key, assessment := range m.assessments {
		if key.organizationID == organizationID {
			out = append(out, assessment)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverallScore != out[j].OverallScore {
			return out[i].OverallScore > out[j].OverallScore
		}
		return out[i].OpportunityID < out[j].OpportunityID
	})
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
