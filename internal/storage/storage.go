// Package storage persists profiles, notices and computed records. Computed
// records are keyed by (organization id, opportunity id): saving a record for
// a pair replaces the previous one.
package storage

import (
	"context"
	"errors"

	"github.com/spigell/bidscout/internal/procurement"
)

var ErrNotFound = errors.New("not found")

// ScoreFilter narrows ListRelevanceScores. Zero values disable a bound.
type ScoreFilter struct {
	MinScore float64
	Limit    int
}

type Store interface {
	SaveOrganization(ctx context.Context, org *procurement.Organization) error
	GetOrganization(ctx context.Context, id string) (*procurement.Organization, error)

	SaveOpportunity(ctx context.Context, opp *procurement.Opportunity) error
	GetOpportunity(ctx context.Context, id string) (*procurement.Opportunity, error)
	ListOpportunities(ctx context.Context) ([]*procurement.Opportunity, error)

	SaveRelevanceScore(ctx context.Context, score *procurement.RelevanceScore) error
	GetRelevanceScore(ctx context.Context, id string) (*procurement.RelevanceScore, error)
	ListRelevanceScores(ctx context.Context, organizationID string, filter ScoreFilter) ([]*procurement.RelevanceScore, error)

	SaveRiskAssessment(ctx context.Context, assessment *procurement.RiskAssessment) error
	GetRiskAssessment(ctx context.Context, id string) (*procurement.RiskAssessment, error)
	ListRiskAssessments(ctx context.Context, organizationID string) ([]*procurement.RiskAssessment, error)

	Ping(ctx context.Context) error
}
