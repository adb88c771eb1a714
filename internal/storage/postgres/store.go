// Package postgres is the PostgreSQL Store. Records are kept as JSONB
// documents next to the columns used for lookups and ordering.
package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/storage"
)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

var _ storage.Store = (*Store)(nil)

var pairColumns = []clause.Column{{Name: "organization_id"}, {Name: "opportunity_id"}}

func (s *Store) SaveOrganization(ctx context.Context, org *procurement.Organization) error {
	if err := org.Validate(); err != nil {
		return err
	}
	rec, err := toOrganizationModel(org, s.now().UTC())
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "document", "updated_at"}),
	}).Create(rec).Error
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*procurement.Organization, error) {
	var rec organizationModel
	if err := s.take(ctx, &rec, "id = ?", id); err != nil {
		return nil, err
	}
	return decode[procurement.Organization](rec.Document)
}

func (s *Store) SaveOpportunity(ctx context.Context, opp *procurement.Opportunity) error {
	if err := opp.Validate(); err != nil {
		return err
	}
	rec, err := toOpportunityModel(opp, s.now().UTC())
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "status", "response_deadline", "document", "updated_at"}),
	}).Create(rec).Error
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*procurement.Opportunity, error) {
	var rec opportunityModel
	if err := s.take(ctx, &rec, "id = ?", id); err != nil {
		return nil, err
	}
	return decode[procurement.Opportunity](rec.Document)
}

func (s *Store) ListOpportunities(ctx context.Context) ([]*procurement.Opportunity, error) {
	var recs []opportunityModel
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*procurement.Opportunity, 0, len(recs))
	for _, rec := range recs {
		opp, err := decode[procurement.Opportunity](rec.Document)
		if err != nil {
			return nil, err
		}
		out = append(out, opp)
	}
	return out, nil
}

// SaveRelevanceScore replaces any earlier score for the same pair.
func (s *Store) SaveRelevanceScore(ctx context.Context, score *procurement.RelevanceScore) error {
	rec, err := toRelevanceScoreModel(score)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   pairColumns,
		DoUpdates: clause.AssignmentColumns([]string{"id", "overall_score", "tier", "model_version", "document", "computed_at"}),
	}).Create(rec).Error
}

func (s *Store) GetRelevanceScore(ctx context.Context, id string) (*procurement.RelevanceScore, error) {
	var rec relevanceScoreModel
	if err := s.take(ctx, &rec, "id = ?", id); err != nil {
		return nil, err
	}
	return decode[procurement.RelevanceScore](rec.Document)
}

func (s *Store) ListRelevanceScores(ctx context.Context, organizationID string, filter storage.ScoreFilter) ([]*procurement.RelevanceScore, error) {
	q := s.db.WithContext(ctx).
		Where("organization_id = ? AND overall_score >= ?", organizationID, filter.MinScore).
		Order("overall_score DESC, opportunity_id")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var recs []relevanceScoreModel
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*procurement.RelevanceScore, 0, len(recs))
	for _, rec := range recs {
		score, err := decode[procurement.RelevanceScore](rec.Document)
		if err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, nil
}

// SaveRiskAssessment replaces any earlier assessment for the same pair.
func (s *Store) SaveRiskAssessment(ctx context.Context, assessment *procurement.RiskAssessment) error {
	rec, err := toRiskAssessmentModel(assessment)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   pairColumns,
		DoUpdates: clause.AssignmentColumns([]string{"id", "overall_score", "overall_level", "model_version", "document", "assessed_at"}),
	}).Create(rec).Error
}

func (s *Store) GetRiskAssessment(ctx context.Context, id string) (*procurement.RiskAssessment, error) {
	var rec riskAssessmentModel
	if err := s.take(ctx, &rec, "id = ?", id); err != nil {
		return nil, err
	}
	return decode[procurement.RiskAssessment](rec.Document)
}

func (s *Store) ListRiskAssessments(ctx context.Context, organizationID string) ([]*procurement.RiskAssessment, error) {
	var recs []riskAssessmentModel
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("overall_score DESC, opportunity_id").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*procurement.RiskAssessment, 0, len(recs))
	for _, rec := range recs {
		a, err := decode[procurement.RiskAssessment](rec.Document)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) take(ctx context.Context, dest any, query string, args ...any) error {
	err := s.db.WithContext(ctx).Where(query, args...).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
