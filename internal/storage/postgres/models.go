package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spigell/bidscout/internal/procurement"
)

type organizationModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Document  []byte    `gorm:"column:document;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (organizationModel) TableName() string { return "organizations" }

type opportunityModel struct {
	ID               string     `gorm:"column:id;primaryKey"`
	Title            string     `gorm:"column:title"`
	Status           string     `gorm:"column:status"`
	ResponseDeadline *time.Time `gorm:"column:response_deadline"`
	Document         []byte     `gorm:"column:document;type:jsonb"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (opportunityModel) TableName() string { return "opportunities" }

type relevanceScoreModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	OrganizationID string    `gorm:"column:organization_id"`
	OpportunityID  string    `gorm:"column:opportunity_id"`
	OverallScore   float64   `gorm:"column:overall_score"`
	Tier           string    `gorm:"column:tier"`
	ModelVersion   string    `gorm:"column:model_version"`
	Document       []byte    `gorm:"column:document;type:jsonb"`
	ComputedAt     time.Time `gorm:"column:computed_at"`
}

func (relevanceScoreModel) TableName() string { return "relevance_scores" }

type riskAssessmentModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	OrganizationID string    `gorm:"column:organization_id"`
	OpportunityID  string    `gorm:"column:opportunity_id"`
	OverallScore   float64   `gorm:"column:overall_score"`
	OverallLevel   string    `gorm:"column:overall_level"`
	ModelVersion   string    `gorm:"column:model_version"`
	Document       []byte    `gorm:"column:document;type:jsonb"`
	AssessedAt     time.Time `gorm:"column:assessed_at"`
}

func (riskAssessmentModel) TableName() string { return "risk_assessments" }

func toOrganizationModel(org *procurement.Organization, now time.Time) (*organizationModel, error) {
	doc, err := json.Marshal(org)
	if err != nil {
		return nil, fmt.Errorf("encode organization: %w", err)
	}
	return &organizationModel{ID: org.ID, Name: org.Name, Document: doc, UpdatedAt: now}, nil
}

func toOpportunityModel(opp *procurement.Opportunity, now time.Time) (*opportunityModel, error) {
	doc, err := json.Marshal(opp)
	if err != nil {
		return nil, fmt.Errorf("encode opportunity: %w", err)
	}
	return &opportunityModel{
		ID:               opp.ID,
		Title:            opp.Title,
		Status:           string(opp.Status),
		ResponseDeadline: opp.ResponseDeadline,
		Document:         doc,
		UpdatedAt:        now,
	}, nil
}

func toRelevanceScoreModel(score *procurement.RelevanceScore) (*relevanceScoreModel, error) {
	doc, err := json.Marshal(score)
	if err != nil {
		return nil, fmt.Errorf("encode relevance score: %w", err)
	}
	return &relevanceScoreModel{
		ID:             score.ID,
		OrganizationID: score.OrganizationID,
		OpportunityID:  score.OpportunityID,
		OverallScore:   score.OverallScore,
		Tier:           string(score.Tier),
		ModelVersion:   score.ModelVersion,
		Document:       doc,
		ComputedAt:     score.ComputedAt,
	}, nil
}

func toRiskAssessmentModel(a *procurement.RiskAssessment) (*riskAssessmentModel, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode risk assessment: %w", err)
	}
	return &riskAssessmentModel{
		ID:             a.ID,
		OrganizationID: a.OrganizationID,
		OpportunityID:  a.OpportunityID,
		OverallScore:   a.OverallScore,
		OverallLevel:   string(a.OverallLevel),
		ModelVersion:   a.ModelVersion,
		Document:       doc,
		AssessedAt:     a.AssessedAt,
	}, nil
}

func decode[T any](doc []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decode %T: %w", out, err)
	}
	return &out, nil
}
