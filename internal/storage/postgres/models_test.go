package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/bidscout/internal/procurement"
)

func TestRelevanceScoreDocument(t *testing.T) {
	t.Parallel()

	taxonomy := 0.5
	score := &procurement.RelevanceScore{
		ID:             "s1",
		OrganizationID: "org",
		OpportunityID:  "opp",
		OverallScore:   0.61,
		Tier:           procurement.TierGood,
		Components:     procurement.RelevanceComponents{Taxonomy: &taxonomy},
		Weights:        map[string]float64{"taxonomy": 1},
		ComputedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ModelVersion:   procurement.ModelVersion,
	}

	rec, err := toRelevanceScoreModel(score)
	require.NoError(t, err)
	assert.Equal(t, "good", rec.Tier)
	assert.Equal(t, "org", rec.OrganizationID)

	decoded, err := decode[procurement.RelevanceScore](rec.Document)
	require.NoError(t, err)
	assert.Equal(t, score, decoded)
}

func TestOpportunityModelColumns(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	rec, err := toOpportunityModel(&procurement.Opportunity{ID: "o", Title: "T", Status: procurement.StatusActive, ResponseDeadline: &deadline}, now)
	require.NoError(t, err)

	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, &deadline, rec.ResponseDeadline)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	t.Parallel()

	names, err := Migrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, names)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := decode[procurement.RiskAssessment]([]byte("{"))
	assert.Error(t, err)
}
