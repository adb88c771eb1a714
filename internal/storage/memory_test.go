package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/bidscout/internal/procurement"
)

func TestMemoryUpsertReplacesPair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	first := &procurement.RelevanceScore{ID: "s1", OrganizationID: "org", OpportunityID: "opp", OverallScore: 0.4}
	second := &procurement.RelevanceScore{ID: "s2", OrganizationID: "org", OpportunityID: "opp", OverallScore: 0.9}
	require.NoError(t, store.SaveRelevanceScore(ctx, first))
	require.NoError(t, store.SaveRelevanceScore(ctx, second))

	_, err := store.GetRelevanceScore(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := store.GetRelevanceScore(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.OverallScore)

	list, err := store.ListRelevanceScores(ctx, "org", ScoreFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryListRelevanceScores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	for _, s := range []*procurement.RelevanceScore{
		{ID: "a", OrganizationID: "org", OpportunityID: "o1", OverallScore: 0.3},
		{ID: "b", OrganizationID: "org", OpportunityID: "o2", OverallScore: 0.8},
		{ID: "c", OrganizationID: "org", OpportunityID: "o3", OverallScore: 0.6},
		{ID: "d", OrganizationID: "other", OpportunityID: "o1", OverallScore: 1},
	} {
		require.NoError(t, store.SaveRelevanceScore(ctx, s))
	}

	list, err := store.ListRelevanceScores(ctx, "org", ScoreFilter{MinScore: 0.5})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "c", list[1].ID)

	list, err = store.ListRelevanceScores(ctx, "org", ScoreFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestMemoryRiskAssessments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.SaveRiskAssessment(ctx, &procurement.RiskAssessment{ID: "r1", OrganizationID: "org", OpportunityID: "o1", OverallScore: 0.2}))
	require.NoError(t, store.SaveRiskAssessment(ctx, &procurement.RiskAssessment{ID: "r2", OrganizationID: "org", OpportunityID: "o2", OverallScore: 0.7}))
	require.NoError(t, store.SaveRiskAssessment(ctx, &procurement.RiskAssessment{ID: "r3", OrganizationID: "org", OpportunityID: "o1", OverallScore: 0.1}))

	_, err := store.GetRiskAssessment(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.ListRiskAssessments(ctx, "org")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Equal(t, "r3", list[1].ID)
}

func TestMemoryProfiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	err := store.SaveOrganization(ctx, &procurement.Organization{})
	var verr *procurement.ValidationError
	require.True(t, errors.As(err, &verr))

	require.NoError(t, store.SaveOrganization(ctx, &procurement.Organization{ID: "org", Name: "Acme"}))
	org, err := store.GetOrganization(ctx, "org")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)

	_, err = store.GetOpportunity(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveOpportunity(ctx, &procurement.Opportunity{ID: "b"}))
	require.NoError(t, store.SaveOpportunity(ctx, &procurement.Opportunity{ID: "a"}))
	opps, err := store.ListOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, "a", opps[0].ID)
}
