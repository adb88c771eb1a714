package relevance

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/weighted"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newScorer() *Scorer {
	return &Scorer{
		Now:   func() time.Time { return fixedNow },
		NewID: func() string { return "score-1" },
	}
}

func cloudOrg() *procurement.Organization {
	return &procurement.Organization{
		ID:                  "org-1",
		Name:                "Acme Federal",
		UEI:                 "ABCDEF123456",
		ClassificationCodes: []string{"541512"},
		SetAsides:           []procurement.SetAside{procurement.SetAsideSB},
		Location:            procurement.Location{City: "Reston", State: "VA"},
		EmployeeCount:       60,
		AnnualRevenue:       10_000_000,
		CoreCompetencies:    []string{"cloud infrastructure", "modernization", "computer systems design"},
		PastPerformanceSummary: "Delivered cloud infrastructure modernization and computer systems design " +
			"for civilian agencies under NAICS 541512.",
	}
}

func cloudOpp() *procurement.Opportunity {
	deadline := fixedNow.AddDate(0, 0, 30)
	return &procurement.Opportunity{
		ID:                        "opp-1",
		Title:                     "Cloud Infrastructure Modernization",
		ClassificationCode:        "541512",
		ClassificationDescription: "Computer Systems Design Services",
		SetAside:                  procurement.SetAsideSB,
		PlaceOfPerformance:        procurement.Location{State: "VA"},
		ValueMin:                  500_000,
		ValueMax:                  2_000_000,
		ResponseDeadline:          &deadline,
		Status:                    procurement.StatusActive,
	}
}

func TestScoreStrongMatch(t *testing.T) {
	t.Parallel()

	score, err := newScorer().Score(cloudOrg(), cloudOpp(), Input{})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, score.OverallScore, 0.85)
	assert.Equal(t, procurement.TierExcellent, score.Tier)
	assert.Nil(t, score.Components.Semantic)
	require.NotNil(t, score.Components.Taxonomy)
	assert.Equal(t, 1.0, *score.Components.Taxonomy)
	assert.Equal(t, "org-1", score.OrganizationID)
	assert.Equal(t, "opp-1", score.OpportunityID)
	assert.Equal(t, procurement.ModelVersion, score.ModelVersion)
	assert.Equal(t, fixedNow, score.ComputedAt)
	assert.Contains(t, score.Explanation, "Unavailable: semantic.")
	assert.True(t, strings.HasPrefix(score.Explanation, "excellent match"))
}

func TestScoreValidation(t *testing.T) {
	t.Parallel()

	org := cloudOrg()
	org.ID = " "
	_, err := newScorer().Score(org, cloudOpp(), Input{})

	var verr *procurement.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "organization.id", verr.Field)

	opp := cloudOpp()
	opp.ID = ""
	_, err = newScorer().Score(cloudOrg(), opp, Input{})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "opportunity.id", verr.Field)

	_, err = newScorer().Score(nil, cloudOpp(), Input{})
	require.Error(t, err)
}

func TestScoreNothingAvailable(t *testing.T) {
	t.Parallel()

	score, err := newScorer().Score(&procurement.Organization{ID: "a"}, &procurement.Opportunity{ID: "b"}, Input{})
	require.NoError(t, err)

	// past performance is still present (0 for an empty summary)
	assert.Zero(t, score.OverallScore)
	assert.Equal(t, procurement.TierPoor, score.Tier)
	assert.Contains(t, score.Explanation, "Unavailable: taxonomy, semantic, geographic, size.")
}

func TestScoreWeightOverrides(t *testing.T) {
	t.Parallel()

	opp := cloudOpp()
	opp.PlaceOfPerformance.State = "CA"

	only := map[string]float64{
		procurement.ComponentTaxonomy:        1,
		procurement.ComponentGeographic:      0,
		procurement.ComponentSize:            0,
		procurement.ComponentPastPerformance: 0,
		"bogus":                              5,
	}
	score, err := newScorer().Score(cloudOrg(), opp, Input{Weights: only})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, score.OverallScore, 1e-9)
	assert.NotContains(t, score.Weights, "bogus")
	assert.Equal(t, 0.30, score.Weights[procurement.ComponentSemantic])
}

func TestScoreSemanticInput(t *testing.T) {
	t.Parallel()

	low := -0.4
	score, err := newScorer().Score(cloudOrg(), cloudOpp(), Input{Semantic: &low})
	require.NoError(t, err)
	require.NotNil(t, score.Components.Semantic)
	assert.Zero(t, *score.Components.Semantic)
	assert.Less(t, score.OverallScore, 0.85)

	nan := math.NaN()
	score, err = newScorer().Score(cloudOrg(), cloudOpp(), Input{Semantic: &nan})
	require.NoError(t, err)
	assert.Nil(t, score.Components.Semantic)
}

func TestTaxonomy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		org  []string
		opp  string
		want *float64
	}{
		{name: "exact", org: []string{"541512"}, opp: "541512", want: weighted.Ptr(1)},
		{name: "industry prefix", org: []string{"541519"}, opp: "541512", want: weighted.Ptr(5.0 / 6)},
		{name: "sector only", org: []string{"549999"}, opp: "541512", want: weighted.Ptr(2.0 / 6)},
		{name: "best of many", org: []string{"236220", "541611"}, opp: "541512", want: weighted.Ptr(3.0 / 6)},
		{name: "coarse opportunity sector", org: []string{"541512"}, opp: "54", want: weighted.Ptr(2.0 / 6)},
		{name: "coarse opportunity industry group", org: []string{"541512"}, opp: "5415", want: weighted.Ptr(4.0 / 6)},
		{name: "coarse opportunity industry", org: []string{"541512"}, opp: "54151", want: weighted.Ptr(5.0 / 6)},
		{name: "coarse organization code", org: []string{"5415"}, opp: "541512", want: weighted.Ptr(4.0 / 6)},
		{name: "coarse codes on both sides", org: []string{"5415"}, opp: "5415", want: weighted.Ptr(1)},
		{name: "single digit is no relation", org: []string{"500000"}, opp: "541512", want: weighted.Ptr(0)},
		{name: "non numeric opportunity", org: []string{"541512"}, opp: "R425", want: weighted.Ptr(0)},
		{name: "non numeric org code", org: []string{"D302"}, opp: "541512", want: weighted.Ptr(0)},
		{name: "missing org codes", org: []string{" "}, opp: "541512", want: nil},
		{name: "missing opportunity code", org: []string{"541512"}, opp: "", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Taxonomy(tc.org, tc.opp)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestGeographic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		home, place string
		want        *float64
	}{
		{home: "VA", place: "va", want: weighted.Ptr(1)},
		{home: "Virginia", place: "VA", want: weighted.Ptr(1)},
		{home: "VA", place: "MD", want: weighted.Ptr(0.5)},
		{home: "VA", place: "Nationwide", want: weighted.Ptr(0.5)},
		{home: "VA", place: "multiple", want: weighted.Ptr(0.5)},
		{home: "VA", place: "CA", want: weighted.Ptr(0)},
		{home: "", place: "CA", want: nil},
		{home: "VA", place: "", want: nil},
	}

	for _, tc := range cases {
		org := &procurement.Organization{Location: procurement.Location{State: tc.home}}
		opp := &procurement.Opportunity{PlaceOfPerformance: procurement.Location{State: tc.place}}
		got := Geographic(org, opp)
		if tc.want == nil {
			assert.Nil(t, got, "%s/%s", tc.home, tc.place)
			continue
		}
		require.NotNil(t, got)
		assert.Equal(t, *tc.want, *got, "%s/%s", tc.home, tc.place)
	}
}

func TestSizeDecreasesWithContractValue(t *testing.T) {
	t.Parallel()

	org := &procurement.Organization{EmployeeCount: 12, AnnualRevenue: 3_000_000}
	prev := 2.0
	for _, value := range []float64{100_000, 1_000_000, 5_000_000, 20_000_000, 100_000_000} {
		got := Size(org, &procurement.Opportunity{ValueMax: value})
		require.NotNil(t, got)
		assert.LessOrEqual(t, *got, prev, "value %.0f", value)
		prev = *got
	}
	assert.Less(t, prev, 0.1)
}

func TestSizeEdges(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Size(&procurement.Organization{EmployeeCount: 10}, &procurement.Opportunity{}))
	assert.Nil(t, Size(&procurement.Organization{}, &procurement.Opportunity{ValueMax: 1000}))

	tiny := Size(&procurement.Organization{AnnualRevenue: 100_000_000}, &procurement.Opportunity{ValueMax: 50_000})
	require.NotNil(t, tiny)
	assert.Equal(t, 0.9, *tiny)
}

func TestPastPerformance(t *testing.T) {
	t.Parallel()

	opp := cloudOpp()

	got := PastPerformance(cloudOrg(), opp)
	require.NotNil(t, got)
	assert.Equal(t, 1.0, *got)

	empty := PastPerformance(&procurement.Organization{}, opp)
	require.NotNil(t, empty)
	assert.Zero(t, *empty)

	partial := PastPerformance(&procurement.Organization{PastPerformanceSummary: "Cloud hosting for a state agency"}, opp)
	require.NotNil(t, partial)
	assert.InDelta(t, 1.0/7, *partial, 1e-9)
}

func TestScoreRoundTrip(t *testing.T) {
	t.Parallel()

	score, err := newScorer().Score(cloudOrg(), cloudOpp(), Input{})
	require.NoError(t, err)

	data, err := json.Marshal(score)
	require.NoError(t, err)

	var decoded procurement.RelevanceScore
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, *score, decoded)
	assert.Equal(t, score.Tier, procurement.TierFor(decoded.OverallScore))
}
