package risk

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/bidscout/internal/procurement"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newAssessor() *Assessor {
	return &Assessor{
		Now:   func() time.Time { return fixedNow },
		NewID: func() string { return "risk-1" },
	}
}

func in(days int) *time.Time {
	t := fixedNow.AddDate(0, 0, days)
	return &t
}

func cloudOrg() *procurement.Organization {
	return &procurement.Organization{
		ID:                  "org-1",
		UEI:                 "ABCDEF123456",
		ClassificationCodes: []string{"541512"},
		SetAsides:           []procurement.SetAside{procurement.SetAsideSB},
		Location:            procurement.Location{State: "VA"},
		EmployeeCount:       60,
		AnnualRevenue:       10_000_000,
		CoreCompetencies:    []string{"cloud infrastructure", "modernization", "computer systems design"},
	}
}

func cloudOpp() *procurement.Opportunity {
	return &procurement.Opportunity{
		ID:                        "opp-1",
		Title:                     "Cloud Infrastructure Modernization",
		ClassificationCode:        "541512",
		ClassificationDescription: "Computer Systems Design Services",
		SetAside:                  procurement.SetAsideSB,
		PlaceOfPerformance:        procurement.Location{State: "VA"},
		ValueMin:                  500_000,
		ValueMax:                  2_000_000,
		ContractType:              "FFP",
		ContractingOffice:         procurement.ContractingOffice{AgencyName: "General Services Administration"},
		ResponseDeadline:          in(30),
	}
}

func builderOrg() *procurement.Organization {
	return &procurement.Organization{
		ID:                  "org-2",
		UEI:                 "ZZZ999",
		ClassificationCodes: []string{"236220"},
		SetAsides:           []procurement.SetAside{procurement.SetAsideWOSB},
		Location:            procurement.Location{State: "CA"},
		EmployeeCount:       10,
		AnnualRevenue:       2_000_000,
		CoreCompetencies:    []string{"commercial construction", "renovation"},
	}
}

func defenseOpp() *procurement.Opportunity {
	return &procurement.Opportunity{
		ID:                        "opp-2",
		Title:                     "Enterprise Network Modernization",
		ClassificationCode:        "541512",
		ClassificationDescription: "Computer Systems Design Services",
		SetAside:                  procurement.SetAside8A,
		PlaceOfPerformance:        procurement.Location{State: "VA"},
		ValueMax:                  50_000_000,
		PeriodOfPerformanceMonths: 12,
		ContractingOffice:         procurement.ContractingOffice{AgencyName: "Department of Defense"},
		ResponseDeadline:          in(5),
		RequiredCertifications:    []string{"CMMC Level 2"},
		RequiredClearance:         "Top Secret",
	}
}

func TestAssessLowRisk(t *testing.T) {
	t.Parallel()

	got, err := newAssessor().Assess(cloudOrg(), cloudOpp(), Input{})
	require.NoError(t, err)

	assert.LessOrEqual(t, got.OverallScore, 0.35)
	assert.Equal(t, procurement.RiskLow, got.OverallLevel)
	assert.Len(t, got.Categories.All(), 6)
	assert.Zero(t, got.Categories.Eligibility.Score)
	assert.Zero(t, got.Categories.Technical.Score)
	assert.Zero(t, got.Categories.Pricing.Score)
	assert.Zero(t, got.Categories.Resource.Score)
	assert.Zero(t, got.Categories.Compliance.Score)
	assert.InDelta(t, 22.0/30/2, got.Categories.Timeline.Score, 1e-9)
	assert.Empty(t, got.MitigationSuggestions)
	assert.Equal(t, fixedNow, got.AssessedAt)
	assert.Equal(t, "risk-1", got.ID)
}

func TestAssessCriticalRisk(t *testing.T) {
	t.Parallel()

	got, err := newAssessor().Assess(builderOrg(), defenseOpp(), Input{})
	require.NoError(t, err)

	assert.Greater(t, got.OverallScore, 0.70)
	assert.Equal(t, procurement.RiskCritical, got.OverallLevel)
	assert.Equal(t, 1.0, got.Categories.Eligibility.Score)
	assert.InDelta(t, 0.9, got.Categories.Technical.Score, 1e-9)
	assert.Equal(t, 1.0, got.Categories.Pricing.Score)
	assert.Equal(t, 1.0, got.Categories.Resource.Score)
	assert.InDelta(t, 0.8, got.Categories.Compliance.Score, 1e-9)
	assert.Equal(t, 1.0, got.Categories.Timeline.Score)

	assert.Contains(t, got.RiskFactors, "organization does not qualify for the 8A set-aside")
	assert.Contains(t, got.RiskFactors, "defense contracting office applies DFARS clauses")
	assert.Len(t, got.MitigationSuggestions, maxMitigations)
}

func TestAssessUnavailableCategoriesAreRenormalized(t *testing.T) {
	t.Parallel()

	org := &procurement.Organization{ID: "o", UEI: "X"}
	opp := &procurement.Opportunity{ID: "p", SetAside: procurement.SetAsideSDVOSB}

	got, err := newAssessor().Assess(org, opp, Input{})
	require.NoError(t, err)

	assert.Nil(t, got.Categories.Technical)
	assert.Nil(t, got.Categories.Pricing)
	assert.Nil(t, got.Categories.Resource)
	assert.Nil(t, got.Categories.Timeline)
	// eligibility 0.8 at weight .25, compliance 0 at weight .15
	assert.InDelta(t, 0.8*0.25/0.40, got.OverallScore, 1e-9)
}

func TestAssessValidation(t *testing.T) {
	t.Parallel()

	_, err := newAssessor().Assess(cloudOrg(), &procurement.Opportunity{}, Input{})
	var verr *procurement.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "opportunity.id", verr.Field)
}

func TestAssessWeightOverride(t *testing.T) {
	t.Parallel()

	weights := map[string]float64{
		procurement.CategoryEligibility: 0,
		procurement.CategoryTechnical:   0,
		procurement.CategoryPricing:     0,
		procurement.CategoryResource:    0,
		procurement.CategoryCompliance:  0,
	}
	got, err := newAssessor().Assess(cloudOrg(), cloudOpp(), Input{Weights: weights})
	require.NoError(t, err)
	assert.InDelta(t, got.Categories.Timeline.Score, got.OverallScore, 1e-9)
}

func TestTimeline(t *testing.T) {
	t.Parallel()

	opp := cloudOpp()
	opp.ResponseDeadline = in(-1)
	passed := Timeline(opp, fixedNow)
	require.NotNil(t, passed)
	assert.Equal(t, 1.0, passed.Score)
	assert.Equal(t, procurement.RiskCritical, passed.Level)

	opp.ResponseDeadline = &fixedNow
	assert.Equal(t, 1.0, Timeline(opp, fixedNow).Score)

	opp.ResponseDeadline = nil
	assert.Nil(t, Timeline(opp, fixedNow))

	prev := 2.0
	for _, days := range []int{2, 7, 14, 30, 60, 120} {
		opp.ResponseDeadline = in(days)
		got := Timeline(opp, fixedNow).Score
		assert.LessOrEqual(t, got, prev, "%d days", days)
		prev = got
	}
}

func TestComplianceExpiredCertification(t *testing.T) {
	t.Parallel()

	expired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	org := cloudOrg()
	org.Certifications = []procurement.Certification{{Name: "cmmc level 2", ExpiresAt: &expired}}
	opp := cloudOpp()
	opp.RequiredCertifications = []string{"CMMC Level 2"}

	got := Compliance(org, opp, fixedNow)
	assert.Equal(t, 0.25, got.Score)
	assert.Equal(t, []string{"certification CMMC Level 2 expired on 2025-01-01"}, got.Factors)

	assert.Zero(t, Eligibility(org, opp).Score)
}

func TestComplianceDefenseOffice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		office  procurement.ContractingOffice
		defense bool
	}{
		{name: "department of defense", office: procurement.ContractingOffice{AgencyName: "Department of Defense"}, defense: true},
		{name: "army command", office: procurement.ContractingOffice{Name: "Army Contracting Command"}, defense: true},
		{name: "air force phrase", office: procurement.ContractingOffice{Name: "Department of the Air Force, AFLCMC"}, defense: true},
		{name: "agency acronym", office: procurement.ContractingOffice{AgencyName: "DISA"}, defense: true},
		{name: "disaster assistance", office: procurement.ContractingOffice{Name: "Office of Disaster Assistance"}, defense: false},
		{name: "fema disaster office", office: procurement.ContractingOffice{AgencyName: "FEMA", Name: "Disaster Recovery Center"}, defense: false},
		{name: "navyard is not the navy", office: procurement.ContractingOffice{Name: "Navyard Facilities Office"}, defense: false},
		{name: "air quality is not the air force", office: procurement.ContractingOffice{Name: "Air Quality Division, Force Account"}, defense: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opp := cloudOpp()
			opp.ContractingOffice = tc.office

			got := Compliance(cloudOrg(), opp, fixedNow)
			if tc.defense {
				assert.Equal(t, 0.15, got.Score)
				assert.Equal(t, []string{"defense contracting office applies DFARS clauses"}, got.Factors)
				return
			}
			assert.Zero(t, got.Score)
			assert.Empty(t, got.Factors)
		})
	}
}

func TestPricing(t *testing.T) {
	t.Parallel()

	org := cloudOrg()
	opp := cloudOpp()

	assert.Zero(t, Pricing(org, opp).Score)

	opp.ContractType = "Cost Plus Fixed Fee"
	opp.NoticeType = "Sources Sought"
	assert.InDelta(t, 0.3, Pricing(org, opp).Score, 1e-9)

	opp = cloudOpp()
	opp.ValueMax = 10_000_000
	assert.InDelta(t, 1.0/3, Pricing(org, opp).Score, 1e-9)

	opp.ValueMax = 0
	opp.ValueMin = 0
	assert.Nil(t, Pricing(org, opp))
}

func TestResourceOutOfState(t *testing.T) {
	t.Parallel()

	opp := cloudOpp()
	opp.PlaceOfPerformance.State = "TX"
	got := Resource(cloudOrg(), opp)
	assert.InDelta(t, 0.1, got.Score, 1e-9)

	opp.PlaceOfPerformance.State = "nationwide"
	assert.Zero(t, Resource(cloudOrg(), opp).Score)
}

func TestLevelForIsMonotonic(t *testing.T) {
	t.Parallel()

	prev := -1
	for s := 0.0; s <= 1.0; s += 0.01 {
		rank := procurement.LevelFor(s).Rank()
		assert.GreaterOrEqual(t, rank, prev, "score %.2f", s)
		prev = rank
	}
	assert.Equal(t, procurement.RiskLow, procurement.LevelFor(0.25))
	assert.Equal(t, procurement.RiskMedium, procurement.LevelFor(0.50))
	assert.Equal(t, procurement.RiskHigh, procurement.LevelFor(0.75))
	assert.Equal(t, procurement.RiskCritical, procurement.LevelFor(0.7501))
}

func TestAssessmentRoundTrip(t *testing.T) {
	t.Parallel()

	got, err := newAssessor().Assess(builderOrg(), defenseOpp(), Input{})
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)

	var decoded procurement.RiskAssessment
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, *got, decoded)
	assert.Equal(t, got.OverallLevel, procurement.LevelFor(decoded.OverallScore))
}
