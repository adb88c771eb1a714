// Package risk assesses six categories of bid risk and aggregates them.
package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/weighted"
)

const maxMitigations = 10

var DefaultWeights = weighted.Weights{
	procurement.CategoryEligibility: 0.25,
	procurement.CategoryTechnical:   0.20,
	procurement.CategoryPricing:     0.15,
	procurement.CategoryResource:    0.15,
	procurement.CategoryCompliance:  0.15,
	procurement.CategoryTimeline:    0.10,
}

var mitigations = map[string][]string{
	procurement.CategoryEligibility: {
		"Confirm set-aside status with the contracting officer or team with a qualifying prime",
		"Obtain missing registrations, certifications or clearances before the deadline",
	},
	procurement.CategoryTechnical: {
		"Team with a subcontractor that has direct experience in the required capability",
		"Map transferable past performance to each technical requirement",
	},
	procurement.CategoryPricing: {
		"Build an independent cost estimate and review pricing assumptions",
		"Consider a joint venture to share financial exposure",
	},
	procurement.CategoryResource: {
		"Line up contingent hires or subcontract capacity before submission",
	},
	procurement.CategoryCompliance: {
		"Engage compliance counsel to close certification and clearance gaps",
		"Review DFARS and agency-specific clauses early",
	},
	procurement.CategoryTimeline: {
		"Request a deadline extension or reuse existing proposal content",
	},
}

type Input struct {
	Weights map[string]float64
}

type Assessor struct {
	Now   func() time.Time
	NewID func() string
}

func New() *Assessor {
	return &Assessor{Now: time.Now, NewID: uuid.NewString}
}

// Assess evaluates every category and aggregates the available ones.
func (a *Assessor) Assess(org *procurement.Organization, opp *procurement.Opportunity, in Input) (*procurement.RiskAssessment, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}
	if err := opp.Validate(); err != nil {
		return nil, err
	}

	now := a.Now().UTC()
	weights := weighted.Merge(DefaultWeights, in.Weights)
	categories := procurement.RiskCategories{
		Eligibility: Eligibility(org, opp),
		Technical:   Technical(org, opp),
		Pricing:     Pricing(org, opp),
		Resource:    Resource(org, opp),
		Compliance:  Compliance(org, opp, now),
		Timeline:    Timeline(opp, now),
	}

	overall, _ := weighted.Average(Parts(categories, weights)...)

	return &procurement.RiskAssessment{
		ID:                    a.NewID(),
		OrganizationID:        org.ID,
		OpportunityID:         opp.ID,
		OverallScore:          overall,
		OverallLevel:          procurement.LevelFor(overall),
		Categories:            categories,
		Weights:               weights,
		RiskFactors:           Factors(categories),
		MitigationSuggestions: Mitigations(categories),
		AssessedAt:            now,
		ModelVersion:          procurement.ModelVersion,
	}, nil
}

// Parts maps categories onto weighted inputs. Nil categories are absent.
func Parts(c procurement.RiskCategories, w weighted.Weights) []weighted.Component {
	entries := []struct {
		name string
		cat  *procurement.RiskCategory
	}{
		{procurement.CategoryEligibility, c.Eligibility},
		{procurement.CategoryTechnical, c.Technical},
		{procurement.CategoryPricing, c.Pricing},
		{procurement.CategoryResource, c.Resource},
		{procurement.CategoryCompliance, c.Compliance},
		{procurement.CategoryTimeline, c.Timeline},
	}
	parts := make([]weighted.Component, 0, len(entries))
	for _, e := range entries {
		if e.cat == nil {
			parts = append(parts, weighted.Component{Name: e.name, Weight: w[e.name]})
			continue
		}
		parts = append(parts, weighted.Component{Name: e.name, Value: e.cat.Score, Weight: w[e.name], Present: true})
	}
	return parts
}

// Factors is the de-duplicated union of category factors.
func Factors(c procurement.RiskCategories) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, cat := range c.All() {
		for _, f := range cat.Factors {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// Mitigations returns suggestions for categories above medium risk.
func Mitigations(c procurement.RiskCategories) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, cat := range c.All() {
		if cat.Score <= 0.5 {
			continue
		}
		for _, m := range mitigations[cat.Name] {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
			if len(out) == maxMitigations {
				return out
			}
		}
	}
	return out
}
