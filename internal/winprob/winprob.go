// Package winprob estimates the chance of winning an opportunity from seven
// pursuit factors, each with a short analysis line.
package winprob

import (
	"math"

	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/weighted"
)

const (
	FactorCapability  = "capability_match"
	FactorSetAside    = "setaside_eligibility"
	FactorPast        = "past_performance"
	FactorAgency      = "agency_relationship"
	FactorGeographic  = "geographic_fit"
	FactorCompetition = "competition_level"
	FactorPricing     = "pricing_position"
)

const (
	maxConfidence      = 0.95
	extremeFactorBonus = 0.02
)

var DefaultWeights = weighted.Weights{
	FactorCapability:  0.20,
	FactorSetAside:    0.20,
	FactorPast:        0.20,
	FactorAgency:      0.15,
	FactorGeographic:  0.10,
	FactorCompetition: 0.10,
	FactorPricing:     0.05,
}

var factorOrder = []string{
	FactorCapability,
	FactorSetAside,
	FactorPast,
	FactorAgency,
	FactorGeographic,
	FactorCompetition,
	FactorPricing,
}

// Pursuit is the coarse pursuit decision derived from the win probability.
type Pursuit string

const (
	PursuitStrong    Pursuit = "STRONG_PURSUE"
	PursuitPursue    Pursuit = "PURSUE"
	PursuitEvaluate  Pursuit = "EVALUATE"
	PursuitSelective Pursuit = "SELECTIVE"
	PursuitMonitor   Pursuit = "MONITOR_ONLY"
)

var guidance = map[Pursuit]string{
	PursuitStrong:    "High probability opportunity aligned with capabilities",
	PursuitPursue:    "Good fit, develop strong differentiators",
	PursuitEvaluate:  "Consider teaming or targeted pursuit",
	PursuitSelective: "Only pursue if strategically important",
	PursuitMonitor:   "Low probability, preserve bid resources",
}

// PursuitFor maps a win probability to a pursuit decision.
func PursuitFor(p float64) Pursuit {
	switch {
	case p >= 0.70:
		return PursuitStrong
	case p >= 0.55:
		return PursuitPursue
	case p >= 0.40:
		return PursuitEvaluate
	case p >= 0.25:
		return PursuitSelective
	default:
		return PursuitMonitor
	}
}

// Result is the win estimate for one organization and opportunity.
type Result struct {
	OrganizationID string             `json:"organization_id"`
	OpportunityID  string             `json:"opportunity_id"`
	Title          string             `json:"title,omitempty"`
	WinProbability float64            `json:"win_probability"`
	MatchScore     float64            `json:"match_score"`
	Factors        map[string]float64 `json:"factors"`
	Analysis       map[string]string  `json:"analysis"`
	Pursuit        Pursuit            `json:"pursuit"`
	Recommendation string             `json:"recommendation"`
	Confidence     float64            `json:"confidence"`
}

type factor func(*procurement.Organization, *procurement.Opportunity) (float64, string)

var factors = map[string]factor{
	FactorCapability:  Capability,
	FactorSetAside:    SetAsideEligibility,
	FactorPast:        PastPerformance,
	FactorAgency:      AgencyRelationship,
	FactorGeographic:  Geographic,
	FactorCompetition: competition,
	FactorPricing:     Pricing,
}

func competition(_ *procurement.Organization, opp *procurement.Opportunity) (float64, string) {
	return Competition(opp)
}

// Estimate scores every factor and combines them with weights overlaid on
// DefaultWeights. Weights are renormalized, so overrides need not sum to 1.
func Estimate(org *procurement.Organization, opp *procurement.Opportunity, overrides map[string]float64) (*Result, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}
	if err := opp.Validate(); err != nil {
		return nil, err
	}

	weights := weighted.Merge(DefaultWeights, overrides)
	res := &Result{
		OrganizationID: org.ID,
		OpportunityID:  opp.ID,
		Title:          opp.Title,
		Factors:        make(map[string]float64, len(factorOrder)),
		Analysis:       make(map[string]string, len(factorOrder)),
	}

	components := make([]weighted.Component, 0, len(factorOrder))
	for _, name := range factorOrder {
		score, analysis := factors[name](org, opp)
		score = round(score)
		res.Factors[name] = score
		res.Analysis[name] = analysis
		components = append(components, weighted.Of(name, &score, weights[name]))
	}

	p, _ := weighted.Average(components...)
	res.WinProbability = round(p)
	res.MatchScore = round((res.Factors[FactorCapability] + res.Factors[FactorSetAside]) / 2)
	res.Pursuit = PursuitFor(res.WinProbability)
	res.Recommendation = string(res.Pursuit) + ": " + guidance[res.Pursuit]
	res.Confidence = round(confidence(org, opp, res.Factors))
	return res, nil
}

// confidence grows with the profile and notice data available and with the
// number of factors that give a clear signal.
func confidence(org *procurement.Organization, opp *procurement.Opportunity, scores map[string]float64) float64 {
	c := 0.5
	if len(org.ClassificationCodes) > 0 {
		c += 0.1
	}
	if org.PastPerformanceSummary != "" {
		c += 0.1
	}
	if len(org.SetAsides) > 0 {
		c += 0.05
	}
	if org.AnnualRevenue > 0 {
		c += 0.05
	}
	if opp.ClassificationCode != "" {
		c += 0.05
	}
	if len(opp.Description) > 100 {
		c += 0.05
	}
	if opp.ValueMax > 0 {
		c += 0.05
	}
	for _, v := range scores {
		if v > 0.8 || v < 0.2 {
			c += extremeFactorBonus
		}
	}
	return math.Min(maxConfidence, c)
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
