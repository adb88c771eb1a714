package procurement

import (
	"math"
	"time"
)

// ModelVersion is stamped on every computed record.
const ModelVersion = "v1.0.0"

// RelevanceTier buckets an overall relevance score.
type RelevanceTier string

const (
	TierExcellent RelevanceTier = "excellent"
	TierGood      RelevanceTier = "good"
	TierFair      RelevanceTier = "fair"
	TierPoor      RelevanceTier = "poor"
)

// TierFor maps a relevance score to its tier. Lower bounds are inclusive.
func TierFor(score float64) RelevanceTier {
	switch {
	case math.IsNaN(score):
		return TierPoor
	case score >= 0.80:
		return TierExcellent
	case score >= 0.60:
		return TierGood
	case score >= 0.40:
		return TierFair
	default:
		return TierPoor
	}
}

// Rank orders tiers from poor (0) to excellent (3).
func (t RelevanceTier) Rank() int {
	switch t {
	case TierExcellent:
		return 3
	case TierGood:
		return 2
	case TierFair:
		return 1
	default:
		return 0
	}
}

// RiskLevel buckets a risk score. Higher is worse.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// LevelFor maps a risk score to its level. Upper bounds are inclusive.
func LevelFor(score float64) RiskLevel {
	switch {
	case math.IsNaN(score):
		return RiskCritical
	case score <= 0.25:
		return RiskLow
	case score <= 0.50:
		return RiskMedium
	case score <= 0.75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Rank orders levels from low (0) to critical (3).
func (l RiskLevel) Rank() int {
	switch l {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// Relevance component names, also used as weight keys.
const (
	ComponentTaxonomy        = "taxonomy"
	ComponentSemantic        = "semantic"
	ComponentGeographic      = "geographic"
	ComponentSize            = "size"
	ComponentPastPerformance = "past_performance"
)

// RelevanceComponents holds the optional sub-scores. A nil entry means the
// input was unavailable.
type RelevanceComponents struct {
	Taxonomy        *float64 `json:"taxonomy,omitempty"`
	Semantic        *float64 `json:"semantic,omitempty"`
	Geographic      *float64 `json:"geographic,omitempty"`
	Size            *float64 `json:"size,omitempty"`
	PastPerformance *float64 `json:"past_performance,omitempty"`
}

// RelevanceScore ties one organization to one opportunity.
type RelevanceScore struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organization_id"`
	OpportunityID  string              `json:"opportunity_id"`
	OverallScore   float64             `json:"overall_score"`
	Tier           RelevanceTier       `json:"tier"`
	Components     RelevanceComponents `json:"components"`
	Weights        map[string]float64  `json:"weights"`
	Explanation    string              `json:"explanation"`
	ComputedAt     time.Time           `json:"computed_at"`
	ModelVersion   string              `json:"model_version"`
}

// Risk category names, also used as weight keys.
const (
	CategoryEligibility = "eligibility"
	CategoryTechnical   = "technical"
	CategoryPricing     = "pricing"
	CategoryResource    = "resource"
	CategoryCompliance  = "compliance"
	CategoryTimeline    = "timeline"
)

// RiskCategory is one evaluated dimension of risk.
type RiskCategory struct {
	Name    string    `json:"name"`
	Score   float64   `json:"score"`
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

// RiskCategories holds the six categories. A nil entry was not assessable.
type RiskCategories struct {
	Eligibility *RiskCategory `json:"eligibility,omitempty"`
	Technical   *RiskCategory `json:"technical,omitempty"`
	Pricing     *RiskCategory `json:"pricing,omitempty"`
	Resource    *RiskCategory `json:"resource,omitempty"`
	Compliance  *RiskCategory `json:"compliance,omitempty"`
	Timeline    *RiskCategory `json:"timeline,omitempty"`
}

// All returns the present categories in a fixed order.
func (c RiskCategories) All() []*RiskCategory {
	out := make([]*RiskCategory, 0, 6)
	for _, cat := range []*RiskCategory{c.Eligibility, c.Technical, c.Pricing, c.Resource, c.Compliance, c.Timeline} {
		if cat != nil {
			out = append(out, cat)
		}
	}
	return out
}

// RiskAssessment ties one organization to one opportunity.
type RiskAssessment struct {
	ID                    string             `json:"id"`
	OrganizationID        string             `json:"organization_id"`
	OpportunityID         string             `json:"opportunity_id"`
	OverallScore          float64            `json:"overall_score"`
	OverallLevel          RiskLevel          `json:"overall_level"`
	Categories            RiskCategories     `json:"categories"`
	Weights               map[string]float64 `json:"weights"`
	RiskFactors           []string           `json:"risk_factors"`
	MitigationSuggestions []string           `json:"mitigation_suggestions"`
	AssessedAt            time.Time          `json:"assessed_at"`
	ModelVersion          string             `json:"model_version"`
}

// Verdict is the terminal bid decision.
type Verdict string

const (
	VerdictBid            Verdict = "bid"
	VerdictNoBid          Verdict = "no_bid"
	VerdictConditionalBid Verdict = "conditional_bid"
	VerdictReviewRequired Verdict = "review_required"
)

// BidRecommendation is derived from a relevance and a risk score.
type BidRecommendation struct {
	Verdict        Verdict  `json:"verdict"`
	Confidence     float64  `json:"confidence"`
	RelevanceScore float64  `json:"relevance_score"`
	RiskScore      float64  `json:"risk_score"`
	Reasoning      []string `json:"reasoning"`
	Conditions     []string `json:"conditions,omitempty"`
}
