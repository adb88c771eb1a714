// Package recommend turns a relevance score and a risk score into a bid verdict.
package recommend

import (
	"fmt"
	"math"

	"github.com/spigell/bidscout/internal/procurement"
)

const (
	bidRelevance         = 0.70
	bidRisk              = 0.30
	conditionalRelevance = 0.60
	conditionalRisk      = 0.50
	noBidRelevance       = 0.40
	noBidRisk            = 0.70
)

// Recommend applies the rules in order and returns the first match. Every
// input pair maps to exactly one verdict.
func Recommend(relevance, risk float64) procurement.BidRecommendation {
	relevance = bound(relevance, 0)
	risk = bound(risk, 1)

	rec := procurement.BidRecommendation{RelevanceScore: relevance, RiskScore: risk}

	switch {
	case relevance >= bidRelevance && risk <= bidRisk:
		rec.Verdict = procurement.VerdictBid
		rec.Confidence = 0.90
		rec.Reasoning = []string{
			fmt.Sprintf("relevance %.2f meets the %.2f bid threshold", relevance, bidRelevance),
			fmt.Sprintf("risk %.2f is within the %.2f bid tolerance", risk, bidRisk),
		}

	case relevance >= conditionalRelevance && risk <= conditionalRisk:
		rec.Verdict = procurement.VerdictConditionalBid
		rec.Confidence = 0.70
		rec.Reasoning = []string{
			fmt.Sprintf("relevance %.2f meets the %.2f conditional threshold", relevance, conditionalRelevance),
			fmt.Sprintf("risk %.2f is within the %.2f conditional tolerance", risk, conditionalRisk),
		}
		if risk > bidRisk {
			rec.Conditions = append(rec.Conditions, fmt.Sprintf("mitigate identified risks (%.2f) to %.2f or below before committing proposal resources", risk, bidRisk))
		}
		if relevance < bidRelevance {
			rec.Conditions = append(rec.Conditions, fmt.Sprintf("confirm fit (relevance %.2f) in a capture review and close capability gaps with teaming partners", relevance))
		}

	case relevance < noBidRelevance || risk > noBidRisk:
		rec.Verdict = procurement.VerdictNoBid
		rec.Confidence = 0.85
		if relevance < noBidRelevance {
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("relevance %.2f is below the %.2f minimum", relevance, noBidRelevance))
		}
		if risk > noBidRisk {
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("risk %.2f exceeds the %.2f maximum", risk, noBidRisk))
		}

	default:
		rec.Verdict = procurement.VerdictReviewRequired
		rec.Confidence = 0.50
		rec.Reasoning = []string{
			fmt.Sprintf("relevance %.2f and risk %.2f fall between automatic thresholds", relevance, risk),
			"manual capture review required",
		}
	}
	return rec
}

// bound clamps v to [0,1], replacing NaN with nan.
func bound(v, nan float64) float64 {
	switch {
	case math.IsNaN(v):
		return nan
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
