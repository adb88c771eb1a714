package relevance

import (
	"math"
	"strings"

	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/weighted"
)

const (
	// FTECost is the annual contract value assumed to fund one full-time employee.
	FTECost = 150000.0

	regionalMatch = 0.5

	// naicsLength is the digit count of a fully specified code. Coarser codes
	// are scored against it, so only an exact match reaches 1.
	naicsLength = 6
)

// Taxonomy scores the best classification match of any organization code
// against the opportunity code: 1 for an exact match, otherwise the shared
// prefix over the full code length. It returns nil when either side has no code.
func Taxonomy(orgCodes []string, oppCode string) *float64 {
	oppCode = strings.TrimSpace(oppCode)
	codes := make([]string, 0, len(orgCodes))
	for _, c := range orgCodes {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	if oppCode == "" || len(codes) == 0 {
		return nil
	}
	if !procurement.IsNumericCode(oppCode) {
		return weighted.Ptr(0)
	}

	best := 0.0
	for _, code := range codes {
		if !procurement.IsNumericCode(code) {
			continue
		}
		if code == oppCode {
			return weighted.Ptr(1)
		}
		if p := procurement.SharedPrefix(code, oppCode); p >= 2 {
			best = math.Max(best, float64(p)/float64(max(len(code), len(oppCode), naicsLength)))
		}
	}
	return weighted.Ptr(best)
}

// Semantic passes an externally computed similarity through, clamped.
func Semantic(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) {
		return nil
	}
	return weighted.Ptr(weighted.Clamp(*value))
}

// Geographic compares the organization state with the place of performance.
func Geographic(org *procurement.Organization, opp *procurement.Opportunity) *float64 {
	home := org.Location.StateCode()
	place := opp.PlaceOfPerformance.StateCode()
	if home == "" || place == "" {
		return nil
	}

	switch {
	case opp.PlaceSentinel():
		return weighted.Ptr(regionalMatch)
	case home == place:
		return weighted.Ptr(1)
	case procurement.CensusDivision(home) != "" && procurement.CensusDivision(home) == procurement.CensusDivision(place):
		return weighted.Ptr(regionalMatch)
	default:
		return weighted.Ptr(0)
	}
}

// Size is the lower of the revenue fit and the headcount fit.
func Size(org *procurement.Organization, opp *procurement.Opportunity) *float64 {
	value := opp.EstimatedValue()
	if value <= 0 {
		return nil
	}

	var fits []float64
	if org.AnnualRevenue > 0 {
		fits = append(fits, revenueFit(value/org.AnnualRevenue))
	}
	if org.EmployeeCount > 0 {
		fits = append(fits, headcountFit(opp.AnnualizedValue()/FTECost, float64(org.EmployeeCount)))
	}
	if len(fits) == 0 {
		return nil
	}

	fit := fits[0]
	for _, f := range fits[1:] {
		fit = math.Min(fit, f)
	}
	return weighted.Ptr(fit)
}

func revenueFit(ratio float64) float64 {
	switch {
	case ratio < 0.01:
		return 0.9
	case ratio <= 0.5:
		return 1
	default:
		return 1 / (1 + (ratio - 0.5))
	}
}

func headcountFit(need, employees float64) float64 {
	capacity := 0.5 * employees
	if need <= capacity {
		return 1
	}
	return capacity / need
}

// PastPerformance measures how much of the opportunity vocabulary and its
// classification code the past-performance summary mentions.
func PastPerformance(org *procurement.Organization, opp *procurement.Opportunity) *float64 {
	summary := strings.TrimSpace(org.PastPerformanceSummary)
	if summary == "" {
		return weighted.Ptr(0)
	}

	terms := procurement.Keywords(opp.Title, opp.ClassificationDescription)
	known := procurement.KeywordSet(summary)

	hits := 0.0
	for _, term := range terms {
		if _, ok := known[term]; ok {
			hits++
		}
	}
	if code := strings.TrimSpace(opp.ClassificationCode); code != "" && strings.Contains(summary, code) {
		hits++
	}
	return weighted.Ptr(weighted.Clamp(hits / float64(len(terms)+1)))
}
