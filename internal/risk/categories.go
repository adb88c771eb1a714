package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spigell/bidscout/internal/eligibility"
	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/relevance"
	"github.com/spigell/bidscout/internal/weighted"
)

// Complexity by NAICS sector. Unlisted sectors use defaultComplexity.
var sectorComplexity = map[string]float64{
	"23": 0.7,
	"33": 0.8,
	"51": 0.6,
	"54": 0.6,
	"56": 0.3,
	"62": 0.7,
	"92": 0.4,
}

const (
	defaultComplexity = 0.5
	largeContract     = 10_000_000.0
)

var regulatedSubsectors = []string{"336", "562", "622"}

// Whole words or phrases naming a defense buyer.
var defenseMarkers = []string{"defense", "army", "navy", "air force", "marine corps", "dod", "disa"}

// Complexity estimates how demanding an opportunity is, from its sector and size.
func Complexity(opp *procurement.Opportunity) float64 {
	c, ok := sectorComplexity[procurement.Sector(opp.ClassificationCode)]
	if !ok {
		c = defaultComplexity
	}
	if opp.EstimatedValue() > largeContract {
		c += 0.2
	}
	return weighted.Clamp(c)
}

func category(name string, score float64, factors []string) *procurement.RiskCategory {
	score = weighted.Clamp(score)
	if factors == nil {
		factors = []string{}
	}
	return &procurement.RiskCategory{
		Name:    name,
		Score:   score,
		Level:   procurement.LevelFor(score),
		Factors: factors,
	}
}

// Eligibility is always assessable.
func Eligibility(org *procurement.Organization, opp *procurement.Opportunity) *procurement.RiskCategory {
	var score float64
	var factors []string

	if !eligibility.IsEligible(org.SetAsides, opp.SetAside) {
		score += 0.8
		factors = append(factors, fmt.Sprintf("organization does not qualify for the %s set-aside", opp.SetAside))
	}
	for _, name := range opp.RequiredCertifications {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, ok := org.HasCertification(name); !ok {
			score += 0.3
			factors = append(factors, fmt.Sprintf("required certification %s is not held", name))
		}
	}
	if !org.HasClearance(opp.RequiredClearance) {
		score += 0.4
		factors = append(factors, fmt.Sprintf("required %s clearance is not held", opp.RequiredClearance))
	}
	if strings.TrimSpace(org.UEI) == "" {
		score += 0.3
		factors = append(factors, "organization has no UEI registration")
	}
	return category(procurement.CategoryEligibility, score, factors)
}

// Technical weighs the capability gap by the opportunity complexity. It is
// unavailable when neither side describes what is done or needed.
func Technical(org *procurement.Organization, opp *procurement.Opportunity) *procurement.RiskCategory {
	needed := procurement.Keywords(opp.Title, opp.Description, opp.ClassificationDescription)
	hasCode := strings.TrimSpace(opp.ClassificationCode) != ""
	if len(needed) == 0 && !hasCode {
		return nil
	}
	offered := procurement.KeywordSet(append([]string{org.CapabilityNarrative}, org.CoreCompetencies...)...)
	if len(offered) == 0 && len(org.ClassificationCodes) == 0 {
		return nil
	}

	taxonomy := 0.0
	if t := relevance.Taxonomy(org.ClassificationCodes, opp.ClassificationCode); t != nil {
		taxonomy = *t
	}
	coverage := 0.0
	if len(needed) > 0 {
		hits := 0
		for _, term := range needed {
			if _, ok := offered[term]; ok {
				hits++
			}
		}
		coverage = math.Min(1, 2*float64(hits)/float64(len(needed)))
	}
	capability := math.Max(taxonomy, coverage)
	complexity := Complexity(opp)

	var factors []string
	if hasCode && taxonomy == 0 {
		factors = append(factors, fmt.Sprintf("no classification code related to %s", opp.ClassificationCode))
	}
	if capability < 0.5 {
		factors = append(factors, "limited overlap between core competencies and the requirement")
	}
	if complexity >= 0.7 {
		factors = append(factors, fmt.Sprintf("high complexity work (%.1f)", complexity))
	}
	return category(procurement.CategoryTechnical, (1-capability)*(0.5+0.5*complexity), factors)
}

// Pricing measures how far the value falls outside the band of contract sizes
// the organization revenue supports.
func Pricing(org *procurement.Organization, opp *procurement.Opportunity) *procurement.RiskCategory {
	value := opp.EstimatedValue()
	if value <= 0 || org.AnnualRevenue <= 0 {
		return nil
	}

	low, high := 0.02*org.AnnualRevenue, 0.5*org.AnnualRevenue
	var score float64
	var factors []string

	switch {
	case value > high:
		score = weighted.Clamp(math.Log2(value/high) / 3)
		factors = append(factors, fmt.Sprintf("contract value %.0f exceeds typical band ceiling %.0f", value, high))
	case value < low:
		score = math.Min(0.5, math.Log2(low/value)/6*0.5)
		factors = append(factors, fmt.Sprintf("contract value %.0f is below typical band floor %.0f", value, low))
	}

	contractType := strings.ToLower(opp.ContractType)
	if strings.Contains(contractType, "cost") || strings.HasPrefix(contractType, "cp") {
		score += 0.2
		factors = append(factors, "cost-reimbursement contract requires an approved accounting system")
	}
	if strings.Contains(strings.ToLower(opp.NoticeType), "sources sought") {
		score += 0.1
		factors = append(factors, "sources sought notice gives no firm pricing basis")
	}
	return category(procurement.CategoryPricing, score, factors)
}

// Resource compares implied staffing with the current headcount.
func Resource(org *procurement.Organization, opp *procurement.Opportunity) *procurement.RiskCategory {
	if opp.EstimatedValue() <= 0 || org.EmployeeCount <= 0 {
		return nil
	}

	need := opp.AnnualizedValue() / relevance.FTECost
	utilization := need / float64(org.EmployeeCount)
	score := (utilization - 0.3) / 1.7

	var factors []string
	if utilization > 0.3 {
		factors = append(factors, fmt.Sprintf("requires about %.0f FTE against a headcount of %d", need, org.EmployeeCount))
	}
	home, place := org.Location.StateCode(), opp.PlaceOfPerformance.StateCode()
	if home != "" && place != "" && !opp.PlaceSentinel() && home != place {
		score = math.Max(score, 0) + 0.1
		factors = append(factors, fmt.Sprintf("performance in %s is outside the home state %s", place, home))
	}
	return category(procurement.CategoryResource, score, factors)
}

// Compliance is always assessable.
func Compliance(org *procurement.Organization, opp *procurement.Opportunity, now time.Time) *procurement.RiskCategory {
	var score float64
	var factors []string

	for _, name := range opp.RequiredCertifications {
		if strings.TrimSpace(name) == "" {
			continue
		}
		cert, ok := org.HasCertification(name)
		switch {
		case !ok:
			score += 0.25
			factors = append(factors, fmt.Sprintf("missing certification %s", name))
		case cert.Expired(now):
			score += 0.25
			factors = append(factors, fmt.Sprintf("certification %s expired on %s", name, cert.ExpiresAt.Format("2006-01-02")))
		}
	}
	if !org.HasClearance(opp.RequiredClearance) {
		score += 0.4
		factors = append(factors, fmt.Sprintf("facility lacks %s clearance", opp.RequiredClearance))
	}

	office := opp.Agency() + " " + opp.ContractingOffice.Name
	for _, marker := range defenseMarkers {
		if procurement.ContainsPhrase(office, marker) {
			score += 0.15
			factors = append(factors, "defense contracting office applies DFARS clauses")
			break
		}
	}
	for _, prefix := range regulatedSubsectors {
		if strings.HasPrefix(strings.TrimSpace(opp.ClassificationCode), prefix) {
			score += 0.1
			factors = append(factors, fmt.Sprintf("regulated industry %s", prefix))
			break
		}
	}
	return category(procurement.CategoryCompliance, score, factors)
}

// Timeline compares the time left with a complexity-scaled preparation window.
func Timeline(opp *procurement.Opportunity, now time.Time) *procurement.RiskCategory {
	if opp.ResponseDeadline == nil || opp.ResponseDeadline.IsZero() {
		return nil
	}

	window := 10 + 20*Complexity(opp)
	days := opp.ResponseDeadline.Sub(now).Hours() / 24
	if days <= 0 {
		return category(procurement.CategoryTimeline, 1, []string{"response deadline has passed"})
	}

	score := window / days / 2
	var factors []string
	if score > 0.25 {
		factors = append(factors, fmt.Sprintf("%.0f days to respond against a %.0f day preparation window", math.Floor(days), window))
	}
	return category(procurement.CategoryTimeline, score, factors)
}
