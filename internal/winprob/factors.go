package winprob

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/spigell/bidscout/internal/eligibility"
	"github.com/spigell/bidscout/internal/procurement"
)

var capabilityTiers = []struct {
	digits int
	score  float64
	label  string
}{
	{6, 1, "exact classification match"},
	{5, 0.9, "strong classification match (5-digit)"},
	{4, 0.75, "good classification match (4-digit)"},
	{3, 0.5, "partial classification match (3-digit)"},
	{2, 0.25, "related industry sector"},
}

// keywordBonus applies when more than keywordHits narrative terms appear in
// the opportunity description.
const (
	keywordBonus = 0.1
	keywordHits  = 3
)

// Capability tiers the longest classification prefix shared with any
// organization code and adds a bonus for narrative terms found in the
// description.
func Capability(org *procurement.Organization, opp *procurement.Opportunity) (float64, string) {
	score := 0.0
	var reasons []string

	oppCode := strings.TrimSpace(opp.ClassificationCode)
	best := 0
	if procurement.IsNumericCode(oppCode) {
		for _, code := range org.ClassificationCodes {
			code = strings.TrimSpace(code)
			if procurement.IsNumericCode(code) {
				best = max(best, procurement.SharedPrefix(code, oppCode))
			}
		}
	}
	for _, tier := range capabilityTiers {
		if best >= tier.digits {
			score = tier.score
			reasons = append(reasons, tier.label)
			break
		}
	}

	if org.CapabilityNarrative != "" && opp.Description != "" {
		described := procurement.KeywordSet(opp.Description)
		hits := 0
		for _, kw := range procurement.Keywords(org.CapabilityNarrative) {
			if utf8.RuneCountInString(kw) < 4 {
				continue
			}
			if _, ok := described[kw]; ok {
				hits++
			}
		}
		if hits > keywordHits {
			score = math.Min(1, score+keywordBonus)
			reasons = append(reasons, fmt.Sprintf("strong keyword alignment (%d matches)", hits))
		}
	}

	if len(reasons) == 0 {
		return score, "limited capability data for analysis"
	}
	return score, strings.Join(reasons, "; ")
}

// SetAsideEligibility rewards restrictions the organization qualifies for.
// Open competition is neutral and unknown qualifications are penalized less
// than a definite mismatch.
func SetAsideEligibility(org *procurement.Organization, opp *procurement.Opportunity) (float64, string) {
	restriction := opp.SetAside
	switch {
	case restriction.IsOpen():
		return 0.6, "full and open competition"
	case len(org.SetAsides) == 0 && strings.Contains(string(restriction), "SB"):
		return 0.3, fmt.Sprintf("%s set-aside, eligibility unknown", restriction)
	case len(org.SetAsides) == 0:
		return 0.5, "no set-aside qualifications on file"
	case eligibility.IsEligible(org.SetAsides, restriction):
		return 1, fmt.Sprintf("eligible for %s set-aside", restriction)
	default:
		return 0.1, fmt.Sprintf("not eligible for %s set-aside", restriction)
	}
}

var contractTypeTerms = []struct {
	code  string
	terms []string
}{
	{"ffp", []string{"fixed", "firm"}},
	{"t&m", []string{"time", "materials"}},
	{"cpff", []string{"cost", "plus"}},
	{"idiq", []string{"idiq", "task order"}},
}

// PastPerformance looks for the industry, the buying office and the
// contract type in the past-performance summary.
func PastPerformance(org *procurement.Organization, opp *procurement.Opportunity) (float64, string) {
	summary := org.PastPerformanceSummary
	if strings.TrimSpace(summary) == "" {
		return 0.4, "no past performance summary on file"
	}

	score := 0.4
	var reasons []string

	if opp.ClassificationCode != "" && mentionsLeading(summary, opp.ClassificationDescription, 3) {
		score += 0.2
		reasons = append(reasons, "relevant industry experience")
	}
	if mentionsLeading(summary, opp.ContractingOffice.Name, 2) {
		score += 0.2
		reasons = append(reasons, "agency experience")
	}
	if ct := strings.ToLower(opp.ContractType); ct != "" {
		for _, c := range contractTypeTerms {
			if !strings.Contains(ct, c.code) || !anyPhrase(summary, c.terms) {
				continue
			}
			score += 0.15
			reasons = append(reasons, strings.ToUpper(c.code)+" contract experience")
			break
		}
	}

	if len(reasons) == 0 {
		return math.Min(1, score), "general past performance on file"
	}
	return math.Min(1, score), strings.Join(reasons, "; ")
}

// mentionsLeading reports whether any of the first n words of source longer
// than three letters appears in text.
func mentionsLeading(text, source string, n int) bool {
	words := procurement.Words(source)
	if len(words) > n {
		words = words[:n]
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) > 3 && procurement.ContainsPhrase(text, w) {
			return true
		}
	}
	return false
}

func anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if procurement.ContainsPhrase(text, p) {
			return true
		}
	}
	return false
}

var agencyTerms = []struct {
	agency string
	terms  []string
}{
	{"DOD", []string{"defense", "army", "navy", "air force", "marine", "pentagon"}},
	{"VA", []string{"veterans", "va", "vha", "vba"}},
	{"DHS", []string{"homeland", "fema", "tsa", "ice", "cbp"}},
	{"HHS", []string{"health", "human services", "cdc", "fda", "nih"}},
	{"GSA", []string{"gsa", "federal acquisition", "public building"}},
	{"DOJ", []string{"justice", "fbi", "dea", "atf", "marshal"}},
	{"TREASURY", []string{"treasury", "irs", "mint"}},
}

// AgencyRelationship credits prior work for the buying agency named in the
// past-performance summary.
func AgencyRelationship(org *procurement.Organization, opp *procurement.Opportunity) (float64, string) {
	office := strings.TrimSpace(opp.Agency() + " " + opp.ContractingOffice.Name)
	if office == "" {
		return 0.5, "contracting office not specified"
	}
	summary := strings.TrimSpace(org.PastPerformanceSummary)
	if summary == "" {
		return 0.3, "no agency relationship history available"
	}

	for _, a := range agencyTerms {
		if anyPhrase(office, a.terms) && anyPhrase(summary, a.terms) {
			return 0.8, "prior " + a.agency + " experience"
		}
	}
	if utf8.RuneCountInString(summary) > 100 {
		return 0.5, "general federal contracting experience"
	}
	return 0.3, "no direct agency relationship identified"
}

var dcMetro = map[string]bool{"DC": true, "VA": true, "MD": true}

var adjacentStates = map[string][]string{
	"VA": {"DC", "MD", "WV", "NC", "TN", "KY"},
	"MD": {"DC", "VA", "WV", "PA", "DE"},
	"DC": {"VA", "MD"},
	"CA": {"OR", "NV", "AZ"},
	"TX": {"NM", "OK", "AR", "LA"},
	"FL": {"GA", "AL"},
	"NY": {"NJ", "CT", "PA", "VT", "MA"},
	"IL": {"WI", "IN", "MO", "IA", "KY"},
}

// Geographic favors local, metro-area and neighboring-state presence, and
// remote work when the description allows it.
func Geographic(org *procurement.Organization, opp *procurement.Opportunity) (float64, string) {
	home := org.Location.StateCode()
	place := opp.PlaceOfPerformance.StateCode()
	switch {
	case home == "" || place == "" || opp.PlaceSentinel():
		return 0.6, "geographic location not specified"
	case home == place:
		return 1, "located in " + place
	case dcMetro[home] && dcMetro[place]:
		return 0.9, "DC metro area presence"
	}
	for _, s := range adjacentStates[home] {
		if s == place {
			return 0.75, "adjacent to " + place
		}
	}
	if anyPhrase(opp.Description, []string{"remote", "telework"}) {
		return 0.8, "remote or telework eligible"
	}
	return 0.4, fmt.Sprintf("located in %s, opportunity in %s", home, place)
}

// Competition reads the expected field size from the notice type.
func Competition(opp *procurement.Opportunity) (float64, string) {
	notice := opp.NoticeType
	switch {
	case strings.TrimSpace(notice) == "":
		return 0.5, "competition level unknown"
	case anyPhrase(notice, []string{"sole source", "j&a"}):
		return 0.2, "sole source, pre-selected vendor likely"
	case anyPhrase(notice, []string{"sources sought", "rfi"}):
		return 0.7, "market research phase, early opportunity"
	case anyPhrase(notice, []string{"presolicitation"}):
		return 0.6, "presolicitation, good time for positioning"
	case anyPhrase(notice, []string{"combined", "solicitation"}):
		return 0.5, "active solicitation, competitive"
	case anyPhrase(notice, []string{"award"}):
		return 0.1, "award notice, opportunity closed"
	default:
		return 0.5, "standard competition expected"
	}
}

// Pricing compares the contract ceiling with annual revenue.
func Pricing(org *procurement.Organization, opp *procurement.Opportunity) (float64, string) {
	if opp.ValueMax <= 0 || org.AnnualRevenue <= 0 {
		return 0.6, "contract value or revenue data unavailable"
	}

	ratio := opp.ValueMax / org.AnnualRevenue
	share := fmt.Sprintf("%.1f%% of revenue", ratio*100)
	switch {
	case ratio < 0.1:
		return 0.9, "very manageable contract size (" + share + ")"
	case ratio < 0.3:
		return 1, "ideal contract size (" + share + ")"
	case ratio < 0.5:
		return 0.85, "good fit (" + share + ")"
	case ratio < 1:
		return 0.6, "stretch opportunity (" + share + ")"
	case ratio < 2:
		return 0.4, "significant commitment (" + share + ")"
	default:
		return 0.2, "contract may exceed capacity (" + share + ")"
	}
}
