package risk

import "github.com/spigell/bidscout/internal/procurement"

// Summary aggregates the stored assessments of one organization.
type Summary struct {
	OrganizationID string                        `json:"organization_id"`
	Total          int                           `json:"total"`
	ByLevel        map[procurement.RiskLevel]int `json:"by_level"`
	AverageScore   float64                       `json:"average_score"`
}

// Summarize counts assessments per level. Every level is present in ByLevel.
func Summarize(organizationID string, assessments []*procurement.RiskAssessment) *Summary {
	summary := &Summary{
		OrganizationID: organizationID,
		ByLevel:        make(map[procurement.RiskLevel]int, len(procurement.RiskLevels)),
	}
	for _, level := range procurement.RiskLevels {
		summary.ByLevel[level] = 0
	}

	var total float64
	for _, a := range assessments {
		if a == nil {
			continue
		}
		summary.Total++
		summary.ByLevel[a.OverallLevel]++
		total += a.OverallScore
	}
	if summary.Total > 0 {
		summary.AverageScore = total / float64(summary.Total)
	}
	return summary
}
