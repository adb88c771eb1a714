package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/bidscout/internal/procurement"
)

// Evaluations is an ordered result set of one batch.
type Evaluations struct {
	Items []*Evaluation `json:"items"`
}

func (v *Evaluations) Len() int {
	return len(v.Items)
}

func (v *Evaluations) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "evaluations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByTier groups evaluations under their relevance tier.
func (v *Evaluations) ReportByTier() map[procurement.RelevanceTier][]map[string]string {
	report := make(map[procurement.RelevanceTier][]map[string]string)
	for _, eval := range v.Items {
		report[eval.Relevance.Tier] = append(report[eval.Relevance.Tier], reportEntry(eval))
	}
	return report
}

// ReportByVerdict groups evaluations under their bid verdict.
func (v *Evaluations) ReportByVerdict() map[procurement.Verdict][]map[string]string {
	report := make(map[procurement.Verdict][]map[string]string)
	for _, eval := range v.Items {
		verdict := eval.Recommendation.Verdict
		report[verdict] = append(report[verdict], reportEntry(eval))
	}
	return report
}

// OpportunityIDs returns the ids of the evaluated opportunities in result order.
func (v *Evaluations) OpportunityIDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, eval := range v.Items {
		ids = append(ids, eval.OpportunityID)
	}
	return ids
}

func reportEntry(eval *Evaluation) map[string]string {
	entry := map[string]string{
		"opportunity": eval.OpportunityID,
		"title":       eval.Title,
		"eligible":    fmt.Sprintf("%t", eval.Eligible),
		"relevance":   fmt.Sprintf("%.2f (%s)", eval.Relevance.OverallScore, eval.Relevance.Tier),
		"risk":        fmt.Sprintf("%.2f (%s)", eval.Risk.OverallScore, eval.Risk.OverallLevel),
		"verdict":     string(eval.Recommendation.Verdict),
		"reasoning":   strings.Join(eval.Recommendation.Reasoning, "; "),
	}
	if eval.Similarity != nil && eval.Similarity.Reason != "" {
		entry["semantic reason"] = eval.Similarity.Reason
	}
	return entry
}
