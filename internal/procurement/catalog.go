package procurement

import (
	"sort"
	"strings"
)

// Active reports whether the opportunity is currently open for responses.
// A missing status counts as active.
func (o *Opportunity) Active() bool {
	return o.Status == StatusActive || o.Status == ""
}

// WithClassificationPrefix keeps opportunities whose classification code
// starts with prefix and, when status is set, that are in that status. The
// result is ordered newest posting first, then by id.
func WithClassificationPrefix(opps []*Opportunity, prefix string, status Status) []*Opportunity {
	prefix = strings.TrimSpace(prefix)
	out := make([]*Opportunity, 0)
	for _, o := range opps {
		if !strings.HasPrefix(strings.TrimSpace(o.ClassificationCode), prefix) {
			continue
		}
		if status == StatusActive && !o.Active() {
			continue
		}
		if status != "" && status != StatusActive && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PostedAt, out[j].PostedAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case (a == nil) != (b == nil):
			return a != nil
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// ClassificationMatch counts active opportunities under one organization code.
type ClassificationMatch struct {
	ClassificationCode string `json:"classification_code"`
	OpportunityCount   int    `json:"opportunity_count"`
}

// ClassificationMatches counts active opportunities per organization code,
// in the order the codes are listed. An opportunity under two overlapping
// codes is counted for each.
func ClassificationMatches(codes []string, opps []*Opportunity) ([]ClassificationMatch, int) {
	matches := make([]ClassificationMatch, 0, len(codes))
	total := 0
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		n := len(WithClassificationPrefix(opps, code, StatusActive))
		matches = append(matches, ClassificationMatch{ClassificationCode: code, OpportunityCount: n})
		total += n
	}
	return matches, total
}

// CatalogSummary breaks active opportunities down by notice type and set-aside.
type CatalogSummary struct {
	TotalActive  int            `json:"total_active"`
	ByNoticeType map[string]int `json:"by_notice_type"`
	BySetAside   map[string]int `json:"by_set_aside"`
}

// SummarizeCatalog counts active opportunities. Blank notice types are
// reported as "unspecified" and open competition as "unrestricted".
func SummarizeCatalog(opps []*Opportunity) *CatalogSummary {
	s := &CatalogSummary{ByNoticeType: map[string]int{}, BySetAside: map[string]int{}}
	for _, o := range opps {
		if !o.Active() {
			continue
		}
		s.TotalActive++

		notice := strings.TrimSpace(o.NoticeType)
		if notice == "" {
			notice = "unspecified"
		}
		s.ByNoticeType[notice]++

		setAside := "unrestricted"
		if !o.SetAside.IsOpen() {
			setAside = o.SetAside.String()
		}
		s.BySetAside[setAside]++
	}
	return s
}
