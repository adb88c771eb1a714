package procurement

import (
	"strings"
	"time"
)

// Location is a postal place used for both organizations and places of performance.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// StateCode returns the two-letter state code, accepting full state names.
func (l Location) StateCode() string {
	return NormalizeState(l.State)
}

// Certification is a credential held by an organization.
type Certification struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the certification lapsed before now.
func (c Certification) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// Organization is the bidder profile matched against opportunities.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LegalName string `json:"legal_name,omitempty"`
	UEI       string `json:"uei,omitempty"`
	CAGECode  string `json:"cage_code,omitempty"`

	ClassificationCodes []string   `json:"classification_codes,omitempty"`
	SetAsides           []SetAside `json:"set_asides,omitempty"`

	Location      Location `json:"location"`
	EmployeeCount int      `json:"employee_count,omitempty"`
	AnnualRevenue float64  `json:"annual_revenue,omitempty"`

	CapabilityNarrative    string   `json:"capability_narrative,omitempty"`
	CoreCompetencies       []string `json:"core_competencies,omitempty"`
	PastPerformanceSummary string   `json:"past_performance_summary,omitempty"`

	Certifications []Certification `json:"certifications,omitempty"`
	Clearances     []string        `json:"clearances,omitempty"`
}

// Validate checks the identity fields required for scoring.
func (o *Organization) Validate() error {
	if o == nil {
		return &ValidationError{Field: "organization", Message: "is required"}
	}
	if strings.TrimSpace(o.ID) == "" {
		return &ValidationError{Field: "organization.id", Message: "is required"}
	}
	return nil
}

// HasCertification reports whether a certification with the given name is
// held, regardless of expiry.
func (o *Organization) HasCertification(name string) (Certification, bool) {
	for _, c := range o.Certifications {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return c, true
		}
	}
	return Certification{}, false
}

// HasClearance reports whether the organization holds the clearance level or
// a higher one.
func (o *Organization) HasClearance(required string) bool {
	need := clearanceRank(required)
	if need == 0 {
		return true
	}
	for _, c := range o.Clearances {
		if clearanceRank(c) >= need {
			return true
		}
	}
	return false
}

func clearanceRank(level string) int {
	l := strings.ToLower(strings.TrimSpace(level))
	switch {
	case l == "" || l == "none":
		return 0
	case strings.Contains(l, "sci"):
		return 4
	case strings.Contains(l, "top secret") || l == "ts":
		return 3
	case strings.Contains(l, "secret"):
		return 2
	default:
		return 1
	}
}
