package procurement

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

const (
	OpportunityIDField     = "ID"
	OpportunityAgencyField = "Agency"
)

// Status is the lifecycle status of an opportunity.
type Status string

const (
	StatusForecast        Status = "forecast"
	StatusPresolicitation Status = "presolicitation"
	StatusActive          Status = "active"
	StatusClosed          Status = "closed"
	StatusAwarded         Status = "awarded"
	StatusCancelled       Status = "cancelled"
	StatusArchived        Status = "archived"
)

// Open reports whether the opportunity can still receive responses.
func (s Status) Open() bool {
	switch s {
	case StatusClosed, StatusAwarded, StatusCancelled, StatusArchived:
		return false
	default:
		return true
	}
}

// Place-of-performance sentinels that are not a single state.
const (
	PlaceNationwide = "NATIONWIDE"
	PlaceMultiple   = "MULTIPLE"
)

// ContractingOffice identifies the buying office.
type ContractingOffice struct {
	Name       string `json:"name,omitempty"`
	AgencyCode string `json:"agency_code,omitempty"`
	AgencyName string `json:"agency_name,omitempty"`
}

// Opportunities is a list of procurement opportunities.
type Opportunities struct {
	Items []*Opportunity
}

// Opportunity is a procurement notice scored against an organization.
type Opportunity struct {
	ID                 string `json:"id"`
	SourceID           string `json:"source_id,omitempty"`
	SourceSystem       string `json:"source_system,omitempty"`
	Title              string `json:"title,omitempty"`
	Description        string `json:"description,omitempty"`
	NoticeType         string `json:"notice_type,omitempty"`
	SolicitationNumber string `json:"solicitation_number,omitempty"`

	ClassificationCode        string   `json:"classification_code,omitempty"`
	ClassificationDescription string   `json:"classification_description,omitempty"`
	SetAside                  SetAside `json:"set_aside,omitempty"`

	PlaceOfPerformance        Location          `json:"place_of_performance"`
	ValueMin                  float64           `json:"value_min,omitempty"`
	ValueMax                  float64           `json:"value_max,omitempty"`
	PeriodOfPerformanceMonths int               `json:"period_of_performance_months,omitempty"`
	ContractType              string            `json:"contract_type,omitempty"`
	ContractingOffice         ContractingOffice `json:"contracting_office"`

	PostedAt         *time.Time `json:"posted_at,omitempty"`
	ResponseDeadline *time.Time `json:"response_deadline,omitempty"`
	Status           Status     `json:"status,omitempty"`

	RequiredCertifications []string `json:"required_certifications,omitempty"`
	RequiredClearance      string   `json:"required_clearance,omitempty"`
}

// Validate checks the identity fields required for scoring.
func (o *Opportunity) Validate() error {
	if o == nil {
		return &ValidationError{Field: "opportunity", Message: "is required"}
	}
	if strings.TrimSpace(o.ID) == "" {
		return &ValidationError{Field: "opportunity.id", Message: "is required"}
	}
	return nil
}

// EstimatedValue returns the ceiling when known, otherwise the floor.
func (o *Opportunity) EstimatedValue() float64 {
	if o.ValueMax > 0 {
		return o.ValueMax
	}
	if o.ValueMin > 0 {
		return o.ValueMin
	}
	return 0
}

// AnnualizedValue spreads the estimated value over the period of performance.
// A missing period counts as one year.
func (o *Opportunity) AnnualizedValue() float64 {
	value := o.EstimatedValue()
	if value <= 0 {
		return 0
	}
	months := o.PeriodOfPerformanceMonths
	if months <= 0 {
		months = 12
	}
	return value * 12 / float64(months)
}

// Agency returns the agency name, falling back to the office name.
func (o *Opportunity) Agency() string {
	if name := strings.TrimSpace(o.ContractingOffice.AgencyName); name != "" {
		return name
	}
	return strings.TrimSpace(o.ContractingOffice.Name)
}

// PlaceSentinel reports whether the place of performance spans many states.
func (o *Opportunity) PlaceSentinel() bool {
	state := o.PlaceOfPerformance.StateCode()
	return strings.HasPrefix(state, PlaceNationwide) || strings.HasPrefix(state, PlaceMultiple) || state == "VARIOUS"
}

func (o *Opportunity) GetStringField(name string) string {
	switch name {
	case OpportunityIDField:
		return o.ID
	case OpportunityAgencyField:
		return o.Agency()
	default:
		return ""
	}
}

func (v *Opportunities) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

func (v *Opportunities) FindByID(id string) *Opportunity {
	for _, o := range v.Items {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (v *Opportunities) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, o := range v.Items {
		ids = append(ids, o.ID)
	}
	return ids
}

// Exclude removes opportunities whose field matches any target, case-insensitively.
// It returns the removed ids and preserves the order of the rest.
func (v *Opportunities) Exclude(field string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return v.ExcludeFunc(func(o *Opportunity) bool {
		_, ok := set[strings.ToLower(strings.TrimSpace(o.GetStringField(field)))]
		return ok
	})
}

// ExcludeFunc removes every opportunity for which drop returns true.
func (v *Opportunities) ExcludeFunc(drop func(*Opportunity) bool) []string {
	var excluded []string
	kept := v.Items[:0]
	for _, o := range v.Items {
		if drop(o) {
			excluded = append(excluded, o.ID)
			continue
		}
		kept = append(kept, o)
	}
	v.Items = kept
	return excluded
}

// ExcludedOpportunities is the on-disk list of opportunity ids to skip.
type ExcludedOpportunities struct {
	Items []*ExcludedOpportunity
}

type ExcludedOpportunity struct {
	ID         string
	Title      string
	Agency     string
	ExcludedAt time.Time
}

func (v *Opportunities) ToExcluded(now time.Time) *ExcludedOpportunities {
	excluded := &ExcludedOpportunities{}
	for _, o := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedOpportunity{
			ID:         o.ID,
			Title:      o.Title,
			Agency:     o.Agency(),
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file yields an empty list.
func GetExcludedFromFile(path string) (*ExcludedOpportunities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedOpportunities{}, nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return &ExcludedOpportunities{}, nil
	}

	var excluded ExcludedOpportunities
	if err := json.Unmarshal(data, &excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

func (v *ExcludedOpportunities) Append(s *ExcludedOpportunities) {
	v.Items = append(v.Items, s.Items...)
}

func (v *ExcludedOpportunities) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, o := range v.Items {
		ids = append(ids, o.ID)
	}
	return ids
}

func (v *ExcludedOpportunities) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SortByID orders the list by id, for deterministic output.
func (v *Opportunities) SortByID() {
	sort.Slice(v.Items, func(i, j int) bool { return v.Items[i].ID < v.Items[j].ID })
}
