package filtering

import (
	"context"
	"strings"

	"github.com/spigell/bidscout/internal/procurement"
)

type agenciesFilter struct {
	agencies []string
}

// NewExcludedAgencies creates a filter that removes opportunities issued by the given agencies.
func NewExcludedAgencies(agencies []string) Filter {
	return &agenciesFilter{
		agencies: agencies,
	}
}

func (f *agenciesFilter) Name() string { return "agencies" }

func (f *agenciesFilter) Disable(string) {}

func (f *agenciesFilter) IsEnabled() bool { return true }

func (f *agenciesFilter) Validate() error { return nil }

func (f *agenciesFilter) Apply(_ context.Context, v *procurement.Opportunities) (*procurement.Opportunities, Step, error) {
	initial := v.Len()
	if len(f.agencies) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Exclude(procurement.OpportunityAgencyField, f.agencies)

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *agenciesFilter) Status() Status {
	details := map[string]string{}
	if len(f.agencies) > 0 {
		details["agencies"] = strings.Join(f.agencies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
