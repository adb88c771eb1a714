package filtering

import (
	"context"
	"sort"
	"strings"

	"github.com/spigell/bidscout/internal/procurement"
)

type statusFilter struct {
	disabled bool
	reason   string
	allowed  map[procurement.Status]struct{}
}

// NewStatus creates a filter that keeps only opportunities in the allowed
// statuses. With no statuses configured it drops every closed one.
func NewStatus(statuses []string) Filter {
	allowed := make(map[procurement.Status]struct{}, len(statuses))
	for _, s := range statuses {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			allowed[procurement.Status(s)] = struct{}{}
		}
	}
	return &statusFilter{allowed: allowed}
}

func (f *statusFilter) Name() string { return "status" }

func (f *statusFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *statusFilter) IsEnabled() bool { return !f.disabled }

func (f *statusFilter) Validate() error { return nil }

func (f *statusFilter) Apply(_ context.Context, v *procurement.Opportunities) (*procurement.Opportunities, Step, error) {
	initial := v.Len()
	excluded := v.ExcludeFunc(func(o *procurement.Opportunity) bool {
		if len(f.allowed) == 0 {
			return !o.Status.Open()
		}
		_, ok := f.allowed[o.Status]
		return !ok
	})

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *statusFilter) Status() Status {
	details := map[string]string{}
	if len(f.allowed) > 0 {
		names := make([]string, 0, len(f.allowed))
		for s := range f.allowed {
			names = append(names, string(s))
		}
		sort.Strings(names)
		details["statuses"] = strings.Join(names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
