package filtering

import (
	"context"
	"time"

	"github.com/spigell/bidscout/internal/procurement"
)

type expiredFilter struct {
	disabled bool
	reason   string
	now      func() time.Time
}

// NewExpired creates a filter that removes opportunities whose response
// deadline has already passed. Opportunities without a deadline are kept.
func NewExpired(now func() time.Time) Filter {
	if now == nil {
		now = time.Now
	}
	return &expiredFilter{now: now}
}

func (f *expiredFilter) Name() string { return "expired" }

func (f *expiredFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *expiredFilter) IsEnabled() bool { return !f.disabled }

func (f *expiredFilter) Validate() error { return nil }

func (f *expiredFilter) Apply(_ context.Context, v *procurement.Opportunities) (*procurement.Opportunities, Step, error) {
	initial := v.Len()
	now := f.now()
	excluded := v.ExcludeFunc(func(o *procurement.Opportunity) bool {
		return o.ResponseDeadline != nil && o.ResponseDeadline.Before(now)
	})

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *expiredFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
