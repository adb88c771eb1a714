package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/bidscout/internal/procurement"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes opportunities listed in the exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{
		path: path,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, v *procurement.Opportunities) (*procurement.Opportunities, Step, error) {
	initial := v.Len()
	if f.path == "" {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded, err := procurement.GetExcludedFromFile(f.path)
	if err != nil {
		return v, Step{}, fmt.Errorf("getting excluded opportunities from file: %w", err)
	}

	removed := v.Exclude(procurement.OpportunityIDField, excluded.IDs())

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
