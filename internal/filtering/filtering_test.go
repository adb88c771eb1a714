package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/bidscout/internal/engine"
	"github.com/spigell/bidscout/internal/procurement"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := fixedNow.AddDate(0, 0, days)
	return &t
}

func opportunities() *procurement.Opportunities {
	return &procurement.Opportunities{Items: []*procurement.Opportunity{
		{ID: "1", Status: procurement.StatusActive, ResponseDeadline: at(10),
			ContractingOffice: procurement.ContractingOffice{AgencyName: "General Services Administration"}},
		{ID: "2", Status: procurement.StatusClosed, ResponseDeadline: at(10)},
		{ID: "3", Status: procurement.StatusActive, ResponseDeadline: at(-1)},
		{ID: "4", Status: procurement.StatusForecast,
			ContractingOffice: procurement.ContractingOffice{AgencyName: "Department of Defense"}},
		{ID: "5", Status: procurement.StatusAwarded},
	}}
}

func TestStatusFilterDropsClosedByDefault(t *testing.T) {
	t.Parallel()

	got, step, err := NewStatus(nil).Apply(context.Background(), opportunities())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step != (Step{Initial: 5, Dropped: 2, Left: 3}) {
		t.Fatalf("unexpected step: %+v", step)
	}
	if ids := got.IDs(); len(ids) != 3 || ids[0] != "1" || ids[1] != "3" || ids[2] != "4" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestStatusFilterAllowedStatuses(t *testing.T) {
	t.Parallel()

	filter := NewStatus([]string{" Forecast ", ""})
	got, step, err := filter.Apply(context.Background(), opportunities())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Left != 1 || got.Items[0].ID != "4" {
		t.Fatalf("expected only forecast opportunity, got %v", got.IDs())
	}

	status := filter.(statusProvider).Status()
	if status.Details["statuses"] != "forecast" {
		t.Fatalf("unexpected status details: %+v", status.Details)
	}
}

func TestExpiredFilter(t *testing.T) {
	t.Parallel()

	filter := NewExpired(func() time.Time { return fixedNow })
	got, step, err := filter.Apply(context.Background(), opportunities())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Dropped != 1 {
		t.Fatalf("expected one expired opportunity, got %+v", step)
	}
	if got.FindByID("3") != nil {
		t.Fatalf("expired opportunity must be removed")
	}
	if got.FindByID("4") == nil {
		t.Fatalf("opportunity without deadline must be kept")
	}
}

func TestExcludedAgencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		agencies []string
		dropped  int
	}{
		{name: "none configured", agencies: nil, dropped: 0},
		{name: "case insensitive", agencies: []string{"department of defense"}, dropped: 1},
		{name: "several", agencies: []string{"Department of Defense", "General Services Administration"}, dropped: 2},
		{name: "unknown", agencies: []string{"NASA"}, dropped: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, step, err := NewExcludedAgencies(tt.agencies).Apply(context.Background(), opportunities())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if step.Dropped != tt.dropped || step.Left != 5-tt.dropped {
				t.Fatalf("unexpected step: %+v", step)
			}
		})
	}
}

func TestExcludeFileFilter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	excluded := (&procurement.Opportunities{Items: []*procurement.Opportunity{{ID: "2"}, {ID: "5"}}}).ToExcluded(fixedNow)
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	got, step, err := NewExcludeFile(path).Apply(context.Background(), opportunities())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 2 || got.FindByID("2") != nil || got.FindByID("5") != nil {
		t.Fatalf("unexpected result: %+v %v", step, got.IDs())
	}
}

func TestExcludeFileFilterBrokenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, err := NewExcludeFile(path).Apply(context.Background(), opportunities()); err == nil {
		t.Fatalf("expected decode error")
	}
}

type failingFilter struct{}

func (failingFilter) Name() string    { return "failing" }
func (failingFilter) Disable(string)  {}
func (failingFilter) IsEnabled() bool { return true }
func (failingFilter) Validate() error { return errors.New("misconfigured") }
func (failingFilter) Apply(_ context.Context, v *procurement.Opportunities) (*procurement.Opportunities, Step, error) {
	return v, Step{}, nil
}

func TestRunFiltersLogsEachStep(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	expired := NewExpired(func() time.Time { return fixedNow })
	f := New([]Filter{NewStatus(nil), expired, NewExcludedAgencies([]string{"Department of Defense"})}, zap.New(core))
	f.DisableByName("expired", "disabled in config")

	got, err := f.RunFilters(context.Background(), opportunities())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ids := got.IDs(); len(ids) != 2 || ids[0] != "1" || ids[1] != "3" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if n := logs.FilterMessage("filter step").Len(); n != 2 {
		t.Fatalf("expected 2 step entries, got %d", n)
	}
	if n := logs.FilterMessage("filter disabled").Len(); n != 1 {
		t.Fatalf("expected 1 disabled entry, got %d", n)
	}

	statuses := f.Describe()
	if len(statuses) != 3 || statuses[1].Enabled || statuses[1].Reason != "disabled in config" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}

func TestRunFiltersValidationError(t *testing.T) {
	t.Parallel()

	_, err := New([]Filter{failingFilter{}}, nil).RunFilters(context.Background(), opportunities())
	if err == nil || err.Error() != "failing: misconfigured" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMinimumRelevance(t *testing.T) {
	t.Parallel()

	evals := []*engine.Evaluation{
		{OpportunityID: "a", Relevance: &procurement.RelevanceScore{OverallScore: 0.9}},
		{OpportunityID: "b", Relevance: &procurement.RelevanceScore{OverallScore: 0.4}},
		{OpportunityID: "c", Relevance: &procurement.RelevanceScore{OverallScore: 0.39}},
	}

	kept, step := MinimumRelevance(evals, 0.4)
	if step != (Step{Initial: 3, Dropped: 1, Left: 2}) {
		t.Fatalf("unexpected step: %+v", step)
	}
	if kept[0].OpportunityID != "a" || kept[1].OpportunityID != "b" {
		t.Fatalf("unexpected order: %+v", kept)
	}

	all, step := MinimumRelevance(evals, 0)
	if len(all) != 3 || step.Dropped != 0 {
		t.Fatalf("zero minimum must keep everything")
	}
}
