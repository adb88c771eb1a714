package procurement

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorkspace(t *testing.T) {
	t.Parallel()

	ws, err := LoadWorkspace(filepath.Join("testdata", "workspace.yaml"))
	require.NoError(t, err)

	org := ws.Organization
	require.NotNil(t, org)
	assert.Equal(t, "org-acme", org.ID)
	assert.Equal(t, []string{"541512", "541519"}, org.ClassificationCodes)
	assert.Equal(t, []SetAside{SetAsideSB, SetAside8A, SetAsideSDVOSB}, org.SetAsides)
	assert.Equal(t, "VA", org.Location.StateCode())
	assert.Equal(t, 60, org.EmployeeCount)
	assert.Equal(t, 12_000_000.0, org.AnnualRevenue)
	require.Len(t, org.Certifications, 2)
	require.NotNil(t, org.Certifications[0].ExpiresAt)
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), org.Certifications[0].ExpiresAt.UTC())
	assert.Nil(t, org.Certifications[1].ExpiresAt)
	assert.True(t, org.HasClearance("secret"))
	assert.False(t, org.HasClearance("Top Secret"))

	require.Len(t, ws.Opportunities, 2)
	first := ws.Opportunities[0]
	assert.Equal(t, "541512", first.ClassificationCode)
	assert.Equal(t, SetAsideSB, first.SetAside)
	assert.Equal(t, StatusActive, first.Status)
	assert.Equal(t, "General Services Administration", first.Agency())
	require.NotNil(t, first.PostedAt)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), first.PostedAt.UTC())
	require.NotNil(t, first.ResponseDeadline)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), first.ResponseDeadline.UTC())
	assert.Equal(t, 1_000_000.0, first.AnnualizedValue())

	second := ws.Opportunities[1]
	assert.Equal(t, SetAsideNone, second.SetAside)
	assert.True(t, second.PlaceSentinel())
	assert.Equal(t, "Army Contracting Command", second.Agency())
	assert.Equal(t, time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC), second.ResponseDeadline.UTC())
	assert.Equal(t, StatusPresolicitation, second.Status)

	list := ws.List()
	list.Items = list.Items[:1]
	assert.Len(t, ws.Opportunities, 2, "List must not alias the workspace")
}

func TestParseWorkspaceJSON(t *testing.T) {
	t.Parallel()

	ws, err := ParseWorkspace([]byte(`{
		"organization": {"id": "org", "set_asides": ["WOSB"]},
		"opportunities": [{"id": "a", "value_max": 100, "response_deadline": "2026-05-01T00:00:00Z"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, []SetAside{SetAsideWOSB}, ws.Organization.SetAsides)
	assert.Equal(t, 100.0, ws.Opportunities[0].EstimatedValue())
}

func TestParseWorkspaceValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{name: "missing organization", doc: "opportunities: []", field: "organization"},
		{name: "organization without id", doc: "organization: {name: x}", field: "organization.id"},
		{name: "opportunity without id", doc: "organization: {id: o}\nopportunities: [{title: x}]", field: "opportunity.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorkspace([]byte(tt.doc))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseWorkspaceErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseWorkspace([]byte("organization: [unclosed"))
	assert.Error(t, err)

	_, err = ParseWorkspace([]byte("organization: {id: o}\nopportunities: [{id: a, response_deadline: soon}]"))
	assert.ErrorContains(t, err, `unsupported time "soon"`)

	_, err = LoadWorkspace(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want time.Time
	}{
		{raw: "2026-03-02T12:00:00Z", want: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)},
		{raw: "2026-03-02T12:00:00+02:00", want: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
		{raw: " 2026-03-02 ", want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{raw: "2026-03-02T12:00:00", want: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.raw, got)
	}

	_, err := ParseTime("03/02/2026")
	assert.Error(t, err)
}

func TestLoadExampleWorkspace(t *testing.T) {
	t.Parallel()

	ws, err := LoadWorkspace(filepath.Join("..", "..", "examples", "workspace.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "org-northwind", ws.Organization.ID)
	assert.Equal(t, []SetAside{SetAsideSB, SetAsideSDVOSB}, ws.Organization.SetAsides)

	opps := ws.List()
	require.Equal(t, 3, opps.Len())
	assert.Equal(t, SetAsideSDVOSB, opps.Items[0].SetAside)
	assert.Equal(t, "VA", opps.Items[0].PlaceOfPerformance.StateCode())
	assert.True(t, opps.Items[1].PlaceSentinel())
	assert.True(t, opps.Items[1].SetAside.IsOpen())
	assert.Equal(t, StatusPresolicitation, opps.Items[1].Status)
	assert.Equal(t, "General Services Administration", opps.Items[2].Agency())
}
