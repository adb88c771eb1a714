package procurement

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Workspace is the input of a scoring run: one bidder and its candidate opportunities.
type Workspace struct {
	Organization  *Organization  `json:"organization"`
	Opportunities []*Opportunity `json:"opportunities"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC3339 timestamps and plain dates.
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time %q", raw)
}

func stringToTimeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	return ParseTime(data.(string))
}

func setAsideHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to {
	case reflect.TypeOf(SetAside("")):
		return ParseSetAside(data.(string)), nil
	case reflect.TypeOf(Status("")):
		return Status(strings.ToLower(strings.TrimSpace(data.(string)))), nil
	}
	return data, nil
}

// Decode maps a generic document (as produced by YAML, JSON or viper) onto a
// typed record using the json tags.
func Decode(input interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToTimeHook, setAsideHook),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// ParseWorkspace decodes a YAML or JSON workspace document.
func ParseWorkspace(data []byte) (*Workspace, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}

	ws := &Workspace{}
	if err := Decode(raw, ws); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	if err := ws.Organization.Validate(); err != nil {
		return nil, err
	}
	for i, opp := range ws.Opportunities {
		if err := opp.Validate(); err != nil {
			return nil, fmt.Errorf("opportunity #%d: %w", i, err)
		}
	}
	return ws, nil
}

// LoadWorkspace reads a workspace file from disk.
func LoadWorkspace(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace %q: %w", path, err)
	}
	return ParseWorkspace(data)
}

// List wraps the workspace opportunities in a collection.
func (w *Workspace) List() *Opportunities {
	items := make([]*Opportunity, len(w.Opportunities))
	copy(items, w.Opportunities)
	return &Opportunities{Items: items}
}
