// Package weighted aggregates optional [0,1] components into one score,
// renormalizing weights over the components that are present.
package weighted

import (
	"math"
	"sort"
)

// Weights maps component names to weights.
type Weights map[string]float64

// Merge overlays overrides on defaults. Keys absent from defaults are
// ignored; negative or NaN overrides become 0.
func Merge(defaults Weights, overrides map[string]float64) Weights {
	out := make(Weights, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		if _, ok := defaults[k]; !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		out[k] = v
	}
	return out
}

// Component is one input to Average.
type Component struct {
	Name    string
	Value   float64
	Weight  float64
	Present bool
}

// Of builds a component from an optional value.
func Of(name string, value *float64, weight float64) Component {
	if value == nil || math.IsNaN(*value) {
		return Component{Name: name, Weight: weight}
	}
	return Component{Name: name, Value: *value, Weight: weight, Present: true}
}

func (c Component) contributes() bool {
	return c.Present && c.Weight > 0 && !math.IsNaN(c.Value)
}

// Average returns the weighted mean of present components clamped to [0,1].
// It reports false when no component contributes.
func Average(components ...Component) (float64, bool) {
	var sum, total float64
	for _, c := range components {
		if !c.contributes() {
			continue
		}
		sum += Clamp(c.Value) * c.Weight
		total += c.Weight
	}
	if total <= 0 {
		return 0, false
	}
	return Clamp(sum / total), true
}

// Contribution is the share a component adds to the average.
type Contribution struct {
	Name            string
	Value           float64
	EffectiveWeight float64
	Amount          float64
}

// Contributions lists contributing components by descending amount, ties by name.
func Contributions(components ...Component) []Contribution {
	var total float64
	for _, c := range components {
		if c.contributes() {
			total += c.Weight
		}
	}
	if total <= 0 {
		return nil
	}

	out := make([]Contribution, 0, len(components))
	for _, c := range components {
		if !c.contributes() {
			continue
		}
		w := c.Weight / total
		v := Clamp(c.Value)
		out = append(out, Contribution{Name: c.Name, Value: v, EffectiveWeight: w, Amount: w * v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Missing returns the names of components that were not present.
func Missing(components ...Component) []string {
	var out []string
	for _, c := range components {
		if !c.Present {
			out = append(out, c.Name)
		}
	}
	return out
}

// Clamp bounds v to [0,1]. NaN becomes 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 {
	return &v
}
