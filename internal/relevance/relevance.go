// Package relevance scores how well an opportunity fits an organization.
package relevance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/weighted"
)

// DefaultWeights are used for every key a caller does not override.
var DefaultWeights = weighted.Weights{
	procurement.ComponentTaxonomy:        0.25,
	procurement.ComponentSemantic:        0.30,
	procurement.ComponentGeographic:      0.15,
	procurement.ComponentSize:            0.15,
	procurement.ComponentPastPerformance: 0.15,
}

// Input carries the optional per-call parameters.
type Input struct {
	Weights  map[string]float64
	Semantic *float64
}

type Scorer struct {
	Now   func() time.Time
	NewID func() string
}

func New() *Scorer {
	return &Scorer{Now: time.Now, NewID: uuid.NewString}
}

// Score computes the relevance of opp for org. Only missing identity fields fail.
func (s *Scorer) Score(org *procurement.Organization, opp *procurement.Opportunity, in Input) (*procurement.RelevanceScore, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}
	if err := opp.Validate(); err != nil {
		return nil, err
	}

	weights := weighted.Merge(DefaultWeights, in.Weights)
	components := procurement.RelevanceComponents{
		Taxonomy:        Taxonomy(org.ClassificationCodes, opp.ClassificationCode),
		Semantic:        Semantic(in.Semantic),
		Geographic:      Geographic(org, opp),
		Size:            Size(org, opp),
		PastPerformance: PastPerformance(org, opp),
	}
	parts := Parts(components, weights)

	overall, _ := weighted.Average(parts...)
	tier := procurement.TierFor(overall)

	return &procurement.RelevanceScore{
		ID:             s.NewID(),
		OrganizationID: org.ID,
		OpportunityID:  opp.ID,
		OverallScore:   overall,
		Tier:           tier,
		Components:     components,
		Weights:        weights,
		Explanation:    Explain(overall, tier, parts),
		ComputedAt:     s.Now().UTC(),
		ModelVersion:   procurement.ModelVersion,
	}, nil
}

// Parts maps the components onto weighted inputs in a fixed order.
func Parts(c procurement.RelevanceComponents, w weighted.Weights) []weighted.Component {
	return []weighted.Component{
		weighted.Of(procurement.ComponentTaxonomy, c.Taxonomy, w[procurement.ComponentTaxonomy]),
		weighted.Of(procurement.ComponentSemantic, c.Semantic, w[procurement.ComponentSemantic]),
		weighted.Of(procurement.ComponentGeographic, c.Geographic, w[procurement.ComponentGeographic]),
		weighted.Of(procurement.ComponentSize, c.Size, w[procurement.ComponentSize]),
		weighted.Of(procurement.ComponentPastPerformance, c.PastPerformance, w[procurement.ComponentPastPerformance]),
	}
}

// Explain renders the contributions in descending order of weight times value.
func Explain(overall float64, tier procurement.RelevanceTier, parts []weighted.Component) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s match (%.2f).", tier, overall)

	contributions := weighted.Contributions(parts...)
	if len(contributions) == 0 {
		b.WriteString(" No component could be computed.")
	} else {
		items := make([]string, 0, len(contributions))
		for _, c := range contributions {
			items = append(items, fmt.Sprintf("%s %.2f (weight %.2f)", strings.ReplaceAll(c.Name, "_", " "), c.Value, c.EffectiveWeight))
		}
		fmt.Fprintf(&b, " Contributions: %s.", strings.Join(items, ", "))
	}

	if missing := weighted.Missing(parts...); len(missing) > 0 {
		for i := range missing {
			missing[i] = strings.ReplaceAll(missing[i], "_", " ")
		}
		fmt.Fprintf(&b, " Unavailable: %s.", strings.Join(missing, ", "))
	}
	return b.String()
}
