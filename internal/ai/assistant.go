package ai

import (
	"context"

	"github.com/spigell/bidscout/internal/procurement"
)

// Similarity is the semantic alignment between an organization capability
// narrative and an opportunity description.
type Similarity struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
	Model  string  `json:"model,omitempty"`
	Raw    string  `json:"-"`
}

// SimilarityOracle computes Similarity outside the engine. Errors make the
// semantic component unavailable; they never fail an evaluation.
type SimilarityOracle interface {
	Similarity(ctx context.Context, org *procurement.Organization, opp *procurement.Opportunity) (*Similarity, error)
}
