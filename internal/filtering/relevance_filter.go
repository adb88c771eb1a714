package filtering

import "github.com/spigell/bidscout/internal/engine"

// MinimumRelevance drops evaluations scoring below min. It runs after
// scoring, so it works on evaluations rather than opportunities.
func MinimumRelevance(evals []*engine.Evaluation, min float64) ([]*engine.Evaluation, Step) {
	initial := len(evals)
	if min <= 0 {
		return evals, Step{Initial: initial, Dropped: 0, Left: initial}
	}

	kept := make([]*engine.Evaluation, 0, len(evals))
	for _, eval := range evals {
		if eval.Relevance.OverallScore >= min {
			kept = append(kept, eval)
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}
