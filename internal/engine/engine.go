// Package engine runs eligibility, relevance, risk and recommendation for an
// organization against one or many opportunities.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/bidscout/internal/ai"
	"github.com/spigell/bidscout/internal/eligibility"
	"github.com/spigell/bidscout/internal/logger"
	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/recommend"
	"github.com/spigell/bidscout/internal/relevance"
	"github.com/spigell/bidscout/internal/risk"
	"github.com/spigell/bidscout/internal/winprob"
)

const DefaultConcurrency = 8

// Options are per-call overrides.
type Options struct {
	RelevanceWeights map[string]float64 `json:"relevance_weights,omitempty"`
	RiskWeights      map[string]float64 `json:"risk_weights,omitempty"`
	WinWeights       map[string]float64 `json:"win_weights,omitempty"`
	// Semantic, when set, is used instead of asking the oracle.
	Semantic *float64 `json:"semantic,omitempty"`
}

// Evaluation is the full outcome for one pair.
type Evaluation struct {
	OrganizationID string                        `json:"organization_id"`
	OpportunityID  string                        `json:"opportunity_id"`
	Title          string                        `json:"title,omitempty"`
	Eligible       bool                          `json:"eligible"`
	QualifiedBy    []procurement.SetAside        `json:"qualified_by,omitempty"`
	Relevance      *procurement.RelevanceScore   `json:"relevance"`
	Risk           *procurement.RiskAssessment   `json:"risk"`
	Recommendation procurement.BidRecommendation `json:"recommendation"`
	Similarity     *ai.Similarity                `json:"similarity,omitempty"`
}

type Config struct {
	// Oracle is optional. Without it the semantic component is unavailable
	// unless Options.Semantic is given.
	Oracle      ai.SimilarityOracle
	Concurrency int
	Logger      *zap.Logger
	Now         func() time.Time
	NewID       func() string
}

type Engine struct {
	scorer      *relevance.Scorer
	assessor    *risk.Assessor
	oracle      ai.SimilarityOracle
	concurrency int
	logger      *zap.Logger
}

func New(cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Engine{
		scorer:      &relevance.Scorer{Now: cfg.Now, NewID: cfg.NewID},
		assessor:    &risk.Assessor{Now: cfg.Now, NewID: cfg.NewID},
		oracle:      cfg.Oracle,
		concurrency: cfg.Concurrency,
		logger:      logger.WithFields(cfg.Logger),
	}
}

// Relevance scores one pair, consulting the oracle for the semantic component.
func (e *Engine) Relevance(ctx context.Context, org *procurement.Organization, opp *procurement.Opportunity, opts Options) (*procurement.RelevanceScore, error) {
	if err := validate(org, opp); err != nil {
		return nil, err
	}
	semantic, _ := e.semantic(ctx, org, opp, opts)
	return e.scorer.Score(org, opp, relevance.Input{Weights: opts.RelevanceWeights, Semantic: semantic})
}

// Risk assesses one pair.
func (e *Engine) Risk(org *procurement.Organization, opp *procurement.Opportunity, opts Options) (*procurement.RiskAssessment, error) {
	return e.assessor.Assess(org, opp, risk.Input{Weights: opts.RiskWeights})
}

// Evaluate runs the whole pipeline for one pair. Ineligible opportunities are
// still scored; ineligibility shows up as eligibility risk.
func (e *Engine) Evaluate(ctx context.Context, org *procurement.Organization, opp *procurement.Opportunity, opts Options) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(org, opp); err != nil {
		return nil, err
	}

	semantic, similarity := e.semantic(ctx, org, opp, opts)

	score, err := e.scorer.Score(org, opp, relevance.Input{Weights: opts.RelevanceWeights, Semantic: semantic})
	if err != nil {
		return nil, err
	}
	assessment, err := e.assessor.Assess(org, opp, risk.Input{Weights: opts.RiskWeights})
	if err != nil {
		return nil, err
	}

	eval := &Evaluation{
		OrganizationID: org.ID,
		OpportunityID:  opp.ID,
		Title:          opp.Title,
		Eligible:       eligibility.IsEligible(org.SetAsides, opp.SetAside),
		QualifiedBy:    eligibility.Qualifying(org.SetAsides, opp.SetAside),
		Relevance:      score,
		Risk:           assessment,
		Recommendation: recommend.Recommend(score.OverallScore, assessment.OverallScore),
		Similarity:     similarity,
	}

	fields := append(logger.PairFields(org.ID, opp.ID), zap.Bool("eligible", eval.Eligible))
	fields = append(fields, logger.OutcomeFields(
		score.OverallScore, string(score.Tier),
		assessment.OverallScore, string(assessment.OverallLevel),
		string(eval.Recommendation.Verdict),
	)...)
	e.logger.Debug("opportunity evaluated", fields...)

	return eval, nil
}

// EvaluateBatch evaluates opps concurrently and returns the evaluations by
// descending relevance, ties broken by opportunity id. The first error
// cancels the rest.
func (e *Engine) EvaluateBatch(ctx context.Context, org *procurement.Organization, opps []*procurement.Opportunity, opts Options) ([]*Evaluation, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}

	results, err := parallel(ctx, e.concurrency, opps, func(ctx context.Context, opp *procurement.Opportunity) (*Evaluation, error) {
		return e.Evaluate(ctx, org, opp, opts)
	})
	if err != nil {
		return nil, err
	}

	SortByRelevance(results)
	return results, nil
}

// RelevanceBatch scores opps concurrently, ordered like EvaluateBatch.
func (e *Engine) RelevanceBatch(ctx context.Context, org *procurement.Organization, opps []*procurement.Opportunity, opts Options) ([]*procurement.RelevanceScore, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}

	scores, err := parallel(ctx, e.concurrency, opps, func(ctx context.Context, opp *procurement.Opportunity) (*procurement.RelevanceScore, error) {
		return e.Relevance(ctx, org, opp, opts)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].OverallScore != scores[j].OverallScore {
			return scores[i].OverallScore > scores[j].OverallScore
		}
		return scores[i].OpportunityID < scores[j].OpportunityID
	})
	return scores, nil
}

// RiskBatch assesses opps concurrently and returns the least risky first,
// ties broken by opportunity id.
func (e *Engine) RiskBatch(ctx context.Context, org *procurement.Organization, opps []*procurement.Opportunity, opts Options) ([]*procurement.RiskAssessment, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}

	assessments, err := parallel(ctx, e.concurrency, opps, func(_ context.Context, opp *procurement.Opportunity) (*procurement.RiskAssessment, error) {
		return e.Risk(org, opp, opts)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].OverallScore != assessments[j].OverallScore {
			return assessments[i].OverallScore < assessments[j].OverallScore
		}
		return assessments[i].OpportunityID < assessments[j].OpportunityID
	})
	return assessments, nil
}

// WinProbability estimates the chance of winning one pair.
func (e *Engine) WinProbability(ctx context.Context, org *procurement.Organization, opp *procurement.Opportunity, opts Options) (*winprob.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := winprob.Estimate(org, opp, opts.WinWeights)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("win probability estimated", append(logger.PairFields(org.ID, opp.ID),
		zap.Float64("win_probability", res.WinProbability),
		zap.String("pursuit", string(res.Pursuit)),
	)...)
	return res, nil
}

// WinProbabilityBatch estimates opps concurrently and returns the most
// winnable first, ties broken by opportunity id.
func (e *Engine) WinProbabilityBatch(ctx context.Context, org *procurement.Organization, opps []*procurement.Opportunity, opts Options) ([]*winprob.Result, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}

	results, err := parallel(ctx, e.concurrency, opps, func(ctx context.Context, opp *procurement.Opportunity) (*winprob.Result, error) {
		return e.WinProbability(ctx, org, opp, opts)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].WinProbability != results[j].WinProbability {
			return results[i].WinProbability > results[j].WinProbability
		}
		return results[i].OpportunityID < results[j].OpportunityID
	})
	return results, nil
}

func parallel[T any](ctx context.Context, limit int, opps []*procurement.Opportunity, fn func(context.Context, *procurement.Opportunity) (T, error)) ([]T, error) {
	results := make([]T, len(opps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, opp := range opps {
		g.Go(func() error {
			res, err := fn(gctx, opp)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SortByRelevance orders evaluations by descending relevance, then opportunity id.
func SortByRelevance(evals []*Evaluation) {
	sort.SliceStable(evals, func(i, j int) bool {
		a, b := evals[i].Relevance.OverallScore, evals[j].Relevance.OverallScore
		if a != b {
			return a > b
		}
		return evals[i].OpportunityID < evals[j].OpportunityID
	})
}

func (e *Engine) semantic(ctx context.Context, org *procurement.Organization, opp *procurement.Opportunity, opts Options) (*float64, *ai.Similarity) {
	if opts.Semantic != nil {
		return opts.Semantic, nil
	}
	if e.oracle == nil {
		return nil, nil
	}

	similarity, err := e.oracle.Similarity(ctx, org, opp)
	if err != nil {
		e.logger.Warn("semantic similarity unavailable", append(logger.PairFields(org.ID, opp.ID), zap.Error(err))...)
		return nil, nil
	}
	score := similarity.Score
	return &score, similarity
}

func validate(org *procurement.Organization, opp *procurement.Opportunity) error {
	if err := org.Validate(); err != nil {
		return err
	}
	return opp.Validate()
}
