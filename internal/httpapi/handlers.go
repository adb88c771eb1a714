package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spigell/bidscout/internal/engine"
	"github.com/spigell/bidscout/internal/logger"
	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/risk"
	"github.com/spigell/bidscout/internal/storage"
	"github.com/spigell/bidscout/internal/winprob"
)

// pairRequest names an organization and an opportunity either by stored id
// or inline.
type pairRequest struct {
	OrganizationID string                    `json:"organization_id"`
	Organization   *procurement.Organization `json:"organization"`
	OpportunityID  string                    `json:"opportunity_id"`
	Opportunity    *procurement.Opportunity  `json:"opportunity"`

	Weights          map[string]float64 `json:"weights"`
	RelevanceWeights map[string]float64 `json:"relevance_weights"`
	RiskWeights      map[string]float64 `json:"risk_weights"`
	Semantic         *float64           `json:"semantic"`
}

type batchRequest struct {
	OrganizationID string                     `json:"organization_id"`
	Organization   *procurement.Organization  `json:"organization"`
	OpportunityIDs []string                   `json:"opportunity_ids"`
	Opportunities  []*procurement.Opportunity `json:"opportunities"`

	Weights  map[string]float64 `json:"weights"`
	Semantic *float64           `json:"semantic"`
}

// decodeBody goes through the procurement decoder so request bodies accept
// the same aliases and date formats as workspace files.
func decodeBody(r *http.Request, out any) error {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return &procurement.ValidationError{Field: "body", Message: fmt.Sprintf("is not valid JSON: %s", err)}
	}
	if err := procurement.Decode(raw, out); err != nil {
		return &procurement.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err), zap.String("request_id", requestIDFromContext(r.Context())))
	}
	writeError(w, r, status, code, message)
}

func (s *Server) organization(ctx context.Context, id string, inline *procurement.Organization) (*procurement.Organization, error) {
	if inline != nil {
		return inline, inline.Validate()
	}
	if strings.TrimSpace(id) == "" {
		return nil, &procurement.ValidationError{Field: "organization_id", Message: "is required"}
	}
	org, err := s.store.GetOrganization(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("organization %s: %w", id, err)
	}
	return org, nil
}

func (s *Server) opportunity(ctx context.Context, id string, inline *procurement.Opportunity) (*procurement.Opportunity, error) {
	if inline != nil {
		return inline, inline.Validate()
	}
	if strings.TrimSpace(id) == "" {
		return nil, &procurement.ValidationError{Field: "opportunity_id", Message: "is required"}
	}
	opp, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opportunity %s: %w", id, err)
	}
	return opp, nil
}

func (s *Server) pair(ctx context.Context, req *pairRequest) (*procurement.Organization, *procurement.Opportunity, error) {
	org, err := s.organization(ctx, req.OrganizationID, req.Organization)
	if err != nil {
		return nil, nil, err
	}
	opp, err := s.opportunity(ctx, req.OpportunityID, req.Opportunity)
	if err != nil {
		return nil, nil, err
	}
	return org, opp, nil
}

func (s *Server) batch(ctx context.Context, req *batchRequest) (*procurement.Organization, []*procurement.Opportunity, error) {
	org, err := s.organization(ctx, req.OrganizationID, req.Organization)
	if err != nil {
		return nil, nil, err
	}

	opps := make([]*procurement.Opportunity, 0, len(req.OpportunityIDs)+len(req.Opportunities))
	for _, id := range req.OpportunityIDs {
		opp, err := s.opportunity(ctx, id, nil)
		if err != nil {
			return nil, nil, err
		}
		opps = append(opps, opp)
	}
	opps = append(opps, req.Opportunities...)

	if len(opps) == 0 {
		return nil, nil, &procurement.ValidationError{Field: "opportunity_ids", Message: "must not be empty"}
	}
	return org, opps, nil
}

func (s *Server) putOrganization(w http.ResponseWriter, r *http.Request) {
	var org procurement.Organization
	if err := decodeBody(r, &org); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := org.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveOrganization(r.Context(), &org); err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, &org)
}

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.store.GetOrganization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, org)
}

func (s *Server) putOpportunity(w http.ResponseWriter, r *http.Request) {
	var opp procurement.Opportunity
	if err := decodeBody(r, &opp); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := opp.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveOpportunity(r.Context(), &opp); err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, &opp)
}

func (s *Server) getOpportunity(w http.ResponseWriter, r *http.Request) {
	opp, err := s.store.GetOpportunity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, opp)
}

func (s *Server) listOpportunities(w http.ResponseWriter, r *http.Request) {
	opps, err := s.store.ListOpportunities(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if opps == nil {
		opps = []*procurement.Opportunity{}
	}
	writeSuccess(w, http.StatusOK, opps)
}

func (s *Server) calculateScore(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	org, opp, err := s.pair(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	score, err := s.engine.Relevance(r.Context(), org, opp, engine.Options{RelevanceWeights: req.Weights, Semantic: req.Semantic})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveRelevanceScore(r.Context(), score); err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.observeScore(score)

	writeSuccess(w, http.StatusOK, score)
}

func (s *Server) batchScores(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	org, opps, err := s.batch(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	scores, err := s.engine.RelevanceBatch(r.Context(), org, opps, engine.Options{RelevanceWeights: req.Weights, Semantic: req.Semantic})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, score := range scores {
		if err := s.store.SaveRelevanceScore(r.Context(), score); err != nil {
			s.fail(w, r, err)
			return
		}
		s.metrics.observeScore(score)
	}

	writeSuccess(w, http.StatusOK, scores)
}

func (s *Server) listScores(w http.ResponseWriter, r *http.Request) {
	filter := storage.ScoreFilter{}
	query := r.URL.Query()

	if raw := query.Get("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			s.fail(w, r, &procurement.ValidationError{Field: "min_score", Message: "must be a number between 0 and 1"})
			return
		}
		filter.MinScore = v
	}
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.fail(w, r, &procurement.ValidationError{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		filter.Limit = v
	}

	scores, err := s.store.ListRelevanceScores(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, scores)
}

func (s *Server) getScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.store.GetRelevanceScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, score)
}

func (s *Server) assessRisk(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	org, opp, err := s.pair(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	assessment, err := s.engine.Risk(org, opp, engine.Options{RiskWeights: req.Weights})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveRiskAssessment(r.Context(), assessment); err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.observeAssessment(assessment)

	writeSuccess(w, http.StatusOK, assessment)
}

func (s *Server) batchRisk(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	org, opps, err := s.batch(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	assessments, err := s.engine.RiskBatch(r.Context(), org, opps, engine.Options{RiskWeights: req.Weights})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, assessment := range assessments {
		if err := s.store.SaveRiskAssessment(r.Context(), assessment); err != nil {
			s.fail(w, r, err)
			return
		}
		s.metrics.observeAssessment(assessment)
	}

	writeSuccess(w, http.StatusOK, assessments)
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	assessment, err := s.store.GetRiskAssessment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, assessment)
}

func (s *Server) riskSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	assessments, err := s.store.ListRiskAssessments(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, risk.Summarize(id, assessments))
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	org, opp, err := s.pair(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	eval, err := s.engine.Evaluate(r.Context(), org, opp, engine.Options{
		RelevanceWeights: req.RelevanceWeights,
		RiskWeights:      req.RiskWeights,
		Semantic:         req.Semantic,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveRelevanceScore(r.Context(), eval.Relevance); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SaveRiskAssessment(r.Context(), eval.Risk); err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.observeScore(eval.Relevance)
	s.metrics.observeAssessment(eval.Risk)
	s.metrics.observeRecommendation(eval.Recommendation)

	fields := append(logger.PairFields(org.ID, opp.ID), zap.Float64("confidence", eval.Recommendation.Confidence))
	fields = append(fields, logger.OutcomeFields(
		eval.Relevance.OverallScore, string(eval.Relevance.Tier),
		eval.Risk.OverallScore, string(eval.Risk.OverallLevel),
		string(eval.Recommendation.Verdict),
	)...)
	s.logger.Info("recommendation issued", fields...)

	writeSuccess(w, http.StatusOK, eval)
}

func (s *Server) calculateWinProbability(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	org, opp, err := s.pair(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.engine.WinProbability(r.Context(), org, opp, engine.Options{WinWeights: req.Weights})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.observeWin(res)

	writeSuccess(w, http.StatusOK, res)
}

type winBatchResponse struct {
	OrganizationID string            `json:"organization_id"`
	Results        []*winprob.Result `json:"results"`
	Total          int               `json:"total"`
}

func (s *Server) batchWinProbability(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	org, opps, err := s.batch(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	results, err := s.engine.WinProbabilityBatch(r.Context(), org, opps, engine.Options{WinWeights: req.Weights})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, res := range results {
		s.metrics.observeWin(res)
	}

	writeSuccess(w, http.StatusOK, winBatchResponse{OrganizationID: org.ID, Results: results, Total: len(results)})
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type opportunityPage struct {
	Items    []*procurement.Opportunity `json:"items"`
	Total    int                        `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Pages    int                        `json:"pages"`
}

// queryInt reads a positive integer query parameter bounded by upper.
func queryInt(r *http.Request, name string, fallback, upper int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || (upper > 0 && v > upper) {
		msg := "must be a positive integer"
		if upper > 0 {
			msg = fmt.Sprintf("must be an integer between 1 and %d", upper)
		}
		return 0, &procurement.ValidationError{Field: name, Message: msg}
	}
	return v, nil
}

// opportunitiesByCode lists opportunities under a classification prefix.
// status defaults to active; "all" disables the status filter.
func (s *Server) opportunitiesByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !procurement.IsNumericCode(code) {
		s.fail(w, r, &procurement.ValidationError{Field: "code", Message: "must be a numeric classification code"})
		return
	}
	page, err := queryInt(r, "page", 1, 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	size, err := queryInt(r, "page_size", defaultPageSize, maxPageSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	status := procurement.StatusActive
	if raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))); raw == "all" {
		status = ""
	} else if raw != "" {
		status = procurement.Status(raw)
	}

	opps, err := s.store.ListOpportunities(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	matched := procurement.WithClassificationPrefix(opps, code, status)

	from := min((page-1)*size, len(matched))
	to := min(from+size, len(matched))
	writeSuccess(w, http.StatusOK, opportunityPage{
		Items:    matched[from:to],
		Total:    len(matched),
		Page:     page,
		PageSize: size,
		Pages:    (len(matched) + size - 1) / size,
	})
}

func (s *Server) catalogSummary(w http.ResponseWriter, r *http.Request) {
	opps, err := s.store.ListOpportunities(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, procurement.SummarizeCatalog(opps))
}

type classificationMatchesResponse struct {
	OrganizationID string                            `json:"organization_id"`
	Matches        []procurement.ClassificationMatch `json:"matches"`
	Total          int                               `json:"total"`
}

func (s *Server) classificationMatches(w http.ResponseWriter, r *http.Request) {
	org, err := s.store.GetOrganization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opps, err := s.store.ListOpportunities(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	matches, total := procurement.ClassificationMatches(org.ClassificationCodes, opps)
	writeSuccess(w, http.StatusOK, classificationMatchesResponse{OrganizationID: org.ID, Matches: matches, Total: total})
}
