package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/bidscout/internal/ai"
	"github.com/spigell/bidscout/internal/logger"
	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	systemInstruction   = "You are a government capture analyst scoring semantic fit. Answer only with the requested JSON."
	defaultMaxLogLength = 200
)

// Oracle asks Gemini for the semantic similarity of an organization and an opportunity.
type Oracle struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewOracle(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Oracle {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Oracle{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (o *Oracle) Similarity(ctx context.Context, org *procurement.Organization, opp *procurement.Opportunity) (*ai.Similarity, error) {
	if org == nil {
		return nil, errors.New("organization is required")
	}
	if opp == nil {
		return nil, errors.New("opportunity is required")
	}
	if strings.TrimSpace(org.CapabilityNarrative) == "" && len(org.CoreCompetencies) == 0 {
		return nil, errors.New("organization has no capability narrative")
	}

	orgJSON, err := json.MarshalIndent(map[string]any{
		"capability_narrative":     org.CapabilityNarrative,
		"core_competencies":        org.CoreCompetencies,
		"past_performance_summary": org.PastPerformanceSummary,
		"classification_codes":     org.ClassificationCodes,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal organization payload: %w", err)
	}

	oppJSON, err := json.MarshalIndent(map[string]any{
		"title":                      opp.Title,
		"description":                opp.Description,
		"classification_code":        opp.ClassificationCode,
		"classification_description": opp.ClassificationDescription,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal opportunity payload: %w", err)
	}

	prompt := buildPrompt(string(orgJSON), string(oppJSON))

	pair := logger.PairFields(org.ID, opp.ID)

	o.logger.Debug("gemini similarity request", append(pair,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, o.maxLogLen)),
	)...)

	raw, err := o.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("gemini similarity response", append(pair,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, o.maxLogLen)),
	)...)

	similarity, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	similarity.Model = o.generator.Model()
	similarity.Raw = raw
	return similarity, nil
}

func buildPrompt(orgJSON, oppJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Organization:\n{{ORGANIZATION_JSON}}\n\nOpportunity:\n{{OPPORTUNITY_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{ORGANIZATION_JSON}}", orgJSON)
	return strings.ReplaceAll(prompt, "{{OPPORTUNITY_JSON}}", oppJSON)
}

func parseResponse(raw string) (*ai.Similarity, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	value, ok := data["similarity"]
	if !ok {
		value = data["score"]
	}
	score := coerceFloat(value)
	if math.IsNaN(score) {
		return nil, errors.New("gemini response has no similarity value")
	}
	// some models answer on a 0-100 scale
	if score > 1 && score <= 100 {
		score /= 100
	}

	return &ai.Similarity{
		Score:  math.Max(0, math.Min(1, score)),
		Reason: coerceString(data["reason"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start > 0 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
