package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every package, so entries about the same pair or
// model can be joined in log search.
const (
	FieldProvider     = "ai_provider"
	FieldModel        = "ai_model"
	FieldOrganization = "organization_id"
	FieldOpportunity  = "opportunity_id"
	FieldVerdict      = "verdict"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields drops pairs whose trimmed key or value is empty.
func StringFields(fields ...StringField) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		key, value := strings.TrimSpace(f.Key), strings.TrimSpace(f.Value)
		if key == "" || value == "" {
			continue
		}
		out = append(out, zap.String(key, value))
	}
	return out
}

// WithFields returns logger with fields attached. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// CommonFields names the similarity provider and model.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// PairFields identifies the organization and opportunity an entry is about.
func PairFields(organizationID, opportunityID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldOrganization, Value: organizationID},
		StringField{Key: FieldOpportunity, Value: opportunityID},
	)
}

// OutcomeFields summarizes an evaluation: both scores, their buckets and the verdict.
func OutcomeFields(relevance float64, tier string, risk float64, level string, verdict string) []zap.Field {
	return append([]zap.Field{
		zap.Float64("relevance", relevance),
		zap.Float64("risk", risk),
	}, StringFields(
		StringField{Key: "tier", Value: tier},
		StringField{Key: "risk_level", Value: level},
		StringField{Key: FieldVerdict, Value: verdict},
	)...)
}
