package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/bidscout/internal/procurement"
)

func TestRecommend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		relevance  float64
		risk       float64
		want       procurement.Verdict
		confidence float64
	}{
		{name: "strong and safe", relevance: 0.92, risk: 0.10, want: procurement.VerdictBid, confidence: 0.90},
		{name: "bid boundaries inclusive", relevance: 0.70, risk: 0.30, want: procurement.VerdictBid, confidence: 0.90},
		{name: "good but riskier", relevance: 0.75, risk: 0.45, want: procurement.VerdictConditionalBid, confidence: 0.70},
		{name: "conditional boundaries inclusive", relevance: 0.60, risk: 0.50, want: procurement.VerdictConditionalBid, confidence: 0.70},
		{name: "poor fit", relevance: 0.39, risk: 0.10, want: procurement.VerdictNoBid, confidence: 0.85},
		{name: "too risky", relevance: 0.95, risk: 0.71, want: procurement.VerdictNoBid, confidence: 0.85},
		{name: "middle ground", relevance: 0.50, risk: 0.60, want: procurement.VerdictReviewRequired, confidence: 0.50},
		{name: "fair fit low risk", relevance: 0.45, risk: 0.10, want: procurement.VerdictReviewRequired, confidence: 0.50},
		{name: "risk exactly at no bid limit", relevance: 0.65, risk: 0.70, want: procurement.VerdictReviewRequired, confidence: 0.50},
		{name: "nan relevance", relevance: math.NaN(), risk: 0.0, want: procurement.VerdictNoBid, confidence: 0.85},
		{name: "nan risk", relevance: 1, risk: math.NaN(), want: procurement.VerdictNoBid, confidence: 0.85},
		{name: "out of range inputs clamp", relevance: 3, risk: -2, want: procurement.VerdictBid, confidence: 0.90},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Recommend(tc.relevance, tc.risk)
			assert.Equal(t, tc.want, got.Verdict)
			assert.Equal(t, tc.confidence, got.Confidence)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}

func TestRecommendIsTotal(t *testing.T) {
	t.Parallel()

	valid := map[procurement.Verdict]bool{
		procurement.VerdictBid:            true,
		procurement.VerdictNoBid:          true,
		procurement.VerdictConditionalBid: true,
		procurement.VerdictReviewRequired: true,
	}
	for i := 0; i <= 100; i++ {
		for j := 0; j <= 100; j++ {
			got := Recommend(float64(i)/100, float64(j)/100)
			require.True(t, valid[got.Verdict], "%d/%d", i, j)
			if got.Verdict == procurement.VerdictConditionalBid {
				require.NotEmpty(t, got.Conditions, "%d/%d", i, j)
			} else {
				require.Empty(t, got.Conditions, "%d/%d", i, j)
			}
		}
	}
}

func TestRecommendNoBidNamesBothThresholds(t *testing.T) {
	t.Parallel()

	got := Recommend(0.1, 0.9)
	assert.Equal(t, []string{
		"relevance 0.10 is below the 0.40 minimum",
		"risk 0.90 exceeds the 0.70 maximum",
	}, got.Reasoning)
}
