package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

func TestRiskCategoryFromScore_Bands(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected valueobject.RiskCategory
	}{
		{"zero is low", 0.0, valueobject.RiskCategoryLow},
		{"just under medium", 0.29, valueobject.RiskCategoryLow},
		{"medium lower edge inclusive", 0.3, valueobject.RiskCategoryMedium},
		{"mid medium", 0.4, valueobject.RiskCategoryMedium},
		{"high lower edge inclusive", 0.5, valueobject.RiskCategoryHigh},
		{"mid high", 0.65, valueobject.RiskCategoryHigh},
		{"very high lower edge inclusive", 0.7, valueobject.RiskCategoryVeryHigh},
		{"maximum", 1.0, valueobject.RiskCategoryVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, valueobject.RiskCategoryFromScore(tt.score).Equal(tt.expected))
		})
	}
}

func TestRiskCategoryFromString(t *testing.T) {
	t.Run("accepts all categories", func(t *testing.T) {
		for _, s := range []string{"LOW", "MEDIUM", "HIGH", "VERY_HIGH"} {
			category, err := valueobject.RiskCategoryFromString(s)
			require.NoError(t, err)
			assert.Equal(t, s, category.String())
		}
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		_, err := valueobject.RiskCategoryFromString("CRITICAL")
		require.Error(t, err)
	})

	t.Run("rejects lowercase", func(t *testing.T) {
		_, err := valueobject.RiskCategoryFromString("low")
		require.Error(t, err)
	})
}

func TestRiskCategory_IsZero(t *testing.T) {
	var zero valueobject.RiskCategory
	assert.True(t, zero.IsZero())
	assert.False(t, valueobject.RiskCategoryLow.IsZero())
}

func TestRecommendationFromCategory(t *testing.T) {
	tests := []struct {
		category valueobject.RiskCategory
		expected valueobject.Recommendation
	}{
		{valueobject.RiskCategoryLow, valueobject.RecommendationApprove},
		{valueobject.RiskCategoryMedium, valueobject.RecommendationReview},
		{valueobject.RiskCategoryHigh, valueobject.RecommendationReview},
		{valueobject.RiskCategoryVeryHigh, valueobject.RecommendationReject},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, valueobject.RecommendationFromCategory(tt.category))
		})
	}
}

func TestRecommendationFromString(t *testing.T) {
	t.Run("accepts all recommendations", func(t *testing.T) {
		for _, s := range []string{"APPROVE", "REVIEW", "REJECT"} {
			rec, err := valueobject.RecommendationFromString(s)
			require.NoError(t, err)
			assert.Equal(t, s, rec.String())
		}
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		_, err := valueobject.RecommendationFromString("ESCALATE")
		require.Error(t, err)
	})
}
