package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-ai/assessment-service/internal/domain/event"
	"github.com/amara-ai/assessment-service/internal/domain/model"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

func newAssessment(t *testing.T) *model.LoanAssessment {
	t.Helper()
	assessment, err := model.NewLoanAssessment(
		"LN-2024-0001",
		"CUST-77",
		decimal.NewFromInt(200000),
		decimal.NewFromInt(150000),
		5,
	)
	require.NoError(t, err)
	return assessment
}

func mlScore(t *testing.T, value float64) valueobject.SignalScore {
	t.Helper()
	score, err := valueobject.NewSignalScore(valueobject.SignalSourceML, value)
	require.NoError(t, err)
	return score
}

func TestNewLoanAssessment(t *testing.T) {
	t.Run("creates an unscored assessment", func(t *testing.T) {
		assessment := newAssessment(t)

		assert.NotEqual(t, uuid.Nil, assessment.ID())
		assert.Equal(t, "LN-2024-0001", assessment.LoanID())
		assert.Equal(t, "CUST-77", assessment.CustomerID())
		assert.True(t, assessment.AssessedAt().IsZero())
		assert.Empty(t, assessment.DomainEvents())
	})

	t.Run("requires a loan ID", func(t *testing.T) {
		_, err := model.NewLoanAssessment("", "CUST-77", decimal.NewFromInt(1000), decimal.Zero, 0)
		require.Error(t, err)
	})

	t.Run("requires a customer ID", func(t *testing.T) {
		_, err := model.NewLoanAssessment("LN-1", "", decimal.NewFromInt(1000), decimal.Zero, 0)
		require.Error(t, err)
	})

	t.Run("rejects non-positive principal", func(t *testing.T) {
		_, err := model.NewLoanAssessment("LN-1", "CUST-77", decimal.Zero, decimal.Zero, 0)
		require.Error(t, err)
	})

	t.Run("rejects negative outstanding", func(t *testing.T) {
		_, err := model.NewLoanAssessment("LN-1", "CUST-77", decimal.NewFromInt(1000), decimal.NewFromInt(-1), 0)
		require.Error(t, err)
	})

	t.Run("rejects negative days past due", func(t *testing.T) {
		_, err := model.NewLoanAssessment("LN-1", "CUST-77", decimal.NewFromInt(1000), decimal.Zero, -3)
		require.Error(t, err)
	})
}

func TestLoanAssessment_Complete(t *testing.T) {
	t.Run("applies the fusion outcome and emits a completion event", func(t *testing.T) {
		assessment := newAssessment(t)

		err := assessment.Complete(
			mlScore(t, 0.42),
			nil,
			nil,
			0.42,
			valueobject.RiskCategoryMedium,
			valueobject.RecommendationReview,
			"explanation",
			map[string]float64{"ml": 1.0},
			map[string]interface{}{"late_ratio": 0.5},
			"v3",
		)
		require.NoError(t, err)

		assert.Equal(t, 0.42, assessment.FinalScore())
		assert.True(t, assessment.RiskCategory().Equal(valueobject.RiskCategoryMedium))
		assert.Equal(t, valueobject.RecommendationReview, assessment.Recommendation())
		assert.Equal(t, "v3", assessment.ModelVersion())
		assert.False(t, assessment.AssessedAt().IsZero())

		events := assessment.DomainEvents()
		require.Len(t, events, 1)
		completed, ok := events[0].(event.AssessmentCompleted)
		require.True(t, ok)
		assert.Equal(t, assessment.ID(), completed.AssessmentID)
		assert.Equal(t, "MEDIUM", completed.RiskCategory)

		// Events are drained on read.
		assert.Empty(t, assessment.DomainEvents())
	})

	t.Run("very high risk additionally emits a high-risk event", func(t *testing.T) {
		assessment := newAssessment(t)

		err := assessment.Complete(
			mlScore(t, 0.85),
			nil,
			nil,
			0.85,
			valueobject.RiskCategoryVeryHigh,
			valueobject.RecommendationReject,
			"explanation",
			map[string]float64{"ml": 1.0},
			nil,
			"v3",
		)
		require.NoError(t, err)

		events := assessment.DomainEvents()
		require.Len(t, events, 2)
		_, ok := events[1].(event.HighRiskDetected)
		assert.True(t, ok)
	})

	t.Run("rejects double completion", func(t *testing.T) {
		assessment := newAssessment(t)
		weights := map[string]float64{"ml": 1.0}

		require.NoError(t, assessment.Complete(
			mlScore(t, 0.1), nil, nil, 0.1,
			valueobject.RiskCategoryLow, valueobject.RecommendationApprove,
			"explanation", weights, nil, "v3",
		))

		err := assessment.Complete(
			mlScore(t, 0.2), nil, nil, 0.2,
			valueobject.RiskCategoryLow, valueobject.RecommendationApprove,
			"explanation", weights, nil, "v3",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already completed")
	})

	t.Run("rejects out-of-range final score", func(t *testing.T) {
		assessment := newAssessment(t)

		err := assessment.Complete(
			mlScore(t, 0.5), nil, nil, 1.2,
			valueobject.RiskCategoryHigh, valueobject.RecommendationReview,
			"explanation", map[string]float64{"ml": 1.0}, nil, "v3",
		)
		require.Error(t, err)
	})

	t.Run("rejects weights that do not sum to one", func(t *testing.T) {
		assessment := newAssessment(t)

		err := assessment.Complete(
			mlScore(t, 0.5), nil, nil, 0.5,
			valueobject.RiskCategoryHigh, valueobject.RecommendationReview,
			"explanation", map[string]float64{"ml": 0.7, "vision": 0.15}, nil, "v3",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weights must sum to 1.0")
	})

	t.Run("rejects unset category or recommendation", func(t *testing.T) {
		assessment := newAssessment(t)

		err := assessment.Complete(
			mlScore(t, 0.5), nil, nil, 0.5,
			valueobject.RiskCategory{}, valueobject.RecommendationReview,
			"explanation", map[string]float64{"ml": 1.0}, nil, "v3",
		)
		require.Error(t, err)
	})
}

func TestReconstruct(t *testing.T) {
	original := newAssessment(t)
	require.NoError(t, original.Complete(
		mlScore(t, 0.42), nil, nil, 0.42,
		valueobject.RiskCategoryMedium, valueobject.RecommendationReview,
		"explanation", map[string]float64{"ml": 1.0},
		map[string]interface{}{"paid_ratio": 1.0}, "v3",
	))

	ml := original.MLScore()
	rebuilt := model.Reconstruct(
		original.ID(), original.LoanID(), original.CustomerID(),
		original.PrincipalAmount(), original.OutstandingAmount(), original.DaysPastDue(),
		ml, nil, nil,
		original.FinalScore(), original.RiskCategory(), original.Recommendation(),
		original.Explanation(), original.WeightsUsed(), original.Features(),
		original.ModelVersion(), original.AssessedAt(), original.CreatedAt(),
	)

	assert.Equal(t, original.ID(), rebuilt.ID())
	assert.Equal(t, original.FinalScore(), rebuilt.FinalScore())
	assert.Equal(t, original.Explanation(), rebuilt.Explanation())
	// Reconstruction never re-emits events.
	assert.Empty(t, rebuilt.DomainEvents())
}
