package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/amara-ai/assessment-service/internal/application/dto"
	"github.com/amara-ai/assessment-service/internal/domain/model"
	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/service"
	"github.com/amara-ai/assessment-service/pkg/observability"
)

// QuickAssess is the ML-only assessment variant: feature derivation and
// default probability estimation, skipping the vision and narrative
// collaborators entirely. The ml signal carries the full weight of 1.0.
type QuickAssess struct {
	repo      port.AssessmentRepository
	publisher port.EventPublisher
	deriver   *service.FeatureDeriver
	estimator *service.ProbabilityEstimator
	fusion    *service.FusionEngine
}

// NewQuickAssess creates a new QuickAssess use case.
func NewQuickAssess(
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	deriver *service.FeatureDeriver,
	estimator *service.ProbabilityEstimator,
	fusion *service.FusionEngine,
) *QuickAssess {
	return &QuickAssess{
		repo:      repo,
		publisher: publisher,
		deriver:   deriver,
		estimator: estimator,
		fusion:    fusion,
	}
}

// Execute scores the loan on the ml signal alone. Photos and notes on the
// request are ignored.
func (uc *QuickAssess) Execute(ctx context.Context, req dto.AssessLoanRequest) (dto.AssessmentResponse, error) {
	assessment, err := model.NewLoanAssessment(
		req.LoanID,
		req.CustomerID,
		req.PrincipalAmount,
		req.OutstandingAmount,
		req.DaysPastDue,
	)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to create assessment: %w", err)
	}

	features, err := uc.deriver.Derive(toSnapshot(req), time.Now().UTC())
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to derive features: %w", err)
	}

	mlScore, err := uc.estimator.Estimate(ctx, features)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to score assessment: %w", err)
	}

	result, err := uc.fusion.Fuse(&mlScore, nil, nil)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to fuse signals: %w", err)
	}

	err = assessment.Complete(
		mlScore,
		nil,
		nil,
		result.FinalScore,
		result.RiskCategory,
		result.Recommendation,
		result.Explanation,
		result.WeightsUsed,
		features.ToMap(),
		uc.estimator.ModelVersion(),
	)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to complete assessment: %w", err)
	}

	if err := uc.repo.Save(ctx, assessment); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	events := assessment.DomainEvents()
	if len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	observability.AssessmentsTotal.WithLabelValues(result.RiskCategory.String()).Inc()

	return dto.FromModel(assessment), nil
}
