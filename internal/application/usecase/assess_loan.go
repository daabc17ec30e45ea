package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amara-ai/assessment-service/internal/application/dto"
	"github.com/amara-ai/assessment-service/internal/domain/model"
	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/service"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
	"github.com/amara-ai/assessment-service/pkg/observability"
)

// AssessLoan is the use case for a full three-signal loan risk assessment.
type AssessLoan struct {
	repo      port.AssessmentRepository
	publisher port.EventPublisher
	deriver   *service.FeatureDeriver
	estimator *service.ProbabilityEstimator
	vision    *service.VisionScorer
	narrative *service.NarrativeScorer
	fusion    *service.FusionEngine
}

// NewAssessLoan creates a new AssessLoan use case.
func NewAssessLoan(
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	deriver *service.FeatureDeriver,
	estimator *service.ProbabilityEstimator,
	vision *service.VisionScorer,
	narrative *service.NarrativeScorer,
	fusion *service.FusionEngine,
) *AssessLoan {
	return &AssessLoan{
		repo:      repo,
		publisher: publisher,
		deriver:   deriver,
		estimator: estimator,
		vision:    vision,
		narrative: narrative,
		fusion:    fusion,
	}
}

// Execute derives features, produces the three signals concurrently, fuses
// whatever is available, and persists and publishes the result.
//
// The ml signal is required: its failure aborts the request and cancels the
// in-flight collaborator calls. Vision and nlp failures only degrade the
// result (fewer signals, rebalanced weights).
func (uc *AssessLoan) Execute(ctx context.Context, req dto.AssessLoanRequest) (dto.AssessmentResponse, error) {
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

	// The three signal producers are independent once the feature vector is
	// ready: run them concurrently and join before fusion.
	signalCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg          sync.WaitGroup
		mlScore     valueobject.SignalScore
		mlErr       error
		visionScore *valueobject.SignalScore
		nlpScore    *valueobject.SignalScore
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		mlScore, mlErr = uc.estimator.Estimate(signalCtx, features)
		if mlErr != nil {
			// ML is required; stop waiting on the collaborators.
			cancel()
		}
	}()

	go func() {
		defer wg.Done()
		visionScore = uc.vision.Score(signalCtx, req.LoanID, service.PhotoSet{
			Business: req.BusinessPhoto,
			Home:     req.HomePhoto,
		})
	}()

	go func() {
		defer wg.Done()
		nlpScore = uc.narrative.Score(signalCtx, req.LoanID, req.FieldNotes)
	}()

	wg.Wait()

	if mlErr != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to score assessment: %w", mlErr)
	}
	if err := ctx.Err(); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("assessment cancelled: %w", err)
	}

	return uc.complete(ctx, assessment, mlScore, visionScore, nlpScore, features)
}

// complete fuses the available signals, applies the outcome to the
// aggregate, persists it, and publishes the domain events.
func (uc *AssessLoan) complete(
	ctx context.Context,
	assessment *model.LoanAssessment,
	mlScore valueobject.SignalScore,
	visionScore, nlpScore *valueobject.SignalScore,
	features valueobject.FeatureVector,
) (dto.AssessmentResponse, error) {
	result, err := uc.fusion.Fuse(&mlScore, visionScore, nlpScore)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to fuse signals: %w", err)
	}

	err = assessment.Complete(
		mlScore,
		visionScore,
		nlpScore,
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

func toSnapshot(req dto.AssessLoanRequest) service.LoanSnapshot {
	bills := make([]service.BillRecord, 0, len(req.Bills))
	for _, bill := range req.Bills {
		bills = append(bills, service.BillRecord{
			BilledAmount:  bill.BilledAmount,
			PaidAmount:    bill.PaidAmount,
			ScheduledDate: bill.ScheduledDate,
			PaidDate:      bill.PaidDate,
		})
	}

	return service.LoanSnapshot{
		PrincipalAmount:   req.PrincipalAmount,
		OutstandingAmount: req.OutstandingAmount,
		DaysPastDue:       req.DaysPastDue,
		MaritalStatus:     req.MaritalStatus,
		DateOfBirth:       req.DateOfBirth,
		Bills:             bills,
	}
}
