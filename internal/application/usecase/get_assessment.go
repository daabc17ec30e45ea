package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/amara-ai/assessment-service/internal/application/dto"
	"github.com/amara-ai/assessment-service/internal/domain/port"
)

// ErrAssessmentNotFound is returned when the requested assessment does not exist.
var ErrAssessmentNotFound = errors.New("assessment not found")

// GetAssessment retrieves stored assessments.
type GetAssessment struct {
	repo port.AssessmentRepository
}

// NewGetAssessment creates a new GetAssessment use case.
func NewGetAssessment(repo port.AssessmentRepository) *GetAssessment {
	return &GetAssessment{repo: repo}
}

// Execute retrieves an assessment by its unique identifier.
func (uc *GetAssessment) Execute(ctx context.Context, assessmentID uuid.UUID) (dto.AssessmentResponse, error) {
	assessment, err := uc.repo.FindByID(ctx, assessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to find assessment: %w", err)
	}
	if assessment == nil {
		return dto.AssessmentResponse{}, fmt.Errorf("assessment %s: %w", assessmentID, ErrAssessmentNotFound)
	}

	return dto.FromModel(assessment), nil
}

// ByLoan retrieves the assessment history for a loan, newest first.
func (uc *GetAssessment) ByLoan(ctx context.Context, loanID string, limit, offset int) ([]dto.AssessmentResponse, error) {
	if loanID == "" {
		return nil, fmt.Errorf("loan ID is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	assessments, err := uc.repo.FindByLoanID(ctx, loanID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	responses := make([]dto.AssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, dto.FromModel(assessment))
	}

	return responses, nil
}
