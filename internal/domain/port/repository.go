package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/amara-ai/assessment-service/internal/domain/model"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

// AssessmentRepository defines the persistence port for loan assessments.
// Assessments are insert-only; a stored result is never mutated.
type AssessmentRepository interface {
	// Save persists a completed loan assessment.
	Save(ctx context.Context, assessment *model.LoanAssessment) error

	// FindByID retrieves an assessment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*model.LoanAssessment, error)

	// FindByLoanID retrieves the assessment history for a loan, newest first.
	FindByLoanID(ctx context.Context, loanID string, limit, offset int) ([]*model.LoanAssessment, error)
}

// AuditStore persists raw collaborator responses for later review. Audit
// writes are observability, not business state: failures are logged and
// swallowed at the call site.
type AuditStore interface {
	// SaveCollaboratorAudit stores the raw JSON response of one AI
	// collaborator call, keyed by the loan under assessment.
	SaveCollaboratorAudit(ctx context.Context, loanID string, source valueobject.SignalSource, raw []byte) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...interface{}) error
}

// DefaultModel is the versioned, pre-trained default probability model.
// Implementations carry the training-time preprocessing (standardization
// parameters, categorical vocabularies) inside the artifact; callers never
// recompute them. The artifact is loaded once at startup and is read-only,
// so Predict is safe for concurrent use.
type DefaultModel interface {
	// Predict returns the calibrated probability that the loan defaults
	// (days past due reaching 30 at a future observation).
	Predict(ctx context.Context, features valueobject.FeatureVector) (float64, error)

	// Version identifies the model artifact in results and logs.
	Version() string
}

// ScoreResult is the response of a single AI collaborator call.
type ScoreResult struct {
	// Score is the collaborator's rating in [0,1], higher = more favorable.
	Score float64

	// Rationale is the collaborator's free-text justification.
	Rationale string

	// Raw is the unparsed collaborator response, kept for audit.
	Raw []byte
}

// AIScoreClient is the capability interface for the external AI analysis
// collaborators. Both methods fail with *service.CollaboratorError on
// timeout, rate limiting, or malformed output.
type AIScoreClient interface {
	// ScoreImage rates an image against the given instruction on a 0.0-1.0 scale.
	ScoreImage(ctx context.Context, image []byte, instruction string) (ScoreResult, error)

	// ScoreText rates free text against the given instruction on a 0.0-1.0 scale.
	ScoreText(ctx context.Context, text string, instruction string) (ScoreResult, error)
}

// ScoreCache caches collaborator scores by payload hash so re-assessing the
// same photo or notes does not re-bill the collaborator. A cache miss is
// never an error.
type ScoreCache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, score float64)
}
