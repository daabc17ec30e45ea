package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amara-ai/assessment-service/internal/domain/event"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

const weightSumTolerance = 1e-9

// LoanAssessment is the aggregate root for loan default risk assessments.
// It is created per request, completed exactly once with the fusion outcome,
// and immutable after that.
type LoanAssessment struct {
	assessedAt        time.Time
	createdAt         time.Time
	explanation       string
	loanID            string
	customerID        string
	modelVersion      string
	principalAmount   decimal.Decimal
	outstandingAmount decimal.Decimal
	riskCategory      valueobject.RiskCategory
	recommendation    valueobject.Recommendation
	mlScore           *valueobject.SignalScore
	visionScore       *valueobject.SignalScore
	nlpScore          *valueobject.SignalScore
	weightsUsed       map[string]float64
	features          map[string]interface{}
	domainEvents      []interface{}
	finalScore        float64
	daysPastDue       int
	id                uuid.UUID
}

// NewLoanAssessment creates a new assessment for a loan. The assessment
// starts unscored; call Complete() with the fusion outcome.
func NewLoanAssessment(
	loanID string,
	customerID string,
	principalAmount decimal.Decimal,
	outstandingAmount decimal.Decimal,
	daysPastDue int,
) (*LoanAssessment, error) {
	if loanID == "" {
		return nil, fmt.Errorf("loan ID is required")
	}
	if customerID == "" {
		return nil, fmt.Errorf("customer ID is required")
	}
	if !principalAmount.IsPositive() {
		return nil, fmt.Errorf("principal amount must be positive")
	}
	if outstandingAmount.IsNegative() {
		return nil, fmt.Errorf("outstanding amount must not be negative")
	}
	if daysPastDue < 0 {
		return nil, fmt.Errorf("days past due must not be negative")
	}

	return &LoanAssessment{
		id:                uuid.New(),
		loanID:            loanID,
		customerID:        customerID,
		principalAmount:   principalAmount,
		outstandingAmount: outstandingAmount,
		daysPastDue:       daysPastDue,
		weightsUsed:       make(map[string]float64),
		createdAt:         time.Now().UTC(),
	}, nil
}

// Complete applies the fusion outcome to the assessment. The ML signal is
// required; vision and nlp may be nil when absent or dropped. Weights must
// cover exactly the present signals and sum to 1.0.
func (a *LoanAssessment) Complete(
	mlScore valueobject.SignalScore,
	visionScore *valueobject.SignalScore,
	nlpScore *valueobject.SignalScore,
	finalScore float64,
	riskCategory valueobject.RiskCategory,
	recommendation valueobject.Recommendation,
	explanation string,
	weightsUsed map[string]float64,
	features map[string]interface{},
	modelVersion string,
) error {
	if !a.assessedAt.IsZero() {
		return fmt.Errorf("assessment %s already completed", a.id)
	}
	if finalScore < 0 || finalScore > 1 {
		return fmt.Errorf("final score must be in [0,1], got %f", finalScore)
	}
	if riskCategory.IsZero() || recommendation.IsZero() {
		return fmt.Errorf("risk category and recommendation are required")
	}

	var weightSum float64
	for _, w := range weightsUsed {
		weightSum += w
	}
	if math.Abs(weightSum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %f", weightSum)
	}

	a.mlScore = &mlScore
	a.visionScore = visionScore
	a.nlpScore = nlpScore
	a.finalScore = finalScore
	a.riskCategory = riskCategory
	a.recommendation = recommendation
	a.explanation = explanation
	a.weightsUsed = weightsUsed
	a.features = features
	a.modelVersion = modelVersion
	a.assessedAt = time.Now().UTC()

	a.domainEvents = append(a.domainEvents, event.AssessmentCompleted{
		AssessmentID:   a.id,
		LoanID:         a.loanID,
		CustomerID:     a.customerID,
		FinalScore:     a.finalScore,
		RiskCategory:   a.riskCategory.String(),
		Recommendation: a.recommendation.String(),
		WeightsUsed:    a.weightsUsed,
		ModelVersion:   a.modelVersion,
		AssessedAt:     a.assessedAt,
	})

	if a.riskCategory.Equal(valueobject.RiskCategoryVeryHigh) {
		a.domainEvents = append(a.domainEvents, event.HighRiskDetected{
			AssessmentID: a.id,
			LoanID:       a.loanID,
			CustomerID:   a.customerID,
			FinalScore:   a.finalScore,
			DetectedAt:   a.assessedAt,
		})
	}

	return nil
}

// Reconstruct rebuilds a LoanAssessment from persisted data (no validation, no events).
func Reconstruct(
	id uuid.UUID,
	loanID, customerID string,
	principalAmount, outstandingAmount decimal.Decimal,
	daysPastDue int,
	mlScore, visionScore, nlpScore *valueobject.SignalScore,
	finalScore float64,
	riskCategory valueobject.RiskCategory,
	recommendation valueobject.Recommendation,
	explanation string,
	weightsUsed map[string]float64,
	features map[string]interface{},
	modelVersion string,
	assessedAt, createdAt time.Time,
) *LoanAssessment {
	return &LoanAssessment{
		id:                id,
		loanID:            loanID,
		customerID:        customerID,
		principalAmount:   principalAmount,
		outstandingAmount: outstandingAmount,
		daysPastDue:       daysPastDue,
		mlScore:           mlScore,
		visionScore:       visionScore,
		nlpScore:          nlpScore,
		finalScore:        finalScore,
		riskCategory:      riskCategory,
		recommendation:    recommendation,
		explanation:       explanation,
		weightsUsed:       weightsUsed,
		features:          features,
		modelVersion:      modelVersion,
		assessedAt:        assessedAt,
		createdAt:         createdAt,
	}
}

// --- Accessors ---

func (a *LoanAssessment) ID() uuid.UUID                              { return a.id }
func (a *LoanAssessment) LoanID() string                             { return a.loanID }
func (a *LoanAssessment) CustomerID() string                         { return a.customerID }
func (a *LoanAssessment) PrincipalAmount() decimal.Decimal           { return a.principalAmount }
func (a *LoanAssessment) OutstandingAmount() decimal.Decimal         { return a.outstandingAmount }
func (a *LoanAssessment) DaysPastDue() int                           { return a.daysPastDue }
func (a *LoanAssessment) MLScore() *valueobject.SignalScore          { return a.mlScore }
func (a *LoanAssessment) VisionScore() *valueobject.SignalScore      { return a.visionScore }
func (a *LoanAssessment) NLPScore() *valueobject.SignalScore         { return a.nlpScore }
func (a *LoanAssessment) FinalScore() float64                        { return a.finalScore }
func (a *LoanAssessment) RiskCategory() valueobject.RiskCategory     { return a.riskCategory }
func (a *LoanAssessment) Recommendation() valueobject.Recommendation { return a.recommendation }
func (a *LoanAssessment) Explanation() string                        { return a.explanation }
func (a *LoanAssessment) WeightsUsed() map[string]float64            { return a.weightsUsed }
func (a *LoanAssessment) Features() map[string]interface{}           { return a.features }
func (a *LoanAssessment) ModelVersion() string                       { return a.modelVersion }
func (a *LoanAssessment) AssessedAt() time.Time                      { return a.assessedAt }
func (a *LoanAssessment) CreatedAt() time.Time                       { return a.createdAt }

// DomainEvents returns all accumulated domain events and clears them.
func (a *LoanAssessment) DomainEvents() []interface{} {
	evts := a.domainEvents
	a.domainEvents = nil
	return evts
}
