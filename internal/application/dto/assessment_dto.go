package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amara-ai/assessment-service/internal/domain/model"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

// BillRecordDTO is one billing-cycle record supplied with an assessment
// request. A nil PaidDate means the bill is unpaid.
type BillRecordDTO struct {
	BilledAmount  decimal.Decimal `json:"billed_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	ScheduledDate time.Time       `json:"scheduled_date"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
}

// AssessLoanRequest is the input DTO for the AssessLoan use case.
type AssessLoanRequest struct {
	LoanID            string          `json:"loan_id"`
	CustomerID        string          `json:"customer_id"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	DaysPastDue       int             `json:"days_past_due"`
	MaritalStatus     string          `json:"marital_status"`
	DateOfBirth       time.Time       `json:"date_of_birth"`
	Bills             []BillRecordDTO `json:"bills"`
	FieldNotes        string          `json:"field_notes,omitempty"`
	BusinessPhoto     []byte          `json:"business_photo,omitempty"`
	HomePhoto         []byte          `json:"home_photo,omitempty"`
}

// SignalScoreDTO is one constituent signal in the response.
type SignalScoreDTO struct {
	Source        string   `json:"source"`
	Value         float64  `json:"value"`
	BusinessScore *float64 `json:"business_score,omitempty"`
	HomeScore     *float64 `json:"home_score,omitempty"`
}

// AssessmentResponse is the output DTO returned after an assessment.
type AssessmentResponse struct {
	ID             uuid.UUID          `json:"id"`
	LoanID         string             `json:"loan_id"`
	CustomerID     string             `json:"customer_id"`
	FinalScore     float64            `json:"final_score"`
	RiskCategory   string             `json:"risk_category"`
	Recommendation string             `json:"recommendation"`
	Explanation    string             `json:"explanation"`
	WeightsUsed    map[string]float64 `json:"weights_used"`
	MLScore        *SignalScoreDTO    `json:"ml_score,omitempty"`
	VisionScore    *SignalScoreDTO    `json:"vision_score,omitempty"`
	NLPScore       *SignalScoreDTO    `json:"nlp_score,omitempty"`
	ModelVersion   string             `json:"model_version"`
	AssessedAt     time.Time          `json:"assessed_at"`
}

// GetAssessmentRequest is the input DTO for retrieving an assessment.
type GetAssessmentRequest struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(a *model.LoanAssessment) AssessmentResponse {
	return AssessmentResponse{
		ID:             a.ID(),
		LoanID:         a.LoanID(),
		CustomerID:     a.CustomerID(),
		FinalScore:     a.FinalScore(),
		RiskCategory:   a.RiskCategory().String(),
		Recommendation: a.Recommendation().String(),
		Explanation:    a.Explanation(),
		WeightsUsed:    a.WeightsUsed(),
		MLScore:        signalToDTO(a.MLScore()),
		VisionScore:    signalToDTO(a.VisionScore()),
		NLPScore:       signalToDTO(a.NLPScore()),
		ModelVersion:   a.ModelVersion(),
		AssessedAt:     a.AssessedAt(),
	}
}

func signalToDTO(score *valueobject.SignalScore) *SignalScoreDTO {
	if score == nil {
		return nil
	}
	return &SignalScoreDTO{
		Source:        string(score.Source()),
		Value:         score.Value(),
		BusinessScore: score.BusinessScore(),
		HomeScore:     score.HomeScore(),
	}
}
