package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EventTypeAssessmentCompleted is emitted when a loan assessment finishes.
	EventTypeAssessmentCompleted = "assessment.completed"

	// EventTypeHighRiskDetected is emitted when a VERY_HIGH risk category is assigned.
	EventTypeHighRiskDetected = "assessment.high_risk.detected"
)

// AssessmentCompleted is published when a loan risk assessment has been
// fused and persisted.
type AssessmentCompleted struct {
	AssessmentID   uuid.UUID          `json:"assessment_id"`
	LoanID         string             `json:"loan_id"`
	CustomerID     string             `json:"customer_id"`
	FinalScore     float64            `json:"final_score"`
	RiskCategory   string             `json:"risk_category"`
	Recommendation string             `json:"recommendation"`
	WeightsUsed    map[string]float64 `json:"weights_used"`
	ModelVersion   string             `json:"model_version"`
	AssessedAt     time.Time          `json:"assessed_at"`
}

// EventType returns the event type identifier.
func (e AssessmentCompleted) EventType() string {
	return EventTypeAssessmentCompleted
}

// AggregateID returns the assessment ID as the aggregate identifier.
func (e AssessmentCompleted) AggregateID() uuid.UUID {
	return e.AssessmentID
}

// HighRiskDetected is published when a loan is assessed VERY_HIGH, feeding
// downstream collection and portfolio alerting.
type HighRiskDetected struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	LoanID       string    `json:"loan_id"`
	CustomerID   string    `json:"customer_id"`
	FinalScore   float64   `json:"final_score"`
	DetectedAt   time.Time `json:"detected_at"`
}

// EventType returns the event type identifier.
func (e HighRiskDetected) EventType() string {
	return EventTypeHighRiskDetected
}

// AggregateID returns the assessment ID as the aggregate identifier.
func (e HighRiskDetected) AggregateID() uuid.UUID {
	return e.AssessmentID
}
