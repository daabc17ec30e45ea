package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/amara-ai/assessment-service/internal/domain/model"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

// AssessmentRepository implements port.AssessmentRepository and
// port.AuditStore using PostgreSQL. Assessments are insert-only.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// Save persists a completed loan assessment.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *model.LoanAssessment) error {
	weightsJSON, err := json.Marshal(assessment.WeightsUsed())
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	featuresJSON, err := json.Marshal(assessment.Features())
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	query := `
		INSERT INTO loan_assessments (
			id, loan_id, customer_id,
			principal_amount, outstanding_amount, days_past_due,
			ml_score, vision_score, vision_business_score, vision_home_score, nlp_score,
			final_score, risk_category, recommendation, explanation,
			weights_used, features, model_version,
			assessed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	var mlScore *float64
	if s := assessment.MLScore(); s != nil {
		v := s.Value()
		mlScore = &v
	}

	var visionScore, visionBusiness, visionHome *float64
	if s := assessment.VisionScore(); s != nil {
		v := s.Value()
		visionScore = &v
		visionBusiness = s.BusinessScore()
		visionHome = s.HomeScore()
	}

	var nlpScore *float64
	if s := assessment.NLPScore(); s != nil {
		v := s.Value()
		nlpScore = &v
	}

	_, err = r.pool.Exec(ctx, query,
		assessment.ID(),
		assessment.LoanID(),
		assessment.CustomerID(),
		assessment.PrincipalAmount(),
		assessment.OutstandingAmount(),
		assessment.DaysPastDue(),
		mlScore,
		visionScore,
		visionBusiness,
		visionHome,
		nlpScore,
		assessment.FinalScore(),
		assessment.RiskCategory().String(),
		assessment.Recommendation().String(),
		assessment.Explanation(),
		weightsJSON,
		featuresJSON,
		assessment.ModelVersion(),
		assessment.AssessedAt(),
		assessment.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// SaveCollaboratorAudit stores one raw AI collaborator response.
func (r *AssessmentRepository) SaveCollaboratorAudit(ctx context.Context, loanID string, source valueobject.SignalSource, raw []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO collaborator_audits (id, loan_id, source, response, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), loanID, string(source), raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save collaborator audit: %w", err)
	}
	return nil
}

const assessmentColumns = `
	id, loan_id, customer_id,
	principal_amount, outstanding_amount, days_past_due,
	ml_score, vision_score, vision_business_score, vision_home_score, nlp_score,
	final_score, risk_category, recommendation, explanation,
	weights_used, features, model_version,
	assessed_at, created_at
`

// FindByID retrieves an assessment by its unique identifier. Returns
// (nil, nil) when no assessment exists.
func (r *AssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LoanAssessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM loan_assessments WHERE id = $1`

	assessment, err := scanAssessment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return assessment, nil
}

// FindByLoanID retrieves the assessment history for a loan, newest first.
func (r *AssessmentRepository) FindByLoanID(ctx context.Context, loanID string, limit, offset int) ([]*model.LoanAssessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM loan_assessments
		WHERE loan_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, loanID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*model.LoanAssessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}

	return assessments, nil
}

func scanAssessment(row pgx.Row) (*model.LoanAssessment, error) {
	var (
		id                uuid.UUID
		loanID            string
		customerID        string
		principalAmount   decimal.Decimal
		outstandingAmount decimal.Decimal
		daysPastDue       int
		mlScore           *float64
		visionScore       *float64
		visionBusiness    *float64
		visionHome        *float64
		nlpScore          *float64
		finalScore        float64
		riskCategoryStr   string
		recommendationStr string
		explanation       string
		weightsJSON       []byte
		featuresJSON      []byte
		modelVersion      string
		assessedAt        time.Time
		createdAt         time.Time
	)

	err := row.Scan(
		&id, &loanID, &customerID,
		&principalAmount, &outstandingAmount, &daysPastDue,
		&mlScore, &visionScore, &visionBusiness, &visionHome, &nlpScore,
		&finalScore, &riskCategoryStr, &recommendationStr, &explanation,
		&weightsJSON, &featuresJSON, &modelVersion,
		&assessedAt, &createdAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}

	riskCategory, err := valueobject.RiskCategoryFromString(riskCategoryStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk category: %w", err)
	}
	recommendation, err := valueobject.RecommendationFromString(recommendationStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recommendation: %w", err)
	}

	var weightsUsed map[string]float64
	if err := json.Unmarshal(weightsJSON, &weightsUsed); err != nil {
		return nil, fmt.Errorf("failed to parse weights: %w", err)
	}
	var features map[string]interface{}
	if err := json.Unmarshal(featuresJSON, &features); err != nil {
		return nil, fmt.Errorf("failed to parse features: %w", err)
	}

	ml, err := optionalSignal(valueobject.SignalSourceML, mlScore)
	if err != nil {
		return nil, err
	}
	nlp, err := optionalSignal(valueobject.SignalSourceNLP, nlpScore)
	if err != nil {
		return nil, err
	}

	var vision *valueobject.SignalScore
	if visionScore != nil {
		var score valueobject.SignalScore
		if visionBusiness != nil || visionHome != nil {
			score, err = valueobject.NewVisionSignalScore(visionBusiness, visionHome)
		} else {
			score, err = valueobject.NewSignalScore(valueobject.SignalSourceVision, *visionScore)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild vision signal: %w", err)
		}
		vision = &score
	}

	return model.Reconstruct(
		id, loanID, customerID,
		principalAmount, outstandingAmount, daysPastDue,
		ml, vision, nlp,
		finalScore, riskCategory, recommendation, explanation,
		weightsUsed, features, modelVersion,
		assessedAt, createdAt,
	), nil
}

func optionalSignal(source valueobject.SignalSource, value *float64) (*valueobject.SignalScore, error) {
	if value == nil {
		return nil, nil
	}
	score, err := valueobject.NewSignalScore(source, *value)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild %s signal: %w", source, err)
	}
	return &score, nil
}
