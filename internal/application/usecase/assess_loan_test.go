package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-ai/assessment-service/internal/application/dto"
	"github.com/amara-ai/assessment-service/internal/application/usecase"
	"github.com/amara-ai/assessment-service/internal/domain/model"
	"github.com/amara-ai/assessment-service/internal/domain/port"
	"github.com/amara-ai/assessment-service/internal/domain/service"
	"github.com/amara-ai/assessment-service/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockAssessmentRepository struct {
	savedAssessment  *model.LoanAssessment
	saveFunc         func(ctx context.Context, assessment *model.LoanAssessment) error
	findByIDFunc     func(ctx context.Context, id uuid.UUID) (*model.LoanAssessment, error)
	findByLoanIDFunc func(ctx context.Context, loanID string, limit, offset int) ([]*model.LoanAssessment, error)
	audits           []valueobject.SignalSource
}

func (m *mockAssessmentRepository) Save(ctx context.Context, assessment *model.LoanAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, assessment)
	}
	m.savedAssessment = assessment
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LoanAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAssessmentRepository) FindByLoanID(ctx context.Context, loanID string, limit, offset int) ([]*model.LoanAssessment, error) {
	if m.findByLoanIDFunc != nil {
		return m.findByLoanIDFunc(ctx, loanID, limit, offset)
	}
	return nil, nil
}

func (m *mockAssessmentRepository) SaveCollaboratorAudit(_ context.Context, _ string, source valueobject.SignalSource, _ []byte) error {
	m.audits = append(m.audits, source)
	return nil
}

type mockEventPublisher struct {
	publishedEvents []interface{}
	publishFunc     func(ctx context.Context, events ...interface{}) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...interface{}) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockDefaultModel struct {
	probability float64
	err         error
}

func (m *mockDefaultModel) Predict(_ context.Context, _ valueobject.FeatureVector) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.probability, nil
}

func (m *mockDefaultModel) Version() string {
	return "test-model-v1"
}

type mockAIClient struct {
	imageScore float64
	textScore  float64
	imageErr   error
	textErr    error
	imageCalls int
	textCalls  int
}

func (m *mockAIClient) ScoreImage(_ context.Context, _ []byte, _ string) (port.ScoreResult, error) {
	m.imageCalls++
	if m.imageErr != nil {
		return port.ScoreResult{}, m.imageErr
	}
	return port.ScoreResult{Score: m.imageScore, Raw: []byte(`{}`)}, nil
}

func (m *mockAIClient) ScoreText(_ context.Context, _ string, _ string) (port.ScoreResult, error) {
	m.textCalls++
	if m.textErr != nil {
		return port.ScoreResult{}, m.textErr
	}
	return port.ScoreResult{Score: m.textScore, Raw: []byte(`{}`)}, nil
}

// --- Test fixtures ---

type fixture struct {
	repo      *mockAssessmentRepository
	publisher *mockEventPublisher
	model     *mockDefaultModel
	client    *mockAIClient
	uc        *usecase.AssessLoan
}

func newFixture() *fixture {
	repo := &mockAssessmentRepository{}
	publisher := &mockEventPublisher{}
	defaultModel := &mockDefaultModel{probability: 0.65}
	client := &mockAIClient{imageScore: 0.8, textScore: 0.9}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := usecase.NewAssessLoan(
		repo,
		publisher,
		service.NewFeatureDeriver(),
		service.NewProbabilityEstimator(defaultModel),
		service.NewVisionScorer(client, nil, repo, time.Second, logger),
		service.NewNarrativeScorer(client, nil, repo, time.Second, logger),
		service.NewFusionEngine(),
	)

	return &fixture{repo: repo, publisher: publisher, model: defaultModel, client: client, uc: uc}
}

func validAssessRequest() dto.AssessLoanRequest {
	paidDate := time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC)
	return dto.AssessLoanRequest{
		LoanID:            "LN-2024-0001",
		CustomerID:        "CUST-77",
		PrincipalAmount:   decimal.NewFromInt(200000),
		OutstandingAmount: decimal.NewFromInt(150000),
		DaysPastDue:       0,
		MaritalStatus:     "married",
		DateOfBirth:       time.Date(1990, time.March, 10, 0, 0, 0, 0, time.UTC),
		Bills: []dto.BillRecordDTO{
			{
				BilledAmount:  decimal.NewFromInt(10000),
				PaidAmount:    decimal.NewFromInt(10000),
				ScheduledDate: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
				PaidDate:      &paidDate,
			},
		},
		FieldNotes:    "Customer cooperative, shop well stocked.",
		BusinessPhoto: []byte("business-photo"),
		HomePhoto:     []byte("home-photo"),
	}
}

// --- Tests ---

func TestAssessLoan_Execute(t *testing.T) {
	t.Run("fuses all three signals", func(t *testing.T) {
		f := newFixture()

		resp, err := f.uc.Execute(context.Background(), validAssessRequest())
		require.NoError(t, err)

		// 0.70*0.65 + 0.15*(1-0.8) + 0.15*(1-0.9) = 0.50
		assert.InDelta(t, 0.50, resp.FinalScore, 1e-9)
		assert.Equal(t, "HIGH", resp.RiskCategory)
		assert.Equal(t, "REVIEW", resp.Recommendation)
		assert.Equal(t, "test-model-v1", resp.ModelVersion)

		assert.InDelta(t, 0.70, resp.WeightsUsed["ml"], 1e-9)
		assert.InDelta(t, 0.15, resp.WeightsUsed["vision"], 1e-9)
		assert.InDelta(t, 0.15, resp.WeightsUsed["nlp"], 1e-9)

		require.NotNil(t, resp.MLScore)
		require.NotNil(t, resp.VisionScore)
		require.NotNil(t, resp.NLPScore)
		assert.InDelta(t, 0.8, resp.VisionScore.Value, 1e-9)

		assert.NotNil(t, f.repo.savedAssessment)
		assert.NotEmpty(t, f.publisher.publishedEvents)
		// One audit per photo, one for the notes.
		assert.Len(t, f.repo.audits, 3)
	})

	t.Run("degrades when the vision collaborator fails", func(t *testing.T) {
		f := newFixture()
		f.client.imageErr = fmt.Errorf("rate limited")

		resp, err := f.uc.Execute(context.Background(), validAssessRequest())
		require.NoError(t, err)

		assert.Nil(t, resp.VisionScore)
		require.NotNil(t, resp.NLPScore)
		assert.NotContains(t, resp.WeightsUsed, "vision")
		// Remaining weights rebalance to 0.70/0.85 and 0.15/0.85.
		assert.InDelta(t, 0.8235294118, resp.WeightsUsed["ml"], 1e-9)
		assert.InDelta(t, 0.1764705882, resp.WeightsUsed["nlp"], 1e-9)
	})

	t.Run("ml signal alone when no photos or notes supplied", func(t *testing.T) {
		f := newFixture()

		req := validAssessRequest()
		req.BusinessPhoto = nil
		req.HomePhoto = nil
		req.FieldNotes = ""

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.InDelta(t, 0.65, resp.FinalScore, 1e-9)
		assert.Equal(t, "HIGH", resp.RiskCategory)
		assert.Len(t, resp.WeightsUsed, 1)
		assert.InDelta(t, 1.0, resp.WeightsUsed["ml"], 1e-9)
		assert.Zero(t, f.client.imageCalls)
		assert.Zero(t, f.client.textCalls)
	})

	t.Run("fails with invalid request data", func(t *testing.T) {
		f := newFixture()

		req := validAssessRequest()
		req.LoanID = ""

		_, err := f.uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create assessment")
	})

	t.Run("fails with unrecognized marital status", func(t *testing.T) {
		f := newFixture()

		req := validAssessRequest()
		req.MaritalStatus = "engaged"

		_, err := f.uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to derive features")
	})

	t.Run("fails when the model cannot score", func(t *testing.T) {
		f := newFixture()
		f.model.err = fmt.Errorf("artifact corrupt")

		_, err := f.uc.Execute(context.Background(), validAssessRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to score assessment")
		assert.Nil(t, f.repo.savedAssessment)
	})

	t.Run("fails when repository save fails", func(t *testing.T) {
		f := newFixture()
		f.repo.saveFunc = func(_ context.Context, _ *model.LoanAssessment) error {
			return fmt.Errorf("database unavailable")
		}

		_, err := f.uc.Execute(context.Background(), validAssessRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save assessment")
	})

	t.Run("fails when event publishing fails", func(t *testing.T) {
		f := newFixture()
		f.publisher.publishFunc = func(_ context.Context, _ ...interface{}) error {
			return fmt.Errorf("kafka unavailable")
		}

		_, err := f.uc.Execute(context.Background(), validAssessRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish events")
	})

	t.Run("very high risk publishes two events", func(t *testing.T) {
		f := newFixture()
		f.model.probability = 0.95
		f.client.imageScore = 0.1
		f.client.textScore = 0.1

		resp, err := f.uc.Execute(context.Background(), validAssessRequest())
		require.NoError(t, err)

		assert.Equal(t, "VERY_HIGH", resp.RiskCategory)
		assert.Equal(t, "REJECT", resp.Recommendation)
		assert.Len(t, f.publisher.publishedEvents, 2)
	})
}
