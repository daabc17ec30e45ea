package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amara-ai/assessment-service/internal/application/dto"
	"github.com/amara-ai/assessment-service/internal/application/usecase"
	"github.com/amara-ai/assessment-service/internal/domain/service"
)

const dateLayout = "2006-01-02"

// Compile-time assertion that AssessmentServiceHandler implements AssessmentServiceServer.
var _ AssessmentServiceServer = (*AssessmentServiceHandler)(nil)

// AssessmentServiceHandler implements the gRPC AssessmentServiceServer interface.
type AssessmentServiceHandler struct {
	UnimplementedAssessmentServiceServer
	assessLoan    *usecase.AssessLoan
	quickAssess   *usecase.QuickAssess
	getAssessment *usecase.GetAssessment
	logger        *slog.Logger
}

// NewAssessmentServiceHandler creates a new gRPC handler.
func NewAssessmentServiceHandler(
	assessLoan *usecase.AssessLoan,
	quickAssess *usecase.QuickAssess,
	getAssessment *usecase.GetAssessment,
	logger *slog.Logger,
) *AssessmentServiceHandler {
	return &AssessmentServiceHandler{
		assessLoan:    assessLoan,
		quickAssess:   quickAssess,
		getAssessment: getAssessment,
		logger:        logger,
	}
}

// Proto-aligned request/response message types.

// BillRecordMsg represents the proto BillRecord message. Dates use the
// YYYY-MM-DD form; an empty paid_date means the bill is unpaid.
type BillRecordMsg struct {
	BilledAmount  string `json:"billed_amount"`
	PaidAmount    string `json:"paid_amount"`
	ScheduledDate string `json:"scheduled_date"`
	PaidDate      string `json:"paid_date,omitempty"`
}

// AssessLoanRequest represents the proto AssessLoanRequest message.
type AssessLoanRequest struct {
	LoanID            string           `json:"loan_id"`
	CustomerID        string           `json:"customer_id"`
	PrincipalAmount   string           `json:"principal_amount"`
	OutstandingAmount string           `json:"outstanding_amount"`
	DaysPastDue       int32            `json:"days_past_due"`
	MaritalStatus     string           `json:"marital_status"`
	DateOfBirth       string           `json:"date_of_birth"`
	Bills             []*BillRecordMsg `json:"bills"`
	FieldNotes        string           `json:"field_notes,omitempty"`
	BusinessPhoto     []byte           `json:"business_photo,omitempty"`
	HomePhoto         []byte           `json:"home_photo,omitempty"`
}

// SignalScoreMsg represents the proto SignalScore message.
type SignalScoreMsg struct {
	Source        string   `json:"source"`
	Value         float64  `json:"value"`
	BusinessScore *float64 `json:"business_score,omitempty"`
	HomeScore     *float64 `json:"home_score,omitempty"`
}

// LoanAssessmentMsg represents the proto LoanAssessment message.
type LoanAssessmentMsg struct {
	ID             string             `json:"id"`
	LoanID         string             `json:"loan_id"`
	CustomerID     string             `json:"customer_id"`
	FinalScore     float64            `json:"final_score"`
	RiskCategory   string             `json:"risk_category"`
	Recommendation string             `json:"recommendation"`
	Explanation    string             `json:"explanation"`
	WeightsUsed    map[string]float64 `json:"weights_used"`
	MLScore        *SignalScoreMsg    `json:"ml_score,omitempty"`
	VisionScore    *SignalScoreMsg    `json:"vision_score,omitempty"`
	NLPScore       *SignalScoreMsg    `json:"nlp_score,omitempty"`
	ModelVersion   string             `json:"model_version"`
	AssessedAt     string             `json:"assessed_at"`
}

// AssessLoanResponse represents the proto AssessLoanResponse message.
type AssessLoanResponse struct {
	Assessment *LoanAssessmentMsg `json:"assessment"`
}

// GetAssessmentRequest represents the proto GetAssessmentRequest message.
type GetAssessmentRequest struct {
	ID string `json:"id"`
}

// GetAssessmentResponse represents the proto GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *LoanAssessmentMsg `json:"assessment"`
}

// ListAssessmentsRequest represents the proto ListAssessmentsRequest message.
type ListAssessmentsRequest struct {
	LoanID string `json:"loan_id"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

// ListAssessmentsResponse represents the proto ListAssessmentsResponse message.
type ListAssessmentsResponse struct {
	Assessments []*LoanAssessmentMsg `json:"assessments"`
}

// AssessLoan handles a full assessment request.
func (h *AssessmentServiceHandler) AssessLoan(ctx context.Context, req *AssessLoanRequest) (*AssessLoanResponse, error) {
	input, err := toAssessRequest(req)
	if err != nil {
		return nil, err
	}

	h.logger.Info("assessing loan",
		slog.String("loan_id", input.LoanID),
		slog.String("customer_id", input.CustomerID),
	)

	result, err := h.assessLoan.Execute(ctx, input)
	if err != nil {
		return nil, h.mapError("assess loan", input.LoanID, err)
	}

	return &AssessLoanResponse{Assessment: toAssessmentMsg(result)}, nil
}

// QuickAssess handles an ML-only assessment request. Photos and field
// notes on the request are ignored.
func (h *AssessmentServiceHandler) QuickAssess(ctx context.Context, req *AssessLoanRequest) (*AssessLoanResponse, error) {
	input, err := toAssessRequest(req)
	if err != nil {
		return nil, err
	}

	h.logger.Info("quick-assessing loan",
		slog.String("loan_id", input.LoanID),
	)

	result, err := h.quickAssess.Execute(ctx, input)
	if err != nil {
		return nil, h.mapError("quick assess", input.LoanID, err)
	}

	return &AssessLoanResponse{Assessment: toAssessmentMsg(result)}, nil
}

// GetAssessment handles a get assessment request.
func (h *AssessmentServiceHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	assessmentID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getAssessment.Execute(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, usecase.ErrAssessmentNotFound) {
			return nil, status.Errorf(codes.NotFound, "assessment %s not found", assessmentID)
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &GetAssessmentResponse{Assessment: toAssessmentMsg(result)}, nil
}

// ListAssessments handles an assessment history request for a loan.
func (h *AssessmentServiceHandler) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	results, err := h.getAssessment.ByLoan(ctx, req.LoanID, int(req.Limit), int(req.Offset))
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	messages := make([]*LoanAssessmentMsg, 0, len(results))
	for _, result := range results {
		messages = append(messages, toAssessmentMsg(result))
	}

	return &ListAssessmentsResponse{Assessments: messages}, nil
}

func (h *AssessmentServiceHandler) mapError(operation, loanID string, err error) error {
	var invalidInput *service.InvalidInputError
	if errors.As(err, &invalidInput) {
		return status.Error(codes.InvalidArgument, invalidInput.Error())
	}

	var modelUnavailable *service.ModelUnavailableError
	if errors.As(err, &modelUnavailable) {
		return status.Error(codes.Unavailable, "scoring model unavailable")
	}

	var scoringUnavailable *service.ScoringUnavailableError
	if errors.As(err, &scoringUnavailable) {
		return status.Error(codes.Unavailable, "scoring unavailable")
	}

	h.logger.Error("failed to "+operation,
		slog.String("loan_id", loanID),
		slog.String("error", err.Error()),
	)
	return status.Error(codes.Internal, "internal error")
}

func toAssessRequest(req *AssessLoanRequest) (dto.AssessLoanRequest, error) {
	if req == nil {
		return dto.AssessLoanRequest{}, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.LoanID == "" {
		return dto.AssessLoanRequest{}, status.Error(codes.InvalidArgument, "loan_id is required")
	}
	if req.CustomerID == "" {
		return dto.AssessLoanRequest{}, status.Error(codes.InvalidArgument, "customer_id is required")
	}

	principal, err := decimal.NewFromString(req.PrincipalAmount)
	if err != nil {
		return dto.AssessLoanRequest{}, status.Errorf(codes.InvalidArgument, "invalid principal_amount: %v", err)
	}
	outstanding, err := decimal.NewFromString(req.OutstandingAmount)
	if err != nil {
		return dto.AssessLoanRequest{}, status.Errorf(codes.InvalidArgument, "invalid outstanding_amount: %v", err)
	}
	dateOfBirth, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return dto.AssessLoanRequest{}, status.Errorf(codes.InvalidArgument, "invalid date_of_birth: %v", err)
	}

	bills := make([]dto.BillRecordDTO, 0, len(req.Bills))
	for i, bill := range req.Bills {
		record, err := toBillRecord(bill)
		if err != nil {
			return dto.AssessLoanRequest{}, status.Errorf(codes.InvalidArgument, "invalid bills[%d]: %v", i, err)
		}
		bills = append(bills, record)
	}

	return dto.AssessLoanRequest{
		LoanID:            req.LoanID,
		CustomerID:        req.CustomerID,
		PrincipalAmount:   principal,
		OutstandingAmount: outstanding,
		DaysPastDue:       int(req.DaysPastDue),
		MaritalStatus:     req.MaritalStatus,
		DateOfBirth:       dateOfBirth,
		Bills:             bills,
		FieldNotes:        req.FieldNotes,
		BusinessPhoto:     req.BusinessPhoto,
		HomePhoto:         req.HomePhoto,
	}, nil
}

func toBillRecord(bill *BillRecordMsg) (dto.BillRecordDTO, error) {
	if bill == nil {
		return dto.BillRecordDTO{}, errors.New("bill is required")
	}

	billed, err := decimal.NewFromString(bill.BilledAmount)
	if err != nil {
		return dto.BillRecordDTO{}, err
	}
	// An omitted paid_amount means nothing has been paid yet.
	paid := decimal.Zero
	if bill.PaidAmount != "" {
		paid, err = decimal.NewFromString(bill.PaidAmount)
		if err != nil {
			return dto.BillRecordDTO{}, err
		}
	}
	scheduled, err := time.Parse(dateLayout, bill.ScheduledDate)
	if err != nil {
		return dto.BillRecordDTO{}, err
	}

	var paidDate *time.Time
	if bill.PaidDate != "" {
		parsed, err := time.Parse(dateLayout, bill.PaidDate)
		if err != nil {
			return dto.BillRecordDTO{}, err
		}
		paidDate = &parsed
	}

	return dto.BillRecordDTO{
		BilledAmount:  billed,
		PaidAmount:    paid,
		ScheduledDate: scheduled,
		PaidDate:      paidDate,
	}, nil
}

func toAssessmentMsg(result dto.AssessmentResponse) *LoanAssessmentMsg {
	return &LoanAssessmentMsg{
		ID:             result.ID.String(),
		LoanID:         result.LoanID,
		CustomerID:     result.CustomerID,
		FinalScore:     result.FinalScore,
		RiskCategory:   result.RiskCategory,
		Recommendation: result.Recommendation,
		Explanation:    result.Explanation,
		WeightsUsed:    result.WeightsUsed,
		MLScore:        toSignalMsg(result.MLScore),
		VisionScore:    toSignalMsg(result.VisionScore),
		NLPScore:       toSignalMsg(result.NLPScore),
		ModelVersion:   result.ModelVersion,
		AssessedAt:     result.AssessedAt.UTC().Format(time.RFC3339),
	}
}

func toSignalMsg(score *dto.SignalScoreDTO) *SignalScoreMsg {
	if score == nil {
		return nil
	}
	return &SignalScoreMsg{
		Source:        score.Source,
		Value:         score.Value,
		BusinessScore: score.BusinessScore,
		HomeScore:     score.HomeScore,
	}
}
