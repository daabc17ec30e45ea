package grpc

// proto.go defines the gRPC server interface derived from
// amara/assessment/v1/assessment.proto. This file serves as a stand-in for
// buf-generated code. Once `buf generate` is run, replace this file with the
// import from github.com/amara-ai/api/gen/go/amara/assessment/v1.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AssessmentServiceServer is the server API for AssessmentService.
type AssessmentServiceServer interface {
	AssessLoan(context.Context, *AssessLoanRequest) (*AssessLoanResponse, error)
	QuickAssess(context.Context, *AssessLoanRequest) (*AssessLoanResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error)
	mustEmbedUnimplementedAssessmentServiceServer()
}

// UnimplementedAssessmentServiceServer provides forward-compatible default implementations.
type UnimplementedAssessmentServiceServer struct{}

func (UnimplementedAssessmentServiceServer) AssessLoan(context.Context, *AssessLoanRequest) (*AssessLoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessLoan not implemented")
}
func (UnimplementedAssessmentServiceServer) QuickAssess(context.Context, *AssessLoanRequest) (*AssessLoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QuickAssess not implemented")
}
func (UnimplementedAssessmentServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedAssessmentServiceServer) ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAssessments not implemented")
}
func (UnimplementedAssessmentServiceServer) mustEmbedUnimplementedAssessmentServiceServer() {}

// RegisterAssessmentServiceServer registers the AssessmentServiceServer with the gRPC server.
func RegisterAssessmentServiceServer(s *grpclib.Server, srv AssessmentServiceServer) {
	s.RegisterService(&_AssessmentService_serviceDesc, srv)
}

var _AssessmentService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "amara.assessment.v1.AssessmentService",
	HandlerType: (*AssessmentServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessLoan", Handler: _AssessmentService_AssessLoan_Handler},
		{MethodName: "QuickAssess", Handler: _AssessmentService_QuickAssess_Handler},
		{MethodName: "GetAssessment", Handler: _AssessmentService_GetAssessment_Handler},
		{MethodName: "ListAssessments", Handler: _AssessmentService_ListAssessments_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _AssessmentService_AssessLoan_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(AssessLoanRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(AssessmentServiceServer).AssessLoan(ctx, req)
}

func _AssessmentService_QuickAssess_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(AssessLoanRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(AssessmentServiceServer).QuickAssess(ctx, req)
}

func _AssessmentService_GetAssessment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetAssessmentRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(AssessmentServiceServer).GetAssessment(ctx, req)
}

func _AssessmentService_ListAssessments_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ListAssessmentsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(AssessmentServiceServer).ListAssessments(ctx, req)
}
