package grpcpeer

import (
	"context"

	"chordring/internal/chord"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server adapts a *chord.NodeService to the hand-registered Peer gRPC
// service. Register attaches it to a *grpc.Server the same way
// a protoc-gen-go-grpc RegisterXServer function would.
type Server struct {
	svc *chord.NodeService
}

// NewServer wraps svc for gRPC exposure.
func NewServer(svc *chord.NodeService) *Server {
	return &Server{svc: svc}
}

// Register attaches the Peer service to srv.
func (s *Server) Register(srv *grpc.Server) {
	srv.RegisterService(&serviceDesc, s)
}

func (s *Server) findSuccessor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.svc.FindSuccessor(ctx, requestID(req))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return handleToStruct(result), nil
}

func (s *Server) successor(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return handleToStruct(s.svc.Successor()), nil
}

func (s *Server) predecessor(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	pred, ok := s.svc.Predecessor()
	return predecessorResponse(pred, ok), nil
}

func (s *Server) successorList(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return successorListResponse(s.svc.Store().SuccessorList()), nil
}

func (s *Server) notify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.svc.Notify(structToHandle(req))
	return emptyStruct(), nil
}

func (s *Server) ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return emptyStruct(), nil
}

// serviceDesc is written in the same shape protoc-gen-go-grpc emits for
// a unary-only service: one MethodDesc per RPC, no streams.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindSuccessor", Handler: unaryHandler(func(s *Server) handlerFunc { return s.findSuccessor })},
		{MethodName: "Successor", Handler: unaryHandler(func(s *Server) handlerFunc { return s.successor })},
		{MethodName: "Predecessor", Handler: unaryHandler(func(s *Server) handlerFunc { return s.predecessor })},
		{MethodName: "SuccessorList", Handler: unaryHandler(func(s *Server) handlerFunc { return s.successorList })},
		{MethodName: "Notify", Handler: unaryHandler(func(s *Server) handlerFunc { return s.notify })},
		{MethodName: "Ping", Handler: unaryHandler(func(s *Server) handlerFunc { return s.ping })},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/transport/grpcpeer/peer.proto",
}

type handlerFunc func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a (*Server) -> handlerFunc selector into the
// grpc.methodHandler shape grpc.MethodDesc requires.
func unaryHandler(selectMethod func(*Server) handlerFunc) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(*Server)
		method := selectMethod(s)
		if interceptor == nil {
			return method(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: s}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
