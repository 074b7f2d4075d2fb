package generation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ppiankov/truthslies/internal/engine"
	"github.com/ppiankov/truthslies/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// generatorService is the server-side contract of the gRPC service
type generatorService interface {
	Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error)
}

// Server exposes a Client (normally the local engine) as the generation service
type Server struct {
	backend Client
	logger  *slog.Logger
}

// NewServer wraps backend
func NewServer(backend Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{backend: backend, logger: logger}
}

// Generate serves one request and maps backend errors to gRPC codes
func (s *Server) Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
	statements, err := s.backend.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("generate failed",
			"truths", req.TruthsCount,
			"lies", req.LiesCount,
			"arguments", req.ArgumentCount(),
			"error", err)
		return nil, toStatus(err)
	}

	s.logger.Debug("generated statements", "count", len(statements))
	return &model.GenerationResponse{Statements: statements}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, engine.ErrUnknownClass), errors.Is(err, engine.ErrNoArguments):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrTooManyDuplicates):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*generatorService)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Generate",
			Handler:    generateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "truthslies/v1/generator.proto",
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(model.GenerationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(generatorService).Generate(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GenerateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(generatorService).Generate(ctx, req.(*model.GenerationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Register adds the generation service to a gRPC server
func Register(r grpc.ServiceRegistrar, s *Server) {
	r.RegisterService(&serviceDesc, s)
}
