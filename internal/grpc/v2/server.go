package v2

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Totarae/TransferRedirect/internal/service"
	"github.com/Totarae/TransferRedirect/internal/storage"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCServer struct {
	Service     *service.RedirectService
	FallbackKey string
	Logger      *zap.Logger
}

func NewGRPCServer(svc *service.RedirectService, fallbackKey string, logger *zap.Logger) *GRPCServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCServer{Service: svc, FallbackKey: fallbackKey, Logger: logger}
}

func (s *GRPCServer) apiKey(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(MetadataAPIKey); len(vals) > 0 && strings.TrimSpace(vals[0]) != "" {
			return strings.TrimSpace(vals[0])
		}
	}
	return s.FallbackKey
}

// CreateTransfer создаёт трансфер и возвращает адрес, куда перенаправил бы браузер.
func (s *GRPCServer) CreateTransfer(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	src := req.GetValue()
	if strings.TrimSpace(src) == "" {
		return nil, status.Error(codes.InvalidArgument, "src is required")
	}
	key := s.apiKey(ctx)
	if key == "" {
		return nil, status.Error(codes.Unauthenticated, "api key is required")
	}

	var location string
	page := &url.URL{RawQuery: service.TargetParam + "=" + url.QueryEscape(src)}
	nav := service.NavigatorFunc(func(u string) { location = u })

	switch outcome := s.Service.Execute(ctx, page, storage.StaticKey(key), nav); outcome {
	case service.OutcomeNavigated:
		return wrapperspb.String(location), nil
	case service.OutcomeRejected:
		return nil, status.Error(codes.FailedPrecondition, "provider rejected the transfer")
	case service.OutcomeFailed:
		return nil, status.Error(codes.Unavailable, "provider request failed")
	default:
		return nil, status.Errorf(codes.Internal, "unexpected outcome %s", outcome)
	}
}

// UnaryLoggingInterceptor пишет в лог каждый вызов.
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC Request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
