// Package grpc provides the gRPC transport: the standard health service and
// the booking quote service.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/mvaleed/innkeep/internal/auth"
)

// Server wraps the gRPC server with dependencies
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewServer creates a new gRPC server with all handlers registered
func NewServer(
	quotes BookingQuoter,
	jwtManager *auth.JWTManager,
	logger *slog.Logger,
) *Server {
	s := &Server{
		health:     health.NewServer(),
		jwtManager: jwtManager,
		logger:     logger,
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			s.loggingInterceptor,
			s.recoveryInterceptor,
			s.authInterceptor,
		),
	)

	healthpb.RegisterHealthServer(grpcServer, s.health)
	RegisterBookingQuoteServer(grpcServer, NewQuoteHandler(quotes))
	s.health.SetServingStatus(BookingQuoteServiceName, healthpb.HealthCheckResponse_SERVING)

	s.grpcServer = grpcServer
	return s
}

// Serve starts the gRPC server on the given listener
func (s *Server) Serve(listener net.Listener) error {
	return s.grpcServer.Serve(listener)
}

// GracefulStop marks every service as not serving and stops the server
// after in-flight calls finish.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// loggingInterceptor logs every call. Caller mistakes such as a rejected
// booking draft log at warn; server faults at error.
func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	level := slog.LevelInfo
	switch code {
	case codes.OK:
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "grpc call",
		slog.String("method", info.FullMethod),
		slog.String("code", code.String()),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, err
}

func (s *Server) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "grpc panic recovered", "method", info.FullMethod, "panic", r)
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// authInterceptor requires a bearer access token on everything except the
// health service.
func (s *Server) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if strings.HasPrefix(info.FullMethod, "/"+healthpb.Health_ServiceDesc.ServiceName+"/") {
		return handler(ctx, req)
	}

	token, err := bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := s.jwtManager.ValidateAccessToken(token)
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return nil, status.Error(codes.Unauthenticated, "token expired")
	case err != nil:
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(context.WithValue(ctx, claimsKey{}, claims), req)
}

func bearerToken(ctx context.Context) (string, error) {
	values := metadata.ValueFromIncomingContext(ctx, "authorization")
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing authorization token")
	}
	scheme, token, ok := strings.Cut(values[0], " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", status.Error(codes.Unauthenticated, "invalid authorization format")
	}
	return token, nil
}

type claimsKey struct{}

// ClaimsFromContext returns the caller's access token claims.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}
