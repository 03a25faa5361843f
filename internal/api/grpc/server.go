package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"accreditation-backend/internal/logger"
)

// ServiceName is the health service name probes should ask for
const ServiceName = "accreditation.Pipeline"

// Server exposes the standard gRPC health service for container probes
type Server struct {
	srv    *grpc.Server
	health *health.Server
}

func NewServer() *Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{srv: srv, health: hs}
}

// SetServing flips the overall and pipeline status
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *Server) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return s.srv.Serve(lis)
}

// Stop marks the server as not serving and drains in-flight calls
func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

// LoggingInterceptor logs every unary call with its status code
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("gRPC call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start))
		return resp, err
	}
}
