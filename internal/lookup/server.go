package lookup

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"relayrouter/internal/logging"
	"relayrouter/internal/router"
)

// Server serves route lookups for a router.
type Server struct {
	router     router.Router
	grpcServer *grpc.Server
	health     *health.Server
	logger     logging.Logger
}

// NewServer creates a lookup server for r and registers the lookup, health
// and reflection services.
func NewServer(r router.Router, logger logging.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		router:     r,
		grpcServer: grpc.NewServer(opts...),
		health:     health.NewServer(),
		logger:     logger,
	}

	RegisterLookupServer(s.grpcServer, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Reflection resolves the service through File.
	reflection.Register(s.grpcServer)

	return s
}

// GetDestinations answers which destinations a metric is routed to. The
// metric reaches the router unchanged; an empty one is a key like any other.
func (s *Server) GetDestinations(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	addrs := s.router.GetDestinations(req.GetValue())
	values := make([]*structpb.Value, len(addrs))
	for i, addr := range addrs {
		values[i] = structpb.NewStringValue(addr.String())
	}
	return &structpb.ListValue{Values: values}, nil
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("lookup service listening", logging.String("addr", lis.Addr().String()))
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and serves until Stop is called.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Stop marks the service not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.logger.Info("stopping lookup service")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
