package server

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the extractor.
const ServiceName = "coverage.Extractor"

// HealthServer serves the standard gRPC health protocol for orchestrators
// that probe over gRPC rather than HTTP.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	lis        net.Listener
	logger     *slog.Logger
}

// NewHealthServer listens on addr and registers the health and reflection
// services. Both the empty service and ServiceName start as SERVING.
func NewHealthServer(addr string, logger *slog.Logger) (*HealthServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(gs)

	return &HealthServer{grpcServer: gs, health: hs, lis: lis, logger: logger}, nil
}

// Addr is the bound listen address.
func (h *HealthServer) Addr() string { return h.lis.Addr().String() }

// Serve blocks until Stop is called.
func (h *HealthServer) Serve() error {
	h.logger.Info("grpc.health.listen", "addr", h.Addr())
	return h.grpcServer.Serve(h.lis)
}

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpcServer.GracefulStop()
	h.logger.Info("grpc.health.stopped")
}
