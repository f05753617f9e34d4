package main

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the gRPC health service name reported next to the
// overall ("") status.
const HealthServiceName = "product.ProductService"

type GrpcServer struct {
	ListenAddr string
	Server     *grpc.Server
	Health     *health.Server
}

func NewGrpcServer(addr string) *GrpcServer {
	server := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(server, healthSrv)

	g := &GrpcServer{
		ListenAddr: addr,
		Server:     server,
		Health:     healthSrv,
	}
	g.SetServing(false)
	return g
}

// SetServing mirrors database readiness into the gRPC health service.
func (g *GrpcServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.Health.SetServingStatus("", status)
	g.Health.SetServingStatus(HealthServiceName, status)
}

func (g *GrpcServer) Serve(listener net.Listener) error {
	slog.Info("Starting Product Service in gRPC server on port:", "addr", listener.Addr().String())

	return g.Server.Serve(listener)
}

func (g *GrpcServer) Stop() {
	g.Health.Shutdown()
	g.Server.GracefulStop()
}
