// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the rental core alongside the HTTP API.
package grpc

import (
	"context"
	"time"

	"evrental-backend/internal/api/grpc/interceptor"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/security"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service key reported for the rental core.
const ServiceName = "evrental.v1.RentalCore"

// NewServer builds the gRPC server with auth, health and reflection registered.
func NewServer(tokens security.TokenManager) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewAuthInterceptor(tokens).Unary()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s, hs
}

// WatchHealth probes check every interval and mirrors the result into hs
// until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, check func(context.Context) error, interval time.Duration) {
	update := func() {
		status := healthpb.HealthCheckResponse_SERVING
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := check(probeCtx); err != nil {
			logger.Warn("Health probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(ServiceName, status)
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}
