package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "evrental-backend/internal/api/grpc"
	httpapi "evrental-backend/internal/api/http"
	"evrental-backend/internal/bootstrap"
	"evrental-backend/internal/config"
	"evrental-backend/internal/events"
	"evrental-backend/internal/idempotency"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/security"
	"evrental-backend/internal/service"
	"evrental-backend/internal/tracing"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EV Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetHTTPAddress(), "grpc_address", cfg.GetGRPCAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Tracing
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Initialize Repositories
	repos, closeRepos, err := bootstrap.OpenRepositories(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open repositories", "error", err)
		log.Fatalf("Failed to open repositories: %v", err)
	}
	defer closeRepos()

	// Initialize Event Publisher
	publisher, err := events.Open(events.Options{
		Driver:       cfg.Events.Driver,
		KafkaBrokers: cfg.Events.KafkaBrokers,
		KafkaTopic:   cfg.Events.KafkaTopic,
		AMQPURL:      cfg.Events.AMQPURL,
		AMQPQueue:    cfg.Events.AMQPQueue,
	})
	if err != nil {
		logger.Error("Failed to initialize event publisher", "error", err)
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer publisher.Close()

	// Initialize Idempotency Store
	var idem idempotency.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to ping redis", "addr", cfg.Redis.Addr, "error", err)
			log.Fatalf("Failed to ping redis: %v", err)
		}
		defer client.Close()
		logger.Info("Idempotency keys stored in redis", "addr", cfg.Redis.Addr)
		idem = idempotency.NewRedisStore(client, idempotency.DefaultTTL)
	} else {
		logger.Info("Idempotency keys stored in process memory")
		idem = idempotency.NewMemoryStore(idempotency.DefaultTTL)
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Initialize Services
	settingsService := service.NewSettingsService(repos.Settings, cfg.SettlementDefaults())
	rentalService := service.NewRentalService(repos.Tx, repos.Vehicles, repos.Plans, repos.Riders, repos.Rentals, repos.Payments, repos.Accessories, publisher)
	paymentService := service.NewPaymentService(repos.Tx, repos.Rentals, repos.Payments, publisher)
	accessoryService := service.NewAccessoryService(repos.Tx, repos.Rentals, repos.Accessories)
	inspectionService := service.NewInspectionService(repos.Tx, repos.Rentals, repos.Inspections, settingsService, publisher)
	authService := service.NewAuthService(repos.Staff, tokenManager)

	// Initialize HTTP API
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:       httpapi.NewAuthHandler(authService),
		Rental:     httpapi.NewRentalHandler(rentalService, accessoryService, idem),
		Payment:    httpapi.NewPaymentHandler(paymentService),
		Inspection: httpapi.NewInspectionHandler(inspectionService),
		Settings:   httpapi.NewSettingsHandler(settingsService),
		Health:     repos.Ping,
	}, tokenManager)

	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	// Initialize gRPC health endpoint
	grpcServer, healthServer := grpcapi.NewServer(tokenManager)
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "address", cfg.GetGRPCAddress(), "error", err)
			log.Fatalf("Failed to listen: %v", err)
		}
		go grpcapi.WatchHealth(ctx, healthServer, repos.Ping, 10*time.Second)
		go func() {
			logger.Info("gRPC server listening", "address", lis.Addr().String())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server failed", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Tracing shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
