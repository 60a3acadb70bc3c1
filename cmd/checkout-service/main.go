package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LavaJover/wolf-checkout-service/internal/app/background"
	"github.com/LavaJover/wolf-checkout-service/internal/app/setup"
	"github.com/LavaJover/wolf-checkout-service/internal/config"
	"github.com/LavaJover/wolf-checkout-service/internal/delivery/http/handlers"
	"github.com/LavaJover/wolf-checkout-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	appLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(cfg, appLogger)
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer deps.Close()

	uc, err := setup.InitializeUseCases(deps)
	if err != nil {
		log.Fatalf("failed to init usecases: %v", err)
	}

	// Rate refresh and timer restore
	background.NewBackgroundTasks(uc.OrderUsecase, uc.ExchangeRateService, cfg.ExchangeRate.RefreshInterval, appLogger).StartAll(ctx)

	// gRPC health server
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	go func() {
		appLogger.Info("gRPC health server started", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server stopped", "error", err)
		}
	}()

	// HTTP server
	router := handlers.NewRouter(
		handlers.NewCheckoutHandler(uc.OrderUsecase, uc.ExchangeRateService, uc.Payments, cfg.Checkout.DefaultProduct, appLogger),
		handlers.NewAdminHandler(uc.OrderUsecase, uc.UncreatedOrderUsecase, cfg.Admin.Token, cfg.HTTPServer.MaxUploadBytes, appLogger),
		deps.Registry,
	)
	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}
	go func() {
		appLogger.Info("WOLF GAMING checkout ready", "address", server.Addr, "base_url", cfg.HTTPServer.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	<-ctx.Done()
	appLogger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http server forced to shutdown", "error", err)
	}
	if err := uc.Scheduler.Stop(shutdownCtx); err != nil {
		appLogger.Error("fulfillment callbacks did not finish", "error", err)
	}
	grpcServer.GracefulStop()

	appLogger.Info("server exited")
}
