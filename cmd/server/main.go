package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/mvaleed/innkeep/internal/auth"
	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/config"
	"github.com/mvaleed/innkeep/internal/event"
	"github.com/mvaleed/innkeep/internal/metrics"
	"github.com/mvaleed/innkeep/internal/scheduler"
	"github.com/mvaleed/innkeep/internal/service"
	"github.com/mvaleed/innkeep/internal/storage/postgres"
	grpcTransport "github.com/mvaleed/innkeep/internal/transport/grpc"
	httpTransport "github.com/mvaleed/innkeep/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler).With("service", "innkeep", "env", cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy, err := cfg.BookingPolicy()
	if err != nil {
		return fmt.Errorf("booking policy: %w", err)
	}

	if cfg.MigrateOnStart {
		logger.Info("applying database migrations")
		if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	logger.Info("connecting to database")
	db, err := postgres.New(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("database connected")

	repos := db.Repositories()
	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWT())

	publisher := event.Fanout{
		event.NewLoggingPublisher(logger),
		event.NewCountingPublisher(m),
	}
	defer publisher.Close()

	authService := service.NewAuthService(repos.Users, repos.Tokens, jwtManager, publisher)
	userService := service.NewUserService(repos.Users, repos.Hotels, publisher)
	hotelService := service.NewHotelService(repos.Hotels, service.HotelServiceConfig{
		CacheSize: cfg.CatalogCacheSize,
		CacheTTL:  cfg.CatalogCacheTTL,
	}, publisher, m, logger)
	bookingService := service.NewBookingService(
		repos.Bookings,
		hotelService,
		db,
		booking.NewEngine(policy, booking.SystemClock),
		booking.SystemClock,
		publisher,
		m,
		logger,
	)
	reviewService := service.NewReviewService(repos.Reviews, repos.Hotels, db, hotelService, publisher)

	jobs := scheduler.New(m, logger)
	for _, job := range []scheduler.Job{
		scheduler.TokenCleanupJob(authService, cfg.TokenCleanupSchedule),
		scheduler.BookingCompletionJob(bookingService, cfg.BookingCompletionSchedule),
	} {
		if err := jobs.Add(ctx, job); err != nil {
			return err
		}
	}
	jobsDone := make(chan struct{})
	go func() {
		defer close(jobsDone)
		jobs.Start(ctx)
	}()

	errChan := make(chan error, 2)

	httpServer := httpTransport.NewServer(httpTransport.Services{
		Auth:     authService,
		Users:    userService,
		Hotels:   hotelService,
		Bookings: bookingService,
		Reviews:  reviewService,
	}, m, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logger.Info("starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	grpcServer := grpcTransport.NewServer(bookingService, jwtManager, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.GRPCPort)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen: %w", err)
			return
		}
		logger.Info("starting gRPC server", "addr", addr)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case runErr = <-errChan:
		logger.Error("server error", "error", runErr)
	}

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	grpcServer.GracefulStop()

	cancel()
	<-jobsDone

	logger.Info("shutdown complete")
	return runErr
}
