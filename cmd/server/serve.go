package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"messaging/config"
	"messaging/internal/api"
	"messaging/internal/cache"
	"messaging/internal/channel"
	"messaging/internal/database"
	"messaging/internal/events"
	"messaging/internal/meetup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	profiles, closeCache, err := openProfileCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	publisher, err := events.NewAMQPPublisher(events.Dial(cfg.AMQPURL), cfg.EventsQueue, cfg.PublishMaxElapsed, cfg.PublishMaxRetries, log)
	if err != nil {
		return fmt.Errorf("failed to start event publisher: %w", err)
	}
	defer publisher.Close()

	app := InitializeApp(db, cfg, log, profiles, publisher)
	server := api.NewServer(cfg.Addr(), log, db, func(r *mux.Router) {
		channel.SetupJSONRoutes(r, app.ChannelHandler)
	}, func(r *mux.Router) {
		meetup.SetupJSONRoutes(r, app.MeetupHandler)
	})

	lis, err := net.Listen("tcp", cfg.HealthAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.HealthAddr(), err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.UnaryLogger(log)))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)
	go func() {
		log.Info("Starting gRPC health server", "address", cfg.HealthAddr())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()
	go func() {
		if err := server.Run(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err = <-errCh:
		log.Error("Server failed", "error", err)
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("HTTP shutdown failed", "error", shutdownErr)
	}
	grpcServer.GracefulStop()
	return err
}

// openProfileCache connects to Redis when an address is configured and falls
// back to no caching otherwise.
func openProfileCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (cache.ProfileCache, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, profile cache disabled")
		return cache.Nop{}, func() {}, nil
	}
	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.ProfileCacheTTL, log)
	if err != nil {
		return nil, nil, err
	}
	return redisCache, func() { _ = redisCache.Close() }, nil
}
