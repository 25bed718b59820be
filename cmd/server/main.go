package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/conquest-go/internal/api"
	apimiddleware "github.com/mcoot/conquest-go/internal/api/middleware"
	"github.com/mcoot/conquest-go/internal/config"
	"github.com/mcoot/conquest-go/internal/factory"
	"github.com/mcoot/conquest-go/internal/services/auth"
	redisstorage "github.com/mcoot/conquest-go/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		AuthConfig:  auth.Config{SessionDuration: cfg.SessionDuration},
		Logger:      logger,
		StorageType: cfg.Storage,
		SQLitePath:  cfg.SQLitePath,
	}
	if cfg.Storage == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := app.RegistryService.EnsureInitialized(ctx); err != nil {
		logger.Error("failed to initialize program", slog.String("error", err.Error()))
		os.Exit(1)
	}

	limiter := apimiddleware.NewRateLimiter(apimiddleware.RateLimitConfig{
		PerSecond: cfg.RateLimit,
		Burst:     cfg.RateBurst,
	})

	go app.AuthService.RunSweeper(ctx, cfg.SweepInterval)
	go runJanitor(ctx, app, limiter, cfg.SweepInterval, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		RegistryService: app.RegistryService,
		GameController:  app.GameController,
		Hubs:            app.Hubs,
		RateLimiter:     limiter,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// runJanitor drops idle stream hubs and rate limiter entries until ctx ends
func runJanitor(ctx context.Context, app *factory.App, limiter *apimiddleware.RateLimiter, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hubs := app.Hubs.CleanupEmptyHubs()
			visitors := limiter.Sweep()
			if hubs > 0 || visitors > 0 {
				logger.Debug("janitor sweep",
					slog.Int("hubs_removed", hubs),
					slog.Int("visitors_removed", visitors),
				)
			}
		}
	}
}
