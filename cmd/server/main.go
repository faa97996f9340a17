package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jirawatp058/random-buddy/internal/api"
	"github.com/Jirawatp058/random-buddy/internal/config"
	"github.com/Jirawatp058/random-buddy/internal/factory"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/matching"
	"github.com/Jirawatp058/random-buddy/internal/storage/dynamo"
	redisstorage "github.com/Jirawatp058/random-buddy/internal/storage/redis"
	"github.com/Jirawatp058/random-buddy/internal/web"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		ExchangeController: app.ExchangeController,
		AllowedOrigins:     cfg.Server.CORSAllowedOrigins,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		ExchangeController: app.ExchangeController,
		StaticDir:          findStaticDir(),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	server := api.NewServer(mux, serverConfig, logger)

	logger.Info("random buddy starting",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
		slog.String("reset_policy", string(cfg.ResetPolicy())),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		sweepSessions(gctx, app.AuthService, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func factoryConfig(cfg *config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		SQLitePath:  cfg.Storage.SQLitePath,
		AuthConfig: auth.Config{
			AdminPassword:   cfg.Admin.Password,
			SessionDuration: cfg.SessionTTL(),
		},
		MatchingConfig: matching.Config{
			MaxAttempts:   cfg.Exchange.MaxAttempts,
			ExactFallback: cfg.Exchange.ExactFallback,
		},
		ResetPolicy: cfg.ResetPolicy(),
		BcryptCost:  cfg.Exchange.BcryptCost,
	}

	switch cfg.Storage.Type {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypeDynamoDB:
		dynamoCfg := dynamo.DefaultConfig()
		dynamoCfg.Table = cfg.Storage.DynamoDB.Table
		dynamoCfg.Region = cfg.Storage.DynamoDB.Region
		dynamoCfg.Endpoint = cfg.Storage.DynamoDB.Endpoint
		fc.DynamoConfig = &dynamoCfg
	}
	return fc
}

// sweepSessions drops expired admin sessions until ctx is done
func sweepSessions(ctx context.Context, authService *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := authService.CleanExpiredSessions(); n > 0 {
				logger.Debug("expired admin sessions removed", slog.Int("count", n))
			}
		}
	}
}

// findStaticDir returns the static files directory, or "" if there is none
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
