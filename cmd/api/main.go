// Package main is the entrypoint for the scribe API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/cache"
	"github.com/scribe/scribe/internal/config"
	"github.com/scribe/scribe/internal/handler"
	"github.com/scribe/scribe/internal/metrics"
	"github.com/scribe/scribe/internal/middleware"
	"github.com/scribe/scribe/internal/repository"
	"github.com/scribe/scribe/internal/repository/memory"
	"github.com/scribe/scribe/internal/server"
	"github.com/scribe/scribe/internal/service"
)

// store is what the services and readiness probe need from a storage driver.
type store interface {
	service.UserStore
	service.PostStore
	handler.HealthChecker
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	srvCfg := server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}

	var shutdownFuncs []namedShutdown

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		os.Exit(1)
	}
	if closeStore != nil {
		shutdownFuncs = append(shutdownFuncs, namedShutdown{"store", closeStore})
	}

	// A nil interface, not a typed nil, disables caching.
	var postCache service.PostCache
	var cacheChecker handler.HealthChecker
	if cfg.RedisURL != "" {
		cacheClient, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		postCache = cacheClient
		cacheChecker = cacheClient
		shutdownFuncs = append(shutdownFuncs, namedShutdown{"redis", func(context.Context) error {
			return cacheClient.Close()
		}})
		logger.Info("connected to Redis")
	} else {
		logger.Info("post cache disabled")
	}

	recorder := metrics.NewPrometheus()

	authService, err := service.NewAuthService(st, auth.NewPasswordHasher(auth.DefaultParams), tokens, recorder, logger, cfg.StoreTimeout)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}
	postService := service.NewPostService(st, postCache, recorder, logger, cfg.StoreTimeout)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	router := server.NewRouter(server.RouterDeps{
		Auth:          handler.NewAuthHandler(authService, logger),
		Posts:         handler.NewPostHandler(postService, logger),
		Health:        handler.NewHealthHandler(st, cacheChecker),
		Metrics:       handler.NewMetricsHandler(recorder),
		Resolver:      authService,
		Recorder:      recorder,
		Logger:        logger,
		CORS:          corsCfg,
		IsDevelopment: cfg.IsDevelopment(),
		MaxBodySize:   cfg.MaxRequestBodySize,
	})

	srv := server.New(router, srvCfg, logger)
	for _, fn := range shutdownFuncs {
		srv.OnShutdown(fn.name, fn.fn)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreDriver,
		"token_ttl", cfg.TokenTTL,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

type namedShutdown struct {
	name string
	fn   server.ShutdownFunc
}

// openStore connects the configured storage driver. Errors are logged here
// so connection strings can be redacted in one place.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store, server.ShutdownFunc, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil, nil
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, nil, err
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return nil, nil, err
	}
	logger.Info("connected to database")

	return repo, func(context.Context) error {
		repo.Close()
		return nil
	}, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
