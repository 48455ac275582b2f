// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/learnify/internal/admin"
	"github.com/angelamos/learnify/internal/auth"
	"github.com/angelamos/learnify/internal/config"
	"github.com/angelamos/learnify/internal/core"
	"github.com/angelamos/learnify/internal/course"
	"github.com/angelamos/learnify/internal/health"
	"github.com/angelamos/learnify/internal/mail"
	"github.com/angelamos/learnify/internal/media"
	"github.com/angelamos/learnify/internal/middleware"
	"github.com/angelamos/learnify/internal/payment"
	"github.com/angelamos/learnify/internal/progress"
	"github.com/angelamos/learnify/internal/purchase"
	"github.com/angelamos/learnify/internal/server"
	"github.com/angelamos/learnify/internal/user"
)

const drainDelay = 5 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	core.SetDevelopment(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if cfg.Otel.Enabled {
		telemetry, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			return telErr
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				10*time.Second,
			)
			defer cancel()
			if sdErr := telemetry.Shutdown(shutdownCtx); sdErr != nil {
				logger.Warn("telemetry shutdown", "error", sdErr)
			}
		}()
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // shutdown path

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close() //nolint:errcheck // shutdown path

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	blacklist := auth.NewBlacklist(rdb.Client)

	mediaStore := media.NewHTTPStore(cfg.Media)
	mailSender := mail.NewSMTPSender(cfg.Mail)
	processor := payment.NewHTTPProcessor(cfg.Payment)

	userRepo := user.NewRepository(db.DB)
	courseRepo := course.NewRepository(db.DB)
	progressRepo := progress.NewRepository(db.DB)
	purchaseRepo := purchase.NewRepository(db.DB)

	userHandler := user.NewHandler(
		user.NewService(userRepo, mediaStore, mailSender),
		jwtManager,
		blacklist,
	)
	courseHandler := course.NewHandler(
		course.NewService(courseRepo, mediaStore),
	)
	progressHandler := progress.NewHandler(
		progress.NewService(progressRepo, courseRepo),
	)
	purchaseHandler := purchase.NewHandler(
		purchase.NewService(
			purchaseRepo,
			courseRepo,
			userRepo,
			processor,
			cfg.App.ClientURL,
		),
		cfg.Payment.WebhookSecret,
	)
	adminHandler := admin.NewHandler(db, rdb)
	healthHandler := health.NewHandler(db, rdb)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	rateLimiter := middleware.NewRateLimiter(rdb.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		KeyFunc:  middleware.KeyByIP,
		FailOpen: true,
	})

	router := srv.Router()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(rateLimiter.Handler)

	healthHandler.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(
		jwtManager,
		blacklist,
		cfg.JWT.CookieName,
	)
	optionalAuth := middleware.OptionalAuth(
		jwtManager,
		blacklist,
		cfg.JWT.CookieName,
	)

	router.Route("/v1", func(r chi.Router) {
		userHandler.RegisterRoutes(r, authenticator)
		courseHandler.RegisterRoutes(r, authenticator, optionalAuth)
		progressHandler.RegisterRoutes(r, authenticator)
		purchaseHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	healthHandler.SetReady(true)
	logger.Info("learnify api started",
		"environment", cfg.App.Environment,
		"addr", cfg.Server.Address(),
	)

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	return srv.Shutdown(context.Background(), drainDelay)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
