// Package main is the entrypoint for the Inkgen API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/inkgen/inkgen/internal/auth"
	"github.com/inkgen/inkgen/internal/cache"
	"github.com/inkgen/inkgen/internal/config"
	"github.com/inkgen/inkgen/internal/gateway"
	"github.com/inkgen/inkgen/internal/handler"
	"github.com/inkgen/inkgen/internal/identity"
	"github.com/inkgen/inkgen/internal/metrics"
	"github.com/inkgen/inkgen/internal/middleware"
	"github.com/inkgen/inkgen/internal/quota"
	"github.com/inkgen/inkgen/internal/repository"
	"github.com/inkgen/inkgen/internal/server"
	"github.com/inkgen/inkgen/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	verifier, err := auth.NewVerifier(cfg.IdentityIssuer, cfg.IdentityAudience, cfg.IdentityJWKSURL)
	if err != nil {
		logger.Error("failed to initialize token verifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Identity provider client with a Redis cache-aside layer in front.
	identityClient := identity.NewClient(cfg.IdentityAPIURL, cfg.IdentityAPIKey, identity.NewProviderHTTPClient())
	directory := identity.NewDirectory(identityClient, cacheClient, logger)

	providerHTTP := gateway.NewProviderHTTPClient()
	llm := gateway.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, providerHTTP)
	images := gateway.NewImageGenClient(cfg.ImageGenURL, cfg.ImageGenAPIKey, providerHTTP)
	media := gateway.NewMediaClient(cfg.MediaUploadURL, cfg.MediaAPIKey, cfg.MediaAPISecret, providerHTTP)
	gw := gateway.New(llm, images, media, logger)

	ledger := quota.NewLedger(directory, logger)

	metricsRecorder := metrics.NewNoop()
	generationService := service.NewGenerationService(gw, repo, ledger, logger, metricsRecorder)
	feedService := service.NewFeedService(repo, logger, metricsRecorder)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	aiHandler := handler.NewAIHandler(generationService, logger)
	userHandler := handler.NewUserHandler(feedService, logger)

	r := setupRouter(h, healthHandler, aiHandler, userHandler, verifier, directory, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
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
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	aiHandler *handler.AIHandler,
	userHandler *handler.UserHandler,
	verifier *auth.Verifier,
	directory *identity.Directory,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root liveness banner
	r.Get("/", h.Root)

	// Authenticated API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, directory, logger))

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate-article", aiHandler.GenerateArticle)
			r.Post("/generate-blog-title", aiHandler.GenerateBlogTitle)
			r.Post("/generate-image", aiHandler.GenerateImage)
			r.Post("/remove-image-background", aiHandler.RemoveImageBackground)
			r.Post("/remove-image-object", aiHandler.RemoveImageObject)
			r.Post("/resume-review", aiHandler.ResumeReview)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/get-user-creations", userHandler.GetUserCreations)
			r.Get("/get-published-creations", userHandler.GetPublishedCreations)
			r.Post("/toggle-like-creation", userHandler.ToggleLikeCreation)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
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
