// Package main is the entrypoint for the Athens API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/athens-bank/athens/internal/appwrite"
	"github.com/athens-bank/athens/internal/cache"
	"github.com/athens-bank/athens/internal/config"
	"github.com/athens-bank/athens/internal/dwolla"
	"github.com/athens-bank/athens/internal/handler"
	"github.com/athens-bank/athens/internal/metrics"
	"github.com/athens-bank/athens/internal/middleware"
	"github.com/athens-bank/athens/internal/plaid"
	"github.com/athens-bank/athens/internal/server"
	"github.com/athens-bank/athens/internal/service"
	"github.com/athens-bank/athens/internal/sharecode"
	"github.com/athens-bank/athens/internal/store"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Upstream clients
	identity := appwrite.NewClient(cfg.AppwriteEndpoint, cfg.AppwriteProjectID, cfg.AppwriteAPIKey)
	aggregator := plaid.NewClient(cfg.PlaidBaseURL, cfg.PlaidClientID, cfg.PlaidSecret)
	funding := dwolla.NewClient(cfg.DwollaBaseURL, cfg.DwollaKey, cfg.DwollaSecret)

	// Document stores on the identity service
	users := store.NewUserStore(identity, cfg.DatabaseID, cfg.UserCollectionID)
	banks := store.NewBankStore(identity, cfg.DatabaseID, cfg.BankCollectionID)

	// Shareable-id codec
	shareKey, err := cfg.ShareCodeKeyBytes()
	if err != nil {
		logger.Error("invalid share-code key", "error", err)
		os.Exit(1)
	}
	codec, err := sharecode.New(shareKey)
	if err != nil {
		logger.Error("invalid share-code key", "error", err)
		os.Exit(1)
	}

	// Services
	recorder := metrics.NewInMemory()
	authService := service.NewAuthService(identity, funding, users, recorder, logger)
	bankService := service.NewBankService(aggregator, funding, banks, codec, cacheClient, recorder, logger)

	// Handlers
	cookie := handler.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure}
	healthHandler := handler.NewHealthHandler(cacheClient)
	authHandler := handler.NewAuthHandler(authService, cookie, logger)
	bankHandler := handler.NewBankHandler(bankService, logger)
	homeHandler := handler.NewHomeHandler(bankService, cacheClient, cfg.HomeCacheTTL, recorder, logger)
	formsHandler := handler.NewFormsHandler()
	metricsHandler := handler.NewMetricsHandler(recorder)

	// Setup router
	r := setupRouter(authService, healthHandler, authHandler, bankHandler, homeHandler, formsHandler, metricsHandler, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

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
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
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
	authService *service.AuthService,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	bankHandler *handler.BankHandler,
	homeHandler *handler.HomeHandler,
	formsHandler *handler.FormsHandler,
	metricsHandler *handler.MetricsHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	session := middleware.Session(authService, cfg.CookieName, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/forms/{mode}", formsHandler.Schema)
		r.Post("/auth/sign-up", authHandler.SignUp)
		r.Post("/auth/sign-in", authHandler.SignIn)
		r.Post("/auth/sign-out", authHandler.SignOut)

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(session)

			r.Get("/auth/me", authHandler.Me)
			r.Get("/home", homeHandler.Home)

			r.Post("/plaid/link-token", bankHandler.CreateLinkToken)
			r.Post("/plaid/exchange", bankHandler.Exchange)

			r.Route("/banks", func(r chi.Router) {
				r.Get("/", bankHandler.List)
				r.Get("/{id}", bankHandler.Get)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

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

	return msg
}
