package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/cors"

	"github.com/mmynk/splitperfect/internal/api"
	"github.com/mmynk/splitperfect/internal/auth"
	"github.com/mmynk/splitperfect/internal/config"
	"github.com/mmynk/splitperfect/internal/metrics"
	"github.com/mmynk/splitperfect/internal/middleware"
	"github.com/mmynk/splitperfect/internal/ratelimit"
	"github.com/mmynk/splitperfect/internal/service"
	"github.com/mmynk/splitperfect/internal/storage"
)

const healthTimeout = 2 * time.Second

// newHandler wires every service, the operational endpoints and static files
// into one handler.
func newHandler(cfg *config.Config, store storage.Store, logger *slog.Logger) (http.Handler, error) {
	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)
	limiter := ratelimit.New(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, 0)

	// Outermost first: metrics see every call, including rejected ones
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RateLimit(limiter, m,
			api.AuthServiceRegisterProcedure,
			api.AuthServiceLoginProcedure,
		),
		middleware.RequireAuth(jwtManager,
			api.AuthServiceRegisterProcedure,
			api.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()

	// Register Connect services
	authPath, authHandler := api.NewAuthServiceHandler(service.NewAuthService(authenticator, store, jwtManager, logger), interceptors)
	mux.Handle(authPath, authHandler)

	groupPath, groupHandler := api.NewGroupServiceHandler(service.NewGroupService(store), interceptors)
	mux.Handle(groupPath, groupHandler)

	expensePath, expenseHandler := api.NewExpenseServiceHandler(service.NewExpenseService(store), interceptors)
	mux.Handle(expensePath, expenseHandler)

	summaryPath, summaryHandler := api.NewSummaryServiceHandler(service.NewSummaryService(store, m), interceptors)
	mux.Handle(summaryPath, summaryHandler)

	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", healthHandler(store))

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static path: %w", err)
	}
	logger.Info("Serving static files", "path", staticDir)
	mux.HandleFunc("/", staticHandler(staticDir))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
	})

	return loggingMiddleware(corsHandler.Handler(mux)), nil
}

func healthHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.Error("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	}
}

// staticHandler serves the frontend, falling back to index.html for unknown paths.
func staticHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Unregistered RPC procedures must not fall through to the frontend
		if strings.HasPrefix(r.URL.Path, "/splitperfect.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+urlPath))

		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
