// Contactdesk is a personal contact-management service: each registered user
// owns a private set of contacts and an append-only log of the operations
// they performed. This entry point loads configuration, connects the
// database, applies migrations, wires the feature modules, and runs the HTTP
// server with graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/user/contactdesk-go/apperror"
	"github.com/user/contactdesk-go/auth"
	"github.com/user/contactdesk-go/config"
	"github.com/user/contactdesk-go/contacts"
	"github.com/user/contactdesk-go/db"
	"github.com/user/contactdesk-go/history"
)

func main() {
	// .env is a development convenience; production sets the environment
	// directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	pool, err := db.NewPool(cfg.Database)
	if err != nil {
		logger.Fatal("failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// The issuer validates its configuration up front: a missing signing
	// secret aborts startup instead of failing per request.
	issuer, err := auth.NewIssuer(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to configure token issuer", zap.Error(err))
	}

	authService := auth.NewAuthService(pool, issuer, logger)
	authHandlers := auth.NewHandlers(authService)

	historyService := history.NewHistoryService(pool, logger)
	historyHandlers := history.NewHandlers(historyService)

	contactService := contacts.NewContactService(pool, historyService, logger)
	contactHandlers := contacts.NewHandlers(contactService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogger(logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic fallback behind middleware.Recoverer: render the uniform error
	// body instead of a bare 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic while handling request", zap.Any("panic", rvr))
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
	})

	r.Route("/password", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		r.Patch("/", authHandlers.HandleChangePassword())
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		contactHandlers.RegisterRoutes(r)
	})

	r.Route("/history", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		historyHandlers.RegisterRoutes(r)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// writeError is a local helper for the panic fallback; it mirrors
// auth.WriteError without importing handler machinery into main.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
