package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/phonebook/internal/auth"
	"github.com/crucial707/phonebook/internal/config"
	"github.com/crucial707/phonebook/internal/handlers"
	"github.com/crucial707/phonebook/internal/middleware"
	"github.com/crucial707/phonebook/internal/phonebook"
	"github.com/crucial707/phonebook/internal/repo"
)

// newRouter wires stores, services and handlers into a chi router. With a nil
// db the in-memory stores are used and /audit is not mounted.
func newRouter(db *sql.DB, cfg config.Config) (http.Handler, error) {
	var (
		users   auth.UserStore
		entries phonebook.EntryStore
		audit   *repo.AuditRepo
	)
	if db != nil {
		users = repo.NewUserRepo(db)
		entries = repo.NewEntryRepo(db)
		audit = repo.NewAuditRepo(db)
	} else {
		users = repo.NewMemoryUserRepo()
		entries = repo.NewMemoryEntryRepo()
	}

	authSvc, err := auth.New(users, auth.Config{
		Secret:          []byte(cfg.JWTSecret),
		Algorithm:       cfg.JWTAlgorithm,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		DefaultTokenTTL: cfg.DefaultTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	authHandler := &handlers.AuthHandler{Auth: authSvc}
	entryHandler := &handlers.EntryHandler{Entries: phonebook.New(entries)}
	if audit != nil {
		entryHandler.Audit = audit
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	// ==========================
	// Health and metrics
	// ==========================
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", readyHandler(db))
	r.Handle("/metrics", promhttp.Handler())

	// ==========================
	// Auth
	// ==========================
	limiter := middleware.AuthRateLimiter(cfg.AuthRateLimitPerMinute, cfg.AuthRateLimitBurst)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/token", authHandler.Token)
	})
	r.Post("/logout", authHandler.Logout)

	// ==========================
	// Phonebook (bearer token required)
	// ==========================
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(authSvc))

		for _, base := range []string{"/phonebook", "/phonebook/"} {
			r.Post(base, entryHandler.CreateEntry)
			r.Get(base, entryHandler.ListEntries)
		}
		r.Get("/phonebook/{id}", entryHandler.GetEntry)
		r.Put("/phonebook/{id}", entryHandler.UpdateEntry)
		r.Delete("/phonebook/{id}", entryHandler.DeleteEntry)

		if audit != nil {
			auditHandler := &handlers.AuditHandler{Repo: audit}
			r.Get("/audit", auditHandler.ListAudit)
		}
	})

	return r, nil
}

// readyHandler answers 200 when the store is reachable and 503 otherwise.
// The in-memory store is always ready.
func readyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			w.Write([]byte("ready"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	}
}
