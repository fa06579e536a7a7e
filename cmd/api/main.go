package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/phonebook/internal/config"
	"github.com/crucial707/phonebook/internal/db"
	"github.com/crucial707/phonebook/internal/repo"
	"github.com/crucial707/phonebook/internal/scheduler"
)

func main() {

	// Load configuration
	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database FIRST
	var database *sql.DB
	if cfg.StoreDriver == config.StoreDriverPostgres {
		var err error
		database, err = db.Connect(ctx,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
			cfg.DBUser,
			cfg.DBPass,
			db.Options{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns},
		)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

		if err := db.Run(cfg.DatabaseURL()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		pruner := &scheduler.AuditPruner{
			Store:     repo.NewAuditRepo(database),
			Retention: time.Duration(cfg.AuditRetentionDays) * 24 * time.Hour,
		}
		go func() {
			if err := scheduler.Run(ctx, cfg.AuditPruneCron, pruner); err != nil {
				slog.Error("scheduler stopped", "error", err)
			}
		}()
	} else {
		slog.Warn("using in-memory store; data is lost on restart")
	}

	router, err := newRouter(database, cfg)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server LAST
	go func() {
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			slog.Info("starting server (TLS)", "addr", srv.Addr)
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			slog.Info("starting server", "addr", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown failed", "error", err)
	}
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
