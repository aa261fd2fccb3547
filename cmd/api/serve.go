package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/agent-crm/internal/archive"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	"github.com/BruksfildServices01/agent-crm/internal/config"
	dbpkg "github.com/BruksfildServices01/agent-crm/internal/db"
	"github.com/BruksfildServices01/agent-crm/internal/metrics"
	"github.com/BruksfildServices01/agent-crm/internal/routes"
	"github.com/BruksfildServices01/agent-crm/internal/session"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if created, err := dbpkg.SeedAdmin(ctx, db, cfg.SeedAdmin.Username, cfg.SeedAdmin.Password); err != nil {
		return err
	} else if created {
		log.Info().Str("username", cfg.SeedAdmin.Username).Msg("seeded admin user")
	}

	sessions, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	archiver, err := archive.New(cfg.Archive)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	dispatcher := audit.NewDispatcher(audit.New(db), log)
	defer dispatcher.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Audit:    dispatcher,
		Archiver: archiver,
		Metrics:  m,
		Gatherer: reg,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Store, error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("sessions kept in memory")
		return session.NewMemoryStore(cfg.SessionTTL), nil
	}

	client, err := session.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("sessions kept in redis")
	return session.NewRedisStore(client, cfg.SessionTTL), nil
}
