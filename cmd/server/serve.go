package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantumeyes/internal/database"
	"quantumeyes/internal/handlers"
	"quantumeyes/internal/middleware"
	"quantumeyes/internal/netsim"
	"quantumeyes/internal/quantum"
	"quantumeyes/internal/server"
	"quantumeyes/internal/simulator"
	"quantumeyes/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	dbConnectAttempts = 10
	dbConnectDelay    = 2 * time.Second
	shutdownTimeout   = 15 * time.Second
)

var (
	_ handlers.Store        = (*database.Store)(nil)
	_ simulator.Store       = (*database.Store)(nil)
	_ middleware.UserGetter = (*database.Store)(nil)
	_ handlers.Simulation   = (*simulator.Simulator)(nil)
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

The schema is migrated and demo data is seeded on startup. Use --no-seed to
skip seeding and --simulate to start the traffic simulator right away.`,
	RunE: runServe,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().Bool("no-seed", false, "skip demo data seeding")
		c.Flags().Bool("simulate", false, "start the traffic simulator on boot")
		c.Flags().Float64("rate-limit", 20, "API requests per second per client IP (0 disables)")
		c.Flags().Int("rate-burst", 40, "API burst size per client IP")
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	noSeed, _ := cmd.Flags().GetBool("no-seed")
	simulate, _ := cmd.Flags().GetBool("simulate")
	rateLimit, _ := cmd.Flags().GetFloat64("rate-limit")
	rateBurst, _ := cmd.Flags().GetInt("rate-burst")

	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Migrate(db); err != nil {
		return err
	}
	store := database.NewStore(db)
	if !noSeed {
		if err := store.Seed(cmd.Context(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(cfg.VisualizationDir, 0o755); err != nil {
		return fmt.Errorf("create visualization dir: %w", err)
	}

	gen := netsim.NewGenerator(nil)
	ibm := quantum.NewIBMClient(cfg.IBMQuantumEndpoint, cfg.IBMQuantumAPIKey)
	qs := quantum.NewService(gen, ibm)
	hub := stream.NewHub()

	sim := simulator.New(store, qs, gen, hub, nil, simulator.Config{
		IntervalMs:          int(cfg.SimulationInterval.Milliseconds()),
		ConnectionsPerBatch: cfg.SimulationBatchSize,
		AnomalyRate:         cfg.SimulationAnomalyRate,
		OrganizationID:      cfg.DefaultOrganizationID,
	})
	if simulate {
		if _, err := sim.Start(simulator.Overrides{}); err != nil {
			return err
		}
	}

	h := handlers.New(handlers.Deps{
		Store:                 store,
		Quantum:               qs,
		Visualizer:            quantum.NewVisualizer(cfg.VisualizationDir, qs),
		Generator:             gen,
		Simulation:            sim,
		Stream:                hub,
		DefaultOrganizationID: cfg.DefaultOrganizationID,
	})
	r := server.NewRouter(cfg, h, store, server.RouterOptions{RateLimit: rateLimit, RateBurst: rateBurst})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received")
	stats := sim.Stop()
	slog.Info("simulator stopped", "total_connections", stats.TotalConnections)
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
