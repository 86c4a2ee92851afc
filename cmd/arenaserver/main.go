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

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/qiankun/internal/api"
	"github.com/udisondev/qiankun/internal/config"
	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/db"
	"github.com/udisondev/qiankun/internal/game/encounter"
)

const ConfigPath = "config/arenaserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config
	cfgPath := ConfigPath
	if p := os.Getenv("QIANKUN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure slog
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("qiankun arena server starting")
	slog.Info("config loaded", "bind", cfg.BindAddress, "port", cfg.Port, "decision_timeout", cfg.DecisionTimeout)

	// Load game content
	if err := data.LoadSkills(); err != nil {
		return fmt.Errorf("loading skills: %w", err)
	}
	if err := data.LoadBeasts(); err != nil {
		return fmt.Errorf("loading beasts: %w", err)
	}

	// Connect to database
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	// Run migrations
	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	heroes := db.NewHeroRepository(database.Pool())
	reports := db.NewReportRepository(database.Pool())

	// Session manager owns every running battle.
	manager := encounter.NewManager(encounter.ManagerConfig{
		Heroes:          heroes,
		Reports:         reports,
		DecisionTimeout: cfg.DecisionTimeout,
		Retention:       cfg.SessionRetention,
	})
	defer manager.Close()

	gin.SetMode(gin.ReleaseMode)
	router := api.NewHandler(heroes, reports, manager).Router()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port),
		Handler: router,
	}

	// Run the HTTP server and the session reaper in parallel
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("arena server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		interval := cfg.ReaperInterval
		if interval <= 0 {
			interval = time.Minute
		}
		if err := manager.RunReaper(gctx, interval); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("session reaper: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("waiting for running battles to settle")
	return nil
}
