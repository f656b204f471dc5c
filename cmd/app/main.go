package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osse101/ItemForge_Go/internal/bootstrap"
	"github.com/osse101/ItemForge_Go/internal/config"
	"github.com/osse101/ItemForge_Go/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	if warnings, err := config.ValidateEnvWithWarnings(); err != nil {
		slog.Warn("Environment validation failed, continuing with defaults", "error", err)
	} else {
		for _, w := range warnings {
			slog.Warn(w)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("ItemForge exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		return err
	}

	events, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		repos.Close()
		return err
	}

	chain, err := bootstrap.InitializeRNG(cfg)
	if err != nil {
		repos.Close()
		return err
	}

	services := bootstrap.InitializeServices(cfg, repos, chain, events.Publisher)

	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:        events.Bus,
		EventLogService: services.Events,
		CatalogService:  services.Catalog,
		Registerer:      prometheus.DefaultRegisterer,
	}); err != nil {
		repos.Close()
		return err
	}

	if _, err := bootstrap.SyncCatalog(ctx, cfg.CatalogPath, services.Catalog); err != nil {
		repos.Close()
		return err
	}

	services.Stream = bootstrap.StartEventStream(events.Bus)
	background := bootstrap.StartBackgroundJobs(services, cfg)

	srv := server.NewServer(server.Options{
		Port:              cfg.Port,
		APIKey:            cfg.APIKey,
		AdminAPIKey:       cfg.AdminAPIKey,
		TrustedProxies:    cfg.TrustedProxies,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		RequestsPerWindow: cfg.RequestsPerWindow,
	}, services)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:       srv,
		Stream:       services.Stream,
		Background:   background,
		DeadLetter:   events.DeadLetter,
		Repositories: repos,
	})
	return err
}
