package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-system/internal/config"
	"parking-system/internal/logging"
	"parking-system/internal/parking"
	"parking-system/internal/server"
	"parking-system/internal/store/memory"
	"parking-system/internal/store/postgres"
	"parking-system/internal/telemetry"
)

var (
	mode = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port = flag.String("port", "", "Port for HTTP server (defaults to APP_PORT)")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *port == "" {
		*port = cfg.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider := initTelemetry(ctx, cfg)
	logging.Init(cfg.OTelServiceName, cfg.Environment)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logging.Error(ctx, "failed to open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	fares := parking.NewFareCalculator(parking.FareRates{
		CarPerHour:  cfg.CarRatePerHour,
		BikePerHour: cfg.BikeRatePerHour,
		Discount:    cfg.RecurringDiscount,
		GracePeriod: cfg.GracePeriod,
	})
	service := parking.NewService(store, fares, parking.WithRecurringMinVisits(cfg.RecurringMinVisits))

	lifecycle, err := parking.NewInstrumentedService(service, telemetryProvider)
	if err != nil {
		log.Fatalf("Failed to initialize instrumentation: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, lifecycle, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, lifecycle, cfg, sigChan)
	case "both":
		runBoth(ctx, cancel, lifecycle, telemetryProvider, cfg, sigChan)
	default:
		log.Fatalf("Invalid mode: %s. Must be cli, server, or both", *mode)
	}

	shutdownTelemetry(telemetryProvider)
}

func initTelemetry(ctx context.Context, cfg *config.Config) *telemetry.Provider {
	if !cfg.OTelEnabled {
		return telemetry.NewNoop()
	}

	tp, err := telemetry.New(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Printf("Failed to initialize telemetry, continuing without it: %v", err)
		return telemetry.NewNoop()
	}
	return tp
}

func openStore(ctx context.Context, cfg *config.Config) (parking.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.New(cfg.CarSpots, cfg.BikeSpots), func() {}, nil
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db, cfg.CarSpots, cfg.BikeSpots); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewStore(db), func() { db.Close() }, nil
	default:
		return nil, nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}
}

func runCLI(ctx context.Context, cancel context.CancelFunc, lifecycle parking.Lifecycle, telemetryProvider *telemetry.Provider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	shell := parking.NewShell(lifecycle, os.Stdin, os.Stdout, telemetryProvider)
	shell.Run(ctx)
}

func runServer(ctx context.Context, cancel context.CancelFunc, lifecycle parking.Lifecycle, cfg *config.Config, sigChan chan os.Signal) {
	srv := server.NewServer(*port, lifecycle, cfg.OTelServiceName)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		shutdownServer(ctx, srv)
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx, "server error", slog.Any("error", err))
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, lifecycle parking.Lifecycle, telemetryProvider *telemetry.Provider, cfg *config.Config, sigChan chan os.Signal) {
	srv := server.NewServer(*port, lifecycle, cfg.OTelServiceName)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		shell := parking.NewShell(lifecycle, os.Stdin, os.Stdout, telemetryProvider)
		shell.Run(ctx)
		close(cliDone)
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "server error", slog.Any("error", err))
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownServer(context.Background(), srv)
}

func shutdownServer(ctx context.Context, srv *server.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server shutdown error", slog.Any("error", err))
	}
}

func shutdownTelemetry(telemetryProvider *telemetry.Provider) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
