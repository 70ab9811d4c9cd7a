package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/handler"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/server"
	"github.com/MKhiriev/go-collection-sync/internal/service"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("collection-sync-server")
	cfg, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildVersion
	}
	if err = cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("invalid server configs")
	}

	log.Debug().Str("address", cfg.Server.HTTPAddress).Str("collections", cfg.Storage.Collections.BaseDir).Msg("received configs")

	ctx := context.Background()
	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	pool := workers.NewPool(cfg.Workers.PoolSize)
	services, err := service.NewServices(storages, cfg, pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}
	defer services.SyncServer.Close()

	if err = services.AuthService.SeedUsers(ctx, cfg.Server.Users); err != nil {
		log.Fatal().Err(err).Msg("error seeding users")
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	bg := workers.NewWorkers(
		workers.NewSessionSweeper(services.SyncServer, cfg.Workers.SweepInterval, log),
	)

	srv, err := server.NewServer(handlers, cfg.Server, bg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(); err != nil {
		log.Err(err).Msg("server stopped with error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
