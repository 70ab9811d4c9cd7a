package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MKhiriev/go-collection-sync/internal/adapter"
	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/service"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
	"github.com/MKhiriev/go-collection-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	args := os.Args[1:]
	command, args := splitCommand(args)

	cfg, err := config.GetClientConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error getting configs: "+err.Error()))
		os.Exit(2)
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildVersion
	}

	log := logger.NewClientLogger("collection-sync-client", filepath.Dir(cfg.Storage.CollectionPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	// the sync service may swap the handle after a full sync
	defer func() { _ = storages.Collection.Close() }()

	clientVersion := models.NewAppBuildInfo(cfg.App.Version, buildDate, buildCommit).ClientVersion()
	remote, err := adapter.NewHTTPSyncClient(cfg.Adapter, clientVersion, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create sync adapter")
	}

	pool := workers.NewPool(cfg.Workers.PoolSize)
	services := service.NewClientServices(storages, remote, cfg, pool, log)

	if err = services.AuthService.Login(ctx, cfg.Adapter.Username, cfg.Adapter.Password); err != nil {
		report(models.SyncOutput{}, err)
		os.Exit(1)
	}

	if err = run(ctx, command, services, cfg, log); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, services *service.ClientServices, cfg *config.ClientConfig, log *logger.Logger) error {
	syncService := services.SyncService

	switch command {
	case commandStatus:
		out, err := syncService.SyncStatus(ctx)
		report(out, err)
		return err

	case commandUpload:
		err := syncService.FullUpload(ctx)
		reportDone("full upload", err)
		return err

	case commandDownload:
		err := syncService.FullDownload(ctx)
		reportDone("full download", err)
		return err
	}

	syncService.SetProgressFn(func(p models.NormalSyncProgress) bool {
		fmt.Println(progressStyle.Render(progressLine(p)))
		return ctx.Err() == nil
	})

	if cfg.Workers.SyncInterval <= 0 {
		out, err := syncService.Sync(ctx)
		report(out, err)
		return err
	}

	var lastErr error
	worker := workers.NewSyncWorker(syncService, cfg.Workers.SyncInterval, log, func(out models.SyncOutput, err error) {
		lastErr = err
		report(out, err)
	})
	if err := workers.NewWorkers(worker).Run(ctx); err != nil {
		return err
	}
	return lastErr
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
