package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/catalogkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/cli"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/client"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/config"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/notify"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/services"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/storage"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/tokens"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
	"github.com/dmitrijs2005/catalogkeeper/internal/netx"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.LoadConfig()); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, cfg *config.Config) error {
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	store, err := tokens.Open(ctx, metadata.NewSQLiteRepository(db), logger)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}

	transport, err := netx.NewClient(cfg.APIBaseURL, store,
		netx.WithTimeout(cfg.RequestTimeout),
		netx.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	gw := client.NewHTTPClient(transport, logger, client.WithCreatePath(cfg.CreatePath))

	catalog := services.NewCatalog(gw, store, notify.NewConsole(os.Stdout), logger)
	logger.Info(ctx, "catalog client started", "api", cfg.APIBaseURL)

	cli.NewApp(catalog, os.Stdin, os.Stdout, logger).Run(ctx)
	return nil
}
