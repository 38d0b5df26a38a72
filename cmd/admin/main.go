package main

import (
	"context"
	"fmt"
	"os"

	"github.com/schooladmin/schooladmin/internal/app"
	"github.com/schooladmin/schooladmin/internal/config"
	"github.com/schooladmin/schooladmin/internal/logging"
)

func main() {
	cfg := config.Load()
	cfg.AutoMigrate = false

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	db, err := app.OpenDB(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cli := &commandLine{db: db, svc: app.NewServices(db, logger, nil)}
	if err := newRootCmd(cli).Execute(); err != nil {
		db.Close()
		os.Exit(1)
	}
}
