package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vademecum/internal/codes"
	"vademecum/internal/config"
	"vademecum/internal/logging"
	"vademecum/internal/storage"
	"vademecum/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := watcher.NewService(db, codes.NewSyncService(db, cfg, logger), cfg, logger)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
