// Command accountctl performs administrative account operations directly
// against the configured store.
//
//	accountctl create-admin -name "Ann Lee" -email ann@example.com
//	accountctl set-role -email ann@example.com -role USER
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cinefind/moviesearch/internal/app"
	"github.com/cinefind/moviesearch/internal/infrastructure/config"
	"github.com/cinefind/moviesearch/internal/infrastructure/db"
	"github.com/cinefind/moviesearch/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "accountctl:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr, Service: "moviesearch-accounts"})

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer store.Close()

	svc, err := app.NewAccountService(cfg, store, logger.Get())
	if err != nil {
		return err
	}

	return newCLI(svc, store.Accounts(), os.Stdin, int(os.Stdin.Fd()), os.Stdout, logger.Component("accountctl")).run(ctx, os.Args[1:])
}
