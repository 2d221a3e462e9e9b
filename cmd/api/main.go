// @title           MovieSearch Accounts API
// @version         1.0
// @description     Account registration, sessions, password reset and role management for MovieSearch.
// @BasePath        /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cinefind/moviesearch/internal/app"
	"github.com/cinefind/moviesearch/internal/infrastructure/config"
	"github.com/cinefind/moviesearch/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Level: "error"}).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "moviesearch-accounts",
	})

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("application error")
		stop()
		os.Exit(1)
	}
}
