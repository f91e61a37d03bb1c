package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/mastermind/internal/app"
	"example.com/mastermind/internal/config"
	"example.com/mastermind/internal/logging"
	"example.com/mastermind/internal/migrate"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// .env только для локальной разработки, его отсутствие не ошибка
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("config")
	}

	log, err := logging.New(cfg.Log.Format, cfg.Log.Level, os.Stdout)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("logger")
	}
	log = log.With().Str("env", cfg.Env).Logger()

	if cfg.Postgres.RunMigrations {
		if err := migrate.Up(cfg.Postgres.URL, log); err != nil {
			log.Fatal().Err(err).Msg("migrations")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	web, err := webHandler()
	if err != nil {
		log.Fatal().Err(err).Msg("web assets")
	}
	a.Static(web)

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("bye")
}
