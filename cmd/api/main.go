package main

import (
	"net/http"
	"time"

	"vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/platform/config"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/router"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	opts := router.Options{
		ExportDir:   cfg.ExportDir,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      &log,
	}

	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer db.Close()
		opts.DB = db
		log.Info().Msg("using postgres storage")
	} else {
		log.Info().Msg("DB_DSN not set, using in-memory storage")
	}

	r := router.NewRouter(opts)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr()).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}
