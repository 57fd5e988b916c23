package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/souqapp/classifieds-backend/internal/config"
	"github.com/souqapp/classifieds-backend/internal/db"
	"github.com/souqapp/classifieds-backend/internal/server"
)

func main() {
	_ = godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	srv, err := server.New(context.Background(), cfg, conn)
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting server")
	if err := srv.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
