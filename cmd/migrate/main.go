package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"github.com/jhoicas/billmaster-api/internal/infrastructure/postgres"
	"github.com/jhoicas/billmaster-api/pkg/config"
	"github.com/jhoicas/billmaster-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "billmaster-migrate"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Strs("applied", applied).Msg("migración fallida")
	}
	if len(applied) == 0 {
		log.Info().Msg("esquema al día, nada que aplicar")
		return
	}
	log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
}
