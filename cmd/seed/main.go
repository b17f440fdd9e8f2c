package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"os"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"pollen_tracker/internal/adapters/observability"
	"pollen_tracker/internal/app"
	"pollen_tracker/internal/domain"
	"pollen_tracker/internal/shared"
	pgrepo "pollen_tracker/internal/storage/postgres"
)

func main() {
	file := flag.String("file", "reviews.json", "JSON array of reviews to load")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("read seed file failed")
	}
	var reviews []domain.NewReview
	if err := json.Unmarshal(raw, &reviews); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("seed file must be a JSON array of reviews")
	}

	log.Info().
		Int("reviews", len(reviews)).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	seeder := app.NewSeedService(pgrepo.New(db))
	inserted, failed, err := seeder.SeedReviews(ctx, reviews, cfg.SeedWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding aborted")
	}
	log.Info().Int64("inserted", inserted).Int64("failed", failed).Msg("seeding completed")
}
