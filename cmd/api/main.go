package main

import (
	"database/sql"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	server "pollen_tracker/internal/adapters/http_server"
	"pollen_tracker/internal/adapters/observability"
	redisad "pollen_tracker/internal/adapters/redis"
	"pollen_tracker/internal/app"
	"pollen_tracker/internal/domain"
	"pollen_tracker/internal/shared"
	pgrepo "pollen_tracker/internal/storage/postgres"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := pgrepo.New(db)
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	} else {
		log.Warn().Msg("REDIS_ADDR is empty; running without cache")
	}
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	s := app.NewSubmitService(repo, cache)

	var limiter *server.SubmitLimiter
	if cfg.SubmitRPS > 0 {
		limiter = server.NewSubmitLimiter(cfg.SubmitRPS, cfg.SubmitBurst)
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, S: s, Submit: limiter, MapsKey: cfg.MapsAPIKey})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
