package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"pollen_tracker/internal/adapters/observability"
	"pollen_tracker/internal/shared"
)

// setupdb bootstraps a fresh Postgres: it connects with the admin DSN
// (superuser, "postgres" maintenance database), creates the application
// database if needed, then applies the SQL migrations to it. Safe to run
// repeatedly.
func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	dbName := databaseName(cfg.PostgresDSN)

	admin, err := sql.Open("postgres", cfg.AdminDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open admin failed")
	}
	if err := admin.Ping(); err != nil {
		log.Fatal().Err(err).Msg("admin ping failed; need superuser access to create the database")
	}

	if _, err := admin.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "duplicate_database" {
			log.Info().Str("db", dbName).Msg("database already exists")
		} else {
			log.Fatal().Err(err).Str("db", dbName).Msg("CREATE DATABASE failed")
		}
	} else {
		log.Info().Str("db", dbName).Msg("database created")
	}
	_ = admin.Close()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	n, err := applyMigrations(db, cfg.MigrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Int("files", n).Str("db", dbName).Msg("schema ready")
}

// databaseName pulls the database out of the DSN path, e.g.
// postgres://u:p@host:5432/pollen_db?sslmode=disable -> pollen_db.
func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || strings.Trim(u.Path, "/") == "" {
		return "pollen_db"
	}
	return strings.Trim(u.Path, "/")
}

func applyMigrations(db *sql.DB, dir string) (int, error) {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return 0, fmt.Errorf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			return 0, fmt.Errorf("exec %s: %w", f, err)
		}
		log.Info().Str("file", filepath.Base(f)).Msg("migration applied")
	}
	return len(files), nil
}
