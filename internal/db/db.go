package db

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

func getenvInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

// Connect opens a pgx-backed sqlx handle and verifies connectivity so a
// bad DSN fails at startup, not on the first request.
func Connect(dsn string) (*sqlx.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
	}
	cfg.ConnectTimeout = 5 * time.Second

	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")

	db.SetMaxOpenConns(getenvInt("DB_MAX_OPEN", 25))
	db.SetMaxIdleConns(getenvInt("DB_MAX_IDLE", 25))
	db.SetConnMaxLifetime(time.Duration(getenvInt("DB_MAX_LIFETIME", 300)) * time.Second)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db: failed to connect to Postgres: %w", err)
	}

	var tmp int
	if err := db.QueryRow("SELECT 1").Scan(&tmp); err != nil {
		return nil, fmt.Errorf("db: health check failed: %w", err)
	}

	return db, nil
}
