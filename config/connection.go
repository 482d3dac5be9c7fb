package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// NewConnection opens the registry database. The caller owns the handle.
func NewConnection(cfg *Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PgHost, cfg.PgPort, cfg.PgUser, cfg.PgPass, cfg.PgDBName, cfg.PgSSLMode,
	)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s:%s: %w", cfg.PgHost, cfg.PgPort, err)
	}
	return db, nil
}
