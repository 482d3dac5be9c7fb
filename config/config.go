package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	LayersDir       string
	OutputDir       string
	Collection      string
	CollectionFile  string
	Count           int
	Seed            uint64
	Workers         int
	ContinueOnError bool
	ThumbSize       uint
	Backdrop        string
	Quality         int
	Port            string
	BaseURL         string
	PgHost          string
	PgPort          string
	PgUser          string
	PgPass          string
	PgDBName        string
	PgSSLMode       string
}

// Load reads .env when present and builds the config from the environment.
// Unset values fall back to the defaults of the robusnipe batch.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		LayersDir:      getenv("LAYERS_DIR", "."),
		OutputDir:      getenv("OUTPUT_DIR", "."),
		Collection:     getenv("COLLECTION", "robusnipe"),
		CollectionFile: os.Getenv("COLLECTION_FILE"),
		Backdrop:       os.Getenv("BACKDROP"),
		Port:           getenv("PORT", "8000"),
		BaseURL:        os.Getenv("BASE_URL"),
		PgHost:         os.Getenv("PG_HOST"),
		PgPort:         getenv("PG_PORT", "5432"),
		PgUser:         os.Getenv("PG_USER"),
		PgPass:         os.Getenv("PG_PASS"),
		PgDBName:       os.Getenv("PG_DBNAME"),
		PgSSLMode:      getenv("PG_SSLMODE", "disable"),
	}

	var err error
	if cfg.Count, err = intEnv("NFT_COUNT", 10000); err != nil {
		return nil, err
	}
	if cfg.Workers, err = intEnv("WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.Quality, err = intEnv("JPEG_QUALITY", 85); err != nil {
		return nil, err
	}
	thumb, err := intEnv("THUMB_SIZE", 0)
	if err != nil {
		return nil, err
	}
	if thumb < 0 {
		return nil, fmt.Errorf("THUMB_SIZE must not be negative, got %d", thumb)
	}
	cfg.ThumbSize = uint(thumb)

	if v := os.Getenv("SEED"); v != "" {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid SEED %q: %w", v, err)
		}
	}
	if v := os.Getenv("CONTINUE_ON_ERROR"); v != "" {
		if cfg.ContinueOnError, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid CONTINUE_ON_ERROR %q: %w", v, err)
		}
	}

	return cfg, nil
}

// DatabaseEnabled reports whether a registry database is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.PgHost != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
