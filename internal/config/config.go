// Package config loads service configuration from an optional TOML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	GCP    GCPConfig    `toml:"gcp"`
	Auth   AuthConfig   `toml:"auth"`
	Worker WorkerConfig `toml:"worker"`
	Notion NotionConfig `toml:"notion"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `toml:"port"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

// StoreConfig selects and configures the entity-store backend.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite" or "bigquery".
	Backend    string `toml:"backend"`
	SQLitePath string `toml:"sqlite_path"`
}

// GCPConfig configures the BigQuery store and the statement blob bucket.
type GCPConfig struct {
	Project string `toml:"project"`
	Dataset string `toml:"dataset"`
	Bucket  string `toml:"bucket"`
}

// AuthConfig configures identity resolution.
type AuthConfig struct {
	// JWTSecret verifies bearer tokens; the token's subject claim is the
	// owner id.
	JWTSecret string `toml:"jwt_secret"`
	// DevHeaderFallback, when true, accepts the X-User-ID header instead of
	// a token. Development only.
	DevHeaderFallback bool `toml:"dev_header_fallback"`
}

// WorkerConfig configures the daily materializer job.
type WorkerConfig struct {
	// DailyHour is the local hour (0-23) at which the daily job runs.
	DailyHour int `toml:"daily_hour"`
	// MetricsPort exposes /metrics from the worker process.
	MetricsPort int `toml:"metrics_port"`
}

// NotionConfig configures the transaction export.
type NotionConfig struct {
	Token      string `toml:"token"`
	DatabaseID string `toml:"database_id"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Store:  StoreConfig{Backend: BackendSQLite, SQLitePath: "financialtracker.db"},
		GCP:    GCPConfig{Dataset: "finance"},
		Auth:   AuthConfig{DevHeaderFallback: false},
		Worker: WorkerConfig{DailyHour: 2, MetricsPort: 9090},
	}
}

// Load reads the TOML file at path (skipped if path is empty or missing) and
// then applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("Load: decoding %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("Load: reading %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides file values with FINTRACKER_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FINTRACKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FINTRACKER_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("FINTRACKER_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("FINTRACKER_GCP_PROJECT"); v != "" {
		cfg.GCP.Project = v
	}
	if v := os.Getenv("FINTRACKER_GCP_DATASET"); v != "" {
		cfg.GCP.Dataset = v
	}
	if v := os.Getenv("FINTRACKER_GCS_BUCKET"); v != "" {
		cfg.GCP.Bucket = v
	}
	if v := os.Getenv("FINTRACKER_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("FINTRACKER_DEV_HEADER_FALLBACK"); v != "" {
		cfg.Auth.DevHeaderFallback = v == "1" || v == "true"
	}
	if v := os.Getenv("FINTRACKER_DAILY_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil && hour >= 0 && hour <= 23 {
			cfg.Worker.DailyHour = hour
		}
	}
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		cfg.Notion.Token = v
	}
	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		cfg.Notion.DatabaseID = v
	}
}
