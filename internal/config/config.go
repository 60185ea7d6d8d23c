package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Store backends for transactions, the processing log and bank accounts.
const (
	StoreSQLite   = "sqlite"
	StoreBigQuery = "bigquery"
)

// Statement sources.
const (
	SourceDrive = "drive"
	SourceGCS   = "gcs"
)

// Config carries everything the binaries need from the environment.
type Config struct {
	// Store selects the persistence backend: "sqlite" (default) or "bigquery".
	Store string
	// SQLitePath is the database file for the sqlite store.
	SQLitePath string
	// BigQueryProject and BigQueryDataset back the bigquery store.
	BigQueryProject string
	BigQueryDataset string

	// Source selects the statement source: "drive" (default) or "gcs".
	Source string
	// GoogleCredentialsFile is the service-account key used for Drive access.
	GoogleCredentialsFile string

	// Port is the API server port.
	Port string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Store:                 envOr("STATEMENT_SYNC_STORE", StoreSQLite),
		SQLitePath:            envOr("SQLITE_PATH", "statement-sync.db"),
		BigQueryProject:       os.Getenv("BQ_PROJECT_ID"),
		BigQueryDataset:       envOr("BQ_DATASET", "finance"),
		Source:                envOr("STATEMENT_SYNC_SOURCE", SourceDrive),
		GoogleCredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE"),
		Port:                  envOr("PORT", "8080"),
	}

	switch cfg.Store {
	case StoreSQLite, StoreBigQuery:
	default:
		return nil, fmt.Errorf("Load: unknown store backend %q", cfg.Store)
	}
	if cfg.Store == StoreBigQuery && cfg.BigQueryProject == "" {
		return nil, fmt.Errorf("Load: BQ_PROJECT_ID is required for the bigquery store")
	}

	switch cfg.Source {
	case SourceDrive, SourceGCS:
	default:
		return nil, fmt.Errorf("Load: unknown statement source %q", cfg.Source)
	}
	if cfg.Source == SourceDrive && cfg.GoogleCredentialsFile == "" {
		return nil, fmt.Errorf("Load: GOOGLE_SERVICE_ACCOUNT_KEY_FILE is required for the drive source")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
