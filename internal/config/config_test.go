package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE", "/tmp/key.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite default", cfg.Store)
	}
	if cfg.Source != SourceDrive {
		t.Errorf("Source = %q, want drive default", cfg.Source)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE", "/tmp/key.json")
		t.Setenv("STATEMENT_SYNC_STORE", "redis")
		if _, err := Load(); err == nil {
			t.Fatal("want error for unknown store backend")
		}
	})

	t.Run("bigquery needs project", func(t *testing.T) {
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE", "/tmp/key.json")
		t.Setenv("STATEMENT_SYNC_STORE", "bigquery")
		t.Setenv("BQ_PROJECT_ID", "")
		if _, err := Load(); err == nil {
			t.Fatal("want error when BQ_PROJECT_ID is missing")
		}
	})

	t.Run("drive needs credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE", "")
		if _, err := Load(); err == nil {
			t.Fatal("want error when credentials file is missing")
		}
	})
}
