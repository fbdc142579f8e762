package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"quarto/internal/config"
)

func TestLoadDefaultsWithEnvKeysAndExpandedPaths(t *testing.T) {
	t.Setenv("IGDB_API_KEY", "igdb-env-key")
	t.Setenv("OMDB_API_KEY", "omdb-env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCatalog := filepath.Join(tempHome, ".local", "share", "quarto", "catalog.db")
	if cfg.Paths.CatalogPath != wantCatalog {
		t.Fatalf("unexpected catalog path: got %q want %q", cfg.Paths.CatalogPath, wantCatalog)
	}
	if cfg.Paths.ImageDir != filepath.Join(tempHome, ".local", "share", "quarto", "images") {
		t.Fatalf("unexpected image dir: %q", cfg.Paths.ImageDir)
	}
	if cfg.Sources.IGDB.APIKey != "igdb-env-key" {
		t.Fatalf("expected IGDB key from env, got %q", cfg.Sources.IGDB.APIKey)
	}
	if cfg.Sources.OMDB.APIKey != "omdb-env-key" {
		t.Fatalf("expected OMDb key from env, got %q", cfg.Sources.OMDB.APIKey)
	}
	if cfg.Sources.OpenLibrary.BaseURL != config.Default().Sources.OpenLibrary.BaseURL {
		t.Fatalf("unexpected Open Library base url: %q", cfg.Sources.OpenLibrary.BaseURL)
	}
	if cfg.Fetch.RequestsPerSecond != 2.0 {
		t.Fatalf("unexpected rate default: %v", cfg.Fetch.RequestsPerSecond)
	}
	if cfg.Fetch.MergeThreshold != 5.0 {
		t.Fatalf("unexpected merge threshold default: %v", cfg.Fetch.MergeThreshold)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("IGDB_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "quarto.toml")

	payload := `
[paths]
catalog_path = "` + filepath.Join(tempDir, "catalog.db") + `"

[fetch]
requests_per_second = 0.5

[sources.igdb]
api_key = "file-key"
base_url = "https://igdb.example.test/v4/"

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected resolved existing path %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.CatalogPath != filepath.Join(tempDir, "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.Paths.CatalogPath)
	}
	if cfg.Fetch.RequestsPerSecond != 0.5 {
		t.Fatalf("unexpected rate: %v", cfg.Fetch.RequestsPerSecond)
	}
	if cfg.Sources.IGDB.APIKey != "file-key" {
		t.Fatalf("expected key from file, got %q", cfg.Sources.IGDB.APIKey)
	}
	if cfg.Sources.IGDB.BaseURL != "https://igdb.example.test/v4" {
		t.Fatalf("expected trimmed base url, got %q", cfg.Sources.IGDB.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowered log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "quarto.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown logging format")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty sample config: %v", err)
	}
}
