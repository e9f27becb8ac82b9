package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("CLIPFORGE_DATABASE_URL", "")

	_, err := Load("")
	if err == nil {
		t.Error("expected error when database_url is missing")
	}
	if err.Error() != "database_url is required (env: CLIPFORGE_DATABASE_URL)" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("CLIPFORGE_DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 6161 {
		t.Errorf("expected HTTPPort 6161, got %d", cfg.HTTPPort)
	}
	if cfg.WorkerConcurrency != 2 {
		t.Errorf("expected WorkerConcurrency 2, got %d", cfg.WorkerConcurrency)
	}
	if cfg.WorkerPollInterval != time.Second {
		t.Errorf("expected WorkerPollInterval 1s, got %v", cfg.WorkerPollInterval)
	}
	if cfg.WorkerIdleBackoffMax != 4*time.Second {
		t.Errorf("expected WorkerIdleBackoffMax 4s, got %v", cfg.WorkerIdleBackoffMax)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected MaxRetries 3, got %d", cfg.MaxRetries)
	}
	if cfg.DownloadMaxBytes != int64(2<<30) {
		t.Errorf("expected DownloadMaxBytes 2GiB, got %d", cfg.DownloadMaxBytes)
	}
	if cfg.DownloadTimeout != 2*time.Minute {
		t.Errorf("expected DownloadTimeout 2m, got %v", cfg.DownloadTimeout)
	}
	if cfg.ProcessingDeadline != 30*time.Minute {
		t.Errorf("expected ProcessingDeadline 30m, got %v", cfg.ProcessingDeadline)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel info, got %s", cfg.LogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLIPFORGE_DATABASE_URL", "postgres://localhost/test")
	t.Setenv("CLIPFORGE_WORKER_CONCURRENCY", "8")
	t.Setenv("CLIPFORGE_RETRY_BASE_DELAY", "500ms")
	t.Setenv("CLIPFORGE_DOWNLOAD_MAX_BYTES", "1048576")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WorkerConcurrency != 8 {
		t.Errorf("expected WorkerConcurrency 8, got %d", cfg.WorkerConcurrency)
	}
	if cfg.RetryBaseDelay != 500*time.Millisecond {
		t.Errorf("expected RetryBaseDelay 500ms, got %v", cfg.RetryBaseDelay)
	}
	if cfg.DownloadMaxBytes != 1048576 {
		t.Errorf("expected DownloadMaxBytes 1048576, got %d", cfg.DownloadMaxBytes)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("CLIPFORGE_DATABASE_URL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "clipforge.yaml")
	content := []byte("database_url: postgres://filehost/clips\nworker_concurrency: 4\nclip_command: \"python3 clipper.py\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://filehost/clips" {
		t.Errorf("unexpected DatabaseURL: %s", cfg.DatabaseURL)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Errorf("expected WorkerConcurrency 4, got %d", cfg.WorkerConcurrency)
	}
	if cfg.ClipCommand != "python3 clipper.py" {
		t.Errorf("unexpected ClipCommand: %s", cfg.ClipCommand)
	}
}

func TestLoad_MissingConfigFileFails(t *testing.T) {
	t.Setenv("CLIPFORGE_DATABASE_URL", "postgres://localhost/test")

	_, err := Load("/nonexistent/clipforge.yaml")
	if err == nil {
		t.Error("expected error for explicitly named missing config file")
	}
}
