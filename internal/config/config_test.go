package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/todod/internal/filter"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.SQLitePath != "todod.db" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if !cfg.TodayResetsStatus || cfg.BcryptCost != 12 || cfg.SchedulerBuffer != 16 {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.SortKey() != filter.SortCreatedDesc {
		t.Fatalf("unexpected default sort: %q", cfg.SortKey())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TODOD_BACKEND", "redis")
	t.Setenv("TODOD_REDIS_ADDR", "cache:6380")
	t.Setenv("TODOD_REDIS_DB", "2")
	t.Setenv("TODOD_DEFAULT_SORT", "due")
	t.Setenv("TODOD_TODAY_RESETS_STATUS", "false")
	t.Setenv("TODOD_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := cfg.StorageOptions()
	if opts.Backend != "redis" || opts.Redis.Addr != "cache:6380" || opts.Redis.DB != 2 {
		t.Fatalf("unexpected storage options: %+v", opts)
	}
	if cfg.SortKey() != filter.SortDueDateAsc {
		t.Fatalf("expected due-date-asc, got %q", cfg.SortKey())
	}
	if cfg.TodayResetsStatus {
		t.Fatal("expected today policy off from env")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todod.yaml")
	body := "storage:\n  backend: file\n  data_dir: /tmp/todod-data\nlocale: de\nscheduler_buffer: 4\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TODOD_LOCALE", "sv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.DataDir != "/tmp/todod-data" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.SchedulerBuffer != 4 {
		t.Fatalf("unexpected scheduler buffer: %d", cfg.SchedulerBuffer)
	}
	if cfg.Locale != "sv" {
		t.Fatalf("expected env to override file locale, got %q", cfg.Locale)
	}
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("unexpected backend: %q", cfg.Storage.Backend)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"TODOD_BACKEND":      "etcd",
		"TODOD_DEFAULT_SORT": "random",
		"TODOD_LOG_FORMAT":   "xml",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%s", name, value)
			}
		})
	}
}
