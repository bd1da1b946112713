// Package config resolves runtime settings from defaults, an optional YAML
// file and TODOD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sandeepkv93/todod/internal/filter"
	"github.com/sandeepkv93/todod/internal/kv"
	"github.com/sandeepkv93/todod/internal/storage"
)

type StorageConfig struct {
	Backend    string `yaml:"backend" env:"TODOD_BACKEND" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"TODOD_SQLITE_PATH" env-default:"todod.db"`
	DataDir    string `yaml:"data_dir" env:"TODOD_DATA_DIR" env-default:".todod"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"TODOD_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"TODOD_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"TODOD_REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"TODOD_REDIS_PREFIX" env-default:"todod:"`
}

type LogConfig struct {
	File   string `yaml:"file" env:"TODOD_LOG_FILE" env-default:"todod.log"`
	Level  string `yaml:"level" env:"TODOD_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"TODOD_LOG_FORMAT" env-default:"text"`
}

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`

	DefaultSort       string `yaml:"default_sort" env:"TODOD_DEFAULT_SORT" env-default:"created-desc"`
	Locale            string `yaml:"locale" env:"TODOD_LOCALE" env-default:"en"`
	TodayResetsStatus bool   `yaml:"today_resets_status" env:"TODOD_TODAY_RESETS_STATUS" env-default:"true"`
	BcryptCost        int    `yaml:"bcrypt_cost" env:"TODOD_BCRYPT_COST" env-default:"12"`
	SchedulerBuffer   int    `yaml:"scheduler_buffer" env:"TODOD_SCHEDULER_BUFFER" env-default:"16"`
}

// Load reads defaults, then the optional YAML file at path, then TODOD_*
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: read env: %w", err)
		}
		return cfg, cfg.Validate()
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: read env: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendSQLite, storage.BackendFile, storage.BackendRedis:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Storage.Backend)
	}
	if _, err := filter.ParseSortKey(c.DefaultSort); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("config: scheduler buffer must be positive, got %d", c.SchedulerBuffer)
	}
	return nil
}

// SortKey is DefaultSort resolved through the sort aliases.
func (c Config) SortKey() filter.SortKey {
	key, err := filter.ParseSortKey(c.DefaultSort)
	if err != nil {
		return filter.SortCreatedDesc
	}
	return key
}

func (c Config) StorageOptions() storage.OpenOptions {
	return storage.OpenOptions{
		Backend:    c.Storage.Backend,
		SQLitePath: c.Storage.SQLitePath,
		DataDir:    c.Storage.DataDir,
		Redis: kv.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}
