// config - источник загрузки конфигурации клиента.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	Backend  BackendConfig `yaml:"backend"`
	Session  SessionConfig `yaml:"session"`
	Storage  StorageConfig `yaml:"storage"`
	HTTP     HTTPConfig    `yaml:"http"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// BackendConfig — REST API социальной сети.
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"   env:"BACKEND_BASE_URL"   env-default:"http://127.0.0.1:8000/api/"`
	UserAgent string `yaml:"user_agent" env:"BACKEND_USER_AGENT" env-default:"social-client"`
}

// SessionConfig — параметры обновления access-токена.
type SessionConfig struct {
	RenewalWindow  time.Duration `yaml:"renewal_window"  env:"SESSION_RENEWAL_WINDOW"  env-default:"5m"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"SESSION_REFRESH_TIMEOUT" env-default:"10s"`
}

// StorageConfig — где живёт сессия между перезапусками.
// Driver: memory | file | redis | postgres.
type StorageConfig struct {
	Driver      string `yaml:"driver"       env:"STORAGE_DRIVER"       env-default:"file"`
	Path        string `yaml:"path"         env:"STORAGE_PATH"         env-default:".social-client/session.json"`
	RedisURL    string `yaml:"redis_url"    env:"STORAGE_REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"STORAGE_REDIS_PREFIX" env-default:"social:session:"`
	DatabaseURL string `yaml:"database_url" env:"STORAGE_DATABASE_URL"`
	Profile     string `yaml:"profile"      env:"STORAGE_PROFILE"      env-default:"default"`
}

// HTTPConfig — локальный прокси сессии.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// TimeoutConfig — таймауты запросов.
type TimeoutConfig struct {
	// Request — дедлайн входящего запроса прокси и исходящего запроса к backend.
	Request time.Duration `yaml:"request" env:"TIMEOUT_REQUEST" env-default:"15s"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	read := func(p string) (*Config, error) {
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return finish(&cfg)
	}

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		return read(p)
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return read("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return finish(&cfg)
}

func finish(c *Config) (*Config, error) {
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Session.RenewalWindow < 0 || c.Session.RefreshTimeout < 0 {
		return fmt.Errorf("session durations must not be negative")
	}

	switch c.Storage.Driver {
	case "memory", "file":
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for redis driver")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}
