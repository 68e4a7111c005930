package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const envPrefix = "BLOCKPRESS_"

// Config is the service configuration. Values come from defaults, then
// each TOML file in order, then the environment (.env included).
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Mongo       MongoConfig     `toml:"mongo"`
	Badger      BadgerConfig    `toml:"badger"`
	Redis       RedisConfig     `toml:"redis"`
	Auth        AuthConfig      `toml:"auth"`
	Logging     LoggingConfig   `toml:"logging"`
	Search      SearchConfig    `toml:"search"`
	RateLimit   RateLimitConfig `toml:"ratelimit"`
	Catalog     CatalogConfig   `toml:"catalog"`
}

type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	StaticDir      string   `toml:"static_dir"` // served under /static/, empty disables
}

type StorageConfig struct {
	Driver      string `toml:"driver"`       // "badger" or "mongo"
	SeedSamples bool   `toml:"seed_samples"` // insert sample posts into an empty store
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
	Timeout  string `toml:"timeout"` // e.g. "10s"
}

type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"` // empty disables redis
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"` // e.g. "72h"
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "console", "file"
	Dir    string   `toml:"dir"`    // directory for the log file
}

type SearchConfig struct {
	ReindexSchedule string `toml:"reindex_schedule"` // cron schedule, empty means hourly
	ResultLimit     int    `toml:"result_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTTL           string  `toml:"idle_ttl"`
}

type CatalogConfig struct {
	Driver string `toml:"driver"` // "static" or "mongo"
}

func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Driver:      "badger",
			SeedSamples: true,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "blockpress",
			Timeout:  "10s",
		},
		Badger: BadgerConfig{
			Path: "./data/blockpress",
		},
		Auth: AuthConfig{
			TokenTTL: "72h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"console"},
			Dir:    "logs",
		},
		Search: SearchConfig{
			ReindexSchedule: "@every 1h",
			ResultLimit:     50,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			IdleTTL:           "10m",
		},
		Catalog: CatalogConfig{
			Driver: "static",
		},
	}
}

// Load builds the configuration from the given TOML files. Later files
// override earlier ones and the environment overrides all of them.
func Load(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// a missing .env is normal outside local development
	_ = godotenv.Load()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if env := os.Getenv(envPrefix + "ENV"); env != "" {
		cfg.Environment = env
	}
	if host := os.Getenv(envPrefix + "SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	// PORT is what most hosting platforms set
	for _, key := range []string{"PORT", envPrefix + "SERVER_PORT"} {
		if port := os.Getenv(key); port != "" {
			if p, err := strconv.Atoi(strings.TrimPrefix(port, ":")); err == nil {
				cfg.Server.Port = p
			}
		}
	}
	if origins := os.Getenv(envPrefix + "ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	if driver := os.Getenv(envPrefix + "STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if seed := os.Getenv(envPrefix + "SEED_SAMPLES"); seed != "" {
		if b, err := strconv.ParseBool(seed); err == nil {
			cfg.Storage.SeedSamples = b
		}
	}
	if uri := os.Getenv(envPrefix + "MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if db := os.Getenv(envPrefix + "MONGO_DATABASE"); db != "" {
		cfg.Mongo.Database = db
	}
	if path := os.Getenv(envPrefix + "BADGER_PATH"); path != "" {
		cfg.Badger.Path = path
	}
	if addr := os.Getenv(envPrefix + "REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv(envPrefix + "REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if secret := os.Getenv(envPrefix + "JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if output := os.Getenv(envPrefix + "LOG_OUTPUT"); output != "" {
		cfg.Logging.Output = splitList(output)
	}
	if driver := os.Getenv(envPrefix + "CATALOG_DRIVER"); driver != "" {
		cfg.Catalog.Driver = driver
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the values Load cannot repair on its own.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "badger", "mongo":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Catalog.Driver {
	case "static", "mongo":
	default:
		return fmt.Errorf("unknown catalog driver %q", c.Catalog.Driver)
	}
	if c.Catalog.Driver == "mongo" && c.Storage.Driver != "mongo" {
		return fmt.Errorf("catalog driver mongo requires storage driver mongo")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Environment == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must be set in production")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (a AuthConfig) TTL() time.Duration {
	return parseDuration(a.TokenTTL, 72*time.Hour)
}

func (m MongoConfig) ConnectTimeout() time.Duration {
	return parseDuration(m.Timeout, 10*time.Second)
}

func (r RateLimitConfig) IdleDuration() time.Duration {
	return parseDuration(r.IdleTTL, 10*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}
