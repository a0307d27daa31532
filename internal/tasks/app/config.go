package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/tasks/internal/tasks/session"
	"github.com/aussiebroadwan/tasks/pkg/cryptox"
	"github.com/aussiebroadwan/tasks/pkg/jwtx"
)

// Supported backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	SessionRedis  = "redis"
	SessionMemory = "memory"
)

type Config struct {
	Env                 string        `yaml:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        `yaml:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        `yaml:"log_format"`            // Log format (json, text) (default: json)
	Port                int           `yaml:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)

	DBDriver     string `yaml:"db_driver"`     // postgres or sqlite (default: postgres)
	DatabaseURL  string `yaml:"database_url"`  // Postgres DSN (default: built from NAME_USER, PASS_WEB, DB)
	DatabaseFile string `yaml:"database_file"` // SQLite file (default: tasks.db)
	DBMaxConns   int    `yaml:"db_max_conns"`  // Postgres pool size (default: 10)

	SessionDriver string `yaml:"session_driver"` // redis or memory (default: redis)
	RedisURL      string `yaml:"redis_url"`      // (default: redis://redis:6379/0)

	JWTSecret  string        `yaml:"jwt_secret"`  // HS256 secret; empty generates an ephemeral one
	Issuer     string        `yaml:"issuer"`      // iss claim (default: tasks-api)
	AccessTTL  time.Duration `yaml:"access_ttl"`  // (default: 30m)
	RefreshTTL time.Duration `yaml:"refresh_ttl"` // (default: 24h)
	SessionTTL time.Duration `yaml:"session_ttl"` // cached refresh token lifetime (default: 168h)

	BcryptCost     int `yaml:"bcrypt_cost"`      // (default: 12)
	TokenCacheSize int `yaml:"token_cache_size"` // verified-token LRU entries, 0 disables (default: 1024)
}

func defaultConfig() Config {
	return Config{
		Env:                 "dev",
		LogLevel:            "info",
		LogFormat:           "json",
		Port:                8080,
		ShutdownGracePeriod: 10 * time.Second,

		DBDriver:     DriverPostgres,
		DatabaseURL:  legacyDatabaseURL(),
		DatabaseFile: "tasks.db",
		DBMaxConns:   10,

		SessionDriver: SessionRedis,
		RedisURL:      "redis://redis:6379/0",

		Issuer:     "tasks-api",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
		SessionTTL: session.DefaultTTL,

		BcryptCost:     cryptox.DefaultPasswordCost,
		TokenCacheSize: 1024,
	}
}

// LoadConfig layers defaults, the optional YAML file named by
// TASKS_CONFIG_FILE, and environment variables, in that order.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("TASKS_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)

	cfg.DBDriver = getEnvOrDefault("TASKS_DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseURL = getEnvOrDefault("TASKS_DATABASE_URL", cfg.DatabaseURL)
	cfg.DatabaseFile = getEnvOrDefault("TASKS_DATABASE_FILE", cfg.DatabaseFile)
	cfg.DBMaxConns = getEnvIntOrDefault("TASKS_DB_MAX_CONNS", cfg.DBMaxConns)

	cfg.SessionDriver = getEnvOrDefault("TASKS_SESSION_DRIVER", cfg.SessionDriver)
	cfg.RedisURL = getEnvOrDefault("TASKS_REDIS_URL", cfg.RedisURL)

	cfg.JWTSecret = getEnvOrDefault("TASKS_JWT_SECRET", cfg.JWTSecret)
	cfg.Issuer = getEnvOrDefault("TASKS_ISSUER", cfg.Issuer)
	cfg.AccessTTL = getEnvDurationOrDefault("TASKS_ACCESS_TTL", cfg.AccessTTL)
	cfg.RefreshTTL = getEnvDurationOrDefault("TASKS_REFRESH_TTL", cfg.RefreshTTL)
	cfg.SessionTTL = getEnvDurationOrDefault("TASKS_SESSION_TTL", cfg.SessionTTL)

	cfg.BcryptCost = getEnvIntOrDefault("TASKS_BCRYPT_COST", cfg.BcryptCost)
	cfg.TokenCacheSize = getEnvIntOrDefault("TASKS_TOKEN_CACHE_SIZE", cfg.TokenCacheSize)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and non-positive lifetimes.
func (c Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database url is required for the postgres driver"))
		}
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("database file is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db driver %q", c.DBDriver))
	}

	switch c.SessionDriver {
	case SessionRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("redis url is required for the redis session driver"))
		}
	case SessionMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown session driver %q", c.SessionDriver))
	}

	for name, ttl := range map[string]time.Duration{
		"access ttl":  c.AccessTTL,
		"refresh ttl": c.RefreshTTL,
		"session ttl": c.SessionTTL,
	} {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, ttl))
		}
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// legacyDatabaseURL builds a DSN from the NAME_USER, PASS_WEB and DB
// variables of the compose setup, with the database at host "db".
func legacyDatabaseURL() string {
	user, pass, db := os.Getenv("NAME_USER"), os.Getenv("PASS_WEB"), os.Getenv("DB")
	if db == "" {
		db = "tasks"
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     "db:5432",
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else if user != "" {
		u.User = url.User(user)
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
