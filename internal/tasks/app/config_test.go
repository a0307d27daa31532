package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TASKS_CONFIG_FILE", "ENV", "PORT", "NAME_USER", "PASS_WEB", "DB",
		"TASKS_DB_DRIVER", "TASKS_DATABASE_URL", "TASKS_SESSION_DRIVER",
		"TASKS_ACCESS_TTL", "TASKS_SESSION_TTL", "TASKS_TOKEN_CACHE_SIZE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DriverPostgres, cfg.DBDriver)
	require.Equal(t, "postgres://db:5432/tasks?sslmode=disable", cfg.DatabaseURL)
	require.Equal(t, SessionRedis, cfg.SessionDriver)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL)
	require.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 604800*time.Second, cfg.SessionTTL)
	require.Equal(t, 12, cfg.BcryptCost)
	require.Empty(t, cfg.JWTSecret)
}

func TestLoadConfigLegacyDatabaseVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("NAME_USER", "app")
	t.Setenv("PASS_WEB", "s3cr:t")
	t.Setenv("DB", "todo")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "postgres://app:s3cr%3At@db:5432/todo?sslmode=disable", cfg.DatabaseURL)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
db_driver: sqlite
database_file: /tmp/t.db
session_driver: memory
access_ttl: 5m
token_cache_size: 0
`), 0o600))
	t.Setenv("TASKS_CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("TASKS_SESSION_TTL", "3600")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DBDriver)
	require.Equal(t, "/tmp/t.db", cfg.DatabaseFile)
	require.Equal(t, SessionMemory, cfg.SessionDriver)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, time.Hour, cfg.SessionTTL)
	require.Zero(t, cfg.TokenCacheSize)
}

func TestLoadConfigBadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.DBDriver = "mysql"
	require.ErrorContains(t, bad.Validate(), `unknown db driver "mysql"`)

	bad = cfg
	bad.SessionDriver = "memcached"
	require.ErrorContains(t, bad.Validate(), "unknown session driver")

	bad = cfg
	bad.AccessTTL = 0
	require.ErrorContains(t, bad.Validate(), "access ttl must be positive")

	bad = cfg
	bad.Port = 70000
	require.ErrorContains(t, bad.Validate(), "invalid port")
}
