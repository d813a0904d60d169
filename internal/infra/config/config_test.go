package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  environment: staging
http:
  address: ":9000"
auth:
  accessSecret: file-access
  refreshSecret: file-refresh
  accessTokenTtl: 5m
storage:
  driver: memory
`), 0o600))
	isolateEnv(t, dir)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_REFRESH_SECRET", "env-refresh")
	t.Setenv("FRONTEND_URL", "https://shelf.example, https://admin.shelf.example")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, "file-access", cfg.Auth.AccessSecret)
	require.Equal(t, "env-refresh", cfg.Auth.RefreshSecret)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	require.Equal(t, []string{"https://shelf.example", "https://admin.shelf.example"}, cfg.HTTP.AllowedOrigins)
	require.True(t, cfg.App.IsProduction())
	require.Equal(t, DriverMemory, cfg.StorageDriver())
}

func TestLoad_DotEnvFillsMissingVariables(t *testing.T) {
	dir := t.TempDir()
	isolateEnv(t, dir)
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("JWT_SECRET=dot-access\nJWT_REFRESH_SECRET=dot-refresh\nPORT=4000\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "empty.yaml"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.yaml"), []byte("{}\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dot-access", cfg.Auth.AccessSecret)
	require.Equal(t, ":4000", cfg.HTTP.Address)
}

func TestValidate_RejectsBadSecrets(t *testing.T) {
	cfg := defaultConfig()
	require.Error(t, cfg.Validate())

	cfg.Auth.AccessSecret = "same"
	cfg.Auth.RefreshSecret = "same"
	require.Error(t, cfg.Validate())

	cfg.Auth.RefreshSecret = " same\n"
	require.Error(t, cfg.Validate())

	cfg.Auth.RefreshSecret = "different"
	require.NoError(t, cfg.Validate())
}

func TestStorageDriver_Resolution(t *testing.T) {
	cfg := defaultConfig()
	cfg.Auth.AccessSecret = "a"
	cfg.Auth.RefreshSecret = "b"
	require.Equal(t, DriverMemory, cfg.StorageDriver())

	cfg.Postgres.DSN = "postgres://localhost/shelf"
	require.Equal(t, DriverPostgres, cfg.StorageDriver())

	cfg.Mongo.URI = "mongodb://localhost:27017"
	require.Equal(t, DriverMongo, cfg.StorageDriver())

	cfg.Storage.Driver = DriverPostgres
	require.Equal(t, DriverPostgres, cfg.StorageDriver())
	require.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "sqlite"
	require.Error(t, cfg.Validate())

	cfg.Storage.Driver = DriverMongo
	cfg.Mongo.URI = ""
	require.Error(t, cfg.Validate())
}

// isolateEnv clears variables a developer shell might carry into the test.
func isolateEnv(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	for _, key := range []string{
		"APP_ENV", "NODE_ENV", "HTTP_ADDRESS", "PORT", "FRONTEND_URL",
		"JWT_SECRET", "JWT_REFRESH_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
		"LOGIN_MAX_ATTEMPTS", "LOGIN_ATTEMPT_WINDOW", "STORAGE_DRIVER",
		"MONGODB_URI", "MONGODB_DATABASE", "POSTGRES_DSN", "VALKEY_ENABLED", "VALKEY_ADDR",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
