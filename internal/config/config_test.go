package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ITEMIZER_MODE_FILE", filepath.Join(t.TempDir(), "missing.txt"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Logs.Retention)
	assert.Equal(t, 24*time.Hour, cfg.Logs.PurgeInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoadModeFile(t *testing.T) {
	t.Setenv("ITEMIZER_MODE_FILE", writeFile(t, "configType.txt", "production\n"))
	t.Setenv("SECRET_KEY", "a-real-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "a-real-secret", cfg.Security.SecretKey)
}

func TestLoadProductionNeedsSecret(t *testing.T) {
	t.Setenv("ITEMIZER_MODE_FILE", writeFile(t, "configType.txt", "production"))

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadUnknownMode(t *testing.T) {
	t.Setenv("ITEMIZER_MODE_FILE", writeFile(t, "configType.txt", "staging"))

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadLegacyAndPrefixedEnv(t *testing.T) {
	t.Setenv("ITEMIZER_MODE_FILE", "")
	t.Setenv("DATABASE_URI", "postgres://itemizer@localhost/itemizer")
	t.Setenv("ITEMIZER_DATABASE_DRIVER", "postgres")
	t.Setenv("ITEMIZER_LOGS_RETENTION", "48h")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://itemizer@localhost/itemizer", cfg.Database.DSN)
	assert.Equal(t, 48*time.Hour, cfg.Logs.Retention)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("ITEMIZER_MODE_FILE", "")
	path := writeFile(t, "itemizer.yaml", `
database:
  driver: sqlite
  dsn: "file:itemizer.db"
kafka:
  enabled: true
  brokers: ["localhost:9092"]
server:
  allowed_origins: ["https://itemizer.example"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://itemizer.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ITEMIZER_MODE_FILE", "")
	t.Setenv("ITEMIZER_DATABASE_DRIVER", "oracle")

	_, err := Load("")
	require.Error(t, err)
}
