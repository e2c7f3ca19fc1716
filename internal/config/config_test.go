package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
database:
  url: postgres://localhost/ps?sslmode=disable
auth:
  jwt_secret: 0123456789abcdef0123
redis:
  url: redis://localhost:6379/0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "http://localhost:9090", cfg.Server.PublicURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "./files", cfg.Files.RootDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://file
auth:
  jwt_secret: file-secret-0123456789
`)
	t.Setenv("PS_DATABASE_URL", "postgres://env")
	t.Setenv("PS_HTTP_PORT", "7000")
	t.Setenv("PS_NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("PS_TELEGRAM_CHAT_ID", "-100123")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
	assert.Equal(t, "file-secret-0123456789", cfg.Auth.JWTSecret)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("PS_DATABASE_URL", "postgres://env")
	t.Setenv("PS_JWT_SECRET", "env-secret-0123456789")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_Validation(t *testing.T) {
	path := writeConfig(t, "database:\n  url: postgres://x\nauth:\n  jwt_secret: short\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "jwt_secret")

	path = writeConfig(t, "auth:\n  jwt_secret: long-enough-secret-123\n")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "database.url")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
