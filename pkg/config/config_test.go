package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
server:
  port: "9000"
  allowed_origins: ["https://app.enenni.com"]
db:
  host: "db"
  port: "5432"
  username: "wallet"
  dbname: "wallet"
  sslmode: "require"
auth:
  session_ttl: "1h"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfig), 0o600))
	return dir
}

func TestLoadReadsFileAndEnvironment(t *testing.T) {
	dir := writeConfig(t)
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("ANALYZE", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://app.enenni.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "db", cfg.DB.Host)
	assert.Equal(t, "pw", cfg.DB.Password)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "enenni_session", cfg.Auth.CookieName)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "/dashboard", cfg.Routes.DefaultLoginRedirect)
	assert.Equal(t, 10*time.Second, cfg.PriceFeed.Timeout)
	assert.True(t, cfg.Analyze)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	dir := writeConfig(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load(dir)
	assert.Error(t, err)
}
