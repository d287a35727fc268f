package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inDir runs the test from an empty directory so no stray .env or
// config.yaml is picked up.
func inDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inDir(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	inDir(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("PAYMENT_DELAY", "500ms")
	t.Setenv("RATE_LIMIT", "0")
	t.Setenv("SECURE_COOKIES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 500*time.Millisecond, cfg.PaymentDelay)
	assert.Zero(t, cfg.RateLimit)
	assert.True(t, cfg.SecureCookies)
}

func TestLoadYAMLFileAndClampCommission(t *testing.T) {
	dir := inDir(t)
	yaml := "DB_DSN: market.db\nCOMMISSION_RATE: 1.5\nLOG_LEVEL: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "market.db", cfg.DBDSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Defaults().CommissionRate, cfg.CommissionRate)
}

func TestLoadDotEnv(t *testing.T) {
	dir := inDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STATIC_DIR=./public\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("STATIC_DIR") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./public", cfg.StaticDir)
}
