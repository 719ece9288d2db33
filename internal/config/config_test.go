package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetForTest removes key from the environment and restores it afterwards.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DSN", "postgres://localhost/crowdfund")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 6, cfg.TrendingLimit)
	assert.False(t, cfg.PaymentsEnabled())
	assert.False(t, cfg.SupabaseEnabled())
}

func TestLoadFilesAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	unsetForTest(t, "DSN")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "7000")

	writeFile(t, dir, ".env", "DSN=file:crowdfund.db\n")
	writeFile(t, dir, "config.env", "PORT=9090\nDB_DRIVER=sqlite\nTOKEN_TTL=1h\nALLOWED_ORIGINS=http://a.test,http://b.test\nMIDTRANS_SERVER_KEY=SB-key\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "file:crowdfund.db", cfg.DSN)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "7000", cfg.Port, "environment wins over config.env")
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.PaymentsEnabled())
}

func TestLoadRequiresSecrets(t *testing.T) {
	dir := t.TempDir()
	unsetForTest(t, "DSN")
	unsetForTest(t, "JWT_SECRET")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestValidate(t *testing.T) {
	base := Config{
		DBDriver:       "pgx",
		DSN:            "postgres://x",
		JWTSecret:      "k",
		TokenTTL:       time.Hour,
		MaxUploadBytes: 1,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.DBDriver = "mysql"
	assert.Error(t, bad.Validate())

	bad = base
	bad.SupabaseURL = "https://project.supabase.co"
	assert.Error(t, bad.Validate())

	bad.SupabaseKey = "service-key"
	assert.NoError(t, bad.Validate())
	assert.True(t, bad.SupabaseEnabled())
}
