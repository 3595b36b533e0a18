package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int      `env:"TEST_CFG_PORT" envDefault:"5000"`
	LogLevel string   `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Origins  []string `env:"TEST_CFG_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func noDotenv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg, noDotenv(t)))

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Origins)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_ORIGINS", "https://a.example,https://b.example")

	var cfg testConfig
	require.NoError(t, Load(&cfg, noDotenv(t)))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_DOTENV_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TEST_CFG_DOTENV_LEVEL") })

	var cfg struct {
		LogLevel string `env:"TEST_CFG_DOTENV_LEVEL" envDefault:"info"`
	}
	require.NoError(t, Load(&cfg, path))
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvWinsOverDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_PORT=7000\n"), 0o600))
	t.Setenv("TEST_CFG_PORT", "8000")

	var cfg testConfig
	require.NoError(t, Load(&cfg, path))
	assert.Equal(t, 8000, cfg.Port)
}

func TestLoad_MalformedDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT VALID LINE 'unterminated\n"), 0o600))

	var cfg testConfig
	err := Load(&cfg, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dotenv")
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg struct {
		Secret string `env:"TEST_CFG_SECRET,required"`
	}
	err := Load(&cfg, noDotenv(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg, noDotenv(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
