package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 60*time.Second, cfg.Extraction.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "covera.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: postgres
  dsn: postgres://localhost/covera
  max_conns: 7
llm:
  model: gpt-4o
  timeout: 10s
`), 0o600))

	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/covera", cfg.Store.DSN)
	assert.Equal(t, int32(7), cfg.Store.MaxConns)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Driver = "mongo"
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)

	cfg = DefaultConfig()
	t.Setenv("OPENAI_API_KEY", "")
	err := cfg.RequireLLM()
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, CodeConfig, CodeOf(err))
}
