package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CALCSTEPS_MAX_DEPTH", "CALCSTEPS_MODE", "CALCSTEPS_WORKERS",
		"CALCSTEPS_HTTP_ADDR", "CALCSTEPS_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2, cfg.Steps.MaxDepth)
	assert.True(t, cfg.Steps.ChainDetection)
	assert.Equal(t, "derivative-steps", cfg.Stream.Mode)
	assert.Equal(t, ":3001", cfg.HTTP.Addr)
	assert.Equal(t, 1<<20, cfg.Stream.MaxLineBytes)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "calcsteps.yaml")

	cfg := DefaultConfig()
	cfg.Steps.MaxDepth = 4
	cfg.Stream.Workers = 8
	cfg.Logging.Format = "console"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "calcsteps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  mode: matrix\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "matrix", cfg.Stream.Mode)
	assert.Equal(t, 1, cfg.Stream.Workers)
	assert.Equal(t, 2, cfg.Steps.MaxDepth)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calcsteps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: [1, 2"), 0644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CALCSTEPS_MAX_DEPTH", "5")
	t.Setenv("CALCSTEPS_MODE", "integral")
	t.Setenv("CALCSTEPS_WORKERS", "not-a-number")
	t.Setenv("CALCSTEPS_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CALCSTEPS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Steps.MaxDepth)
	assert.Equal(t, "integral", cfg.Stream.Mode)
	assert.Equal(t, 1, cfg.Stream.Workers)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*Config){
		"negative depth": func(c *Config) { c.Steps.MaxDepth = -1 },
		"zero order":     func(c *Config) { c.Steps.MaxOrder = 0 },
		"bad mode":       func(c *Config) { c.Stream.Mode = "cube" },
		"zero workers":   func(c *Config) { c.Stream.Workers = 0 },
		"zero line":      func(c *Config) { c.Stream.MaxLineBytes = 0 },
		"zero body":      func(c *Config) { c.HTTP.MaxBodyBytes = 0 },
		"bad timeout":    func(c *Config) { c.HTTP.ReadTimeout = "soon" },
		"bad level":      func(c *Config) { c.Logging.Level = "loud" },
		"bad format":     func(c *Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTP.ReadTimeout = "2s"
	assert.Equal(t, 2*time.Second, cfg.GetReadTimeout())

	cfg.HTTP.WriteTimeout = "garbage"
	assert.Equal(t, 15*time.Second, cfg.GetWriteTimeout())
}
