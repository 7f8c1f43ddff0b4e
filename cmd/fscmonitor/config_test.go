package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fsc "github.com/xmidt-org/fscmonitor"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "wrp", cfg.Platform.Adapter)
	assert.Equal(t, "ws://127.0.0.1:6666/api/v2/device", cfg.Platform.URL)
	assert.Empty(t, cfg.StatusAddr)

	// Missing file behaves like no file at all.
	cfg, err = loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "wrp", cfg.Platform.Adapter)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  remoteResponse: /run/fsc/response.txt
platform:
  adapter: http
  url: http://127.0.0.1:8080
  token: Basic abc
statusAddr: ":8090"
`), 0o644))
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Platform.Adapter)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Platform.URL)
	assert.Equal(t, "Basic abc", cfg.Platform.Token)
	assert.Equal(t, ":8090", cfg.StatusAddr)
	assert.Equal(t, "/run/fsc/response.txt", cfg.Paths.RemoteResponse)
	// Untouched fields keep their defaults.
	assert.Empty(t, cfg.Paths.DebugOverride)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))
	cfg, err := loadConfig(path)
	assert.Error(t, err)
	// Caller keeps going with the defaults.
	assert.Equal(t, "wrp", cfg.Platform.Adapter)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FSC_RESPONSE_FILE", "/lab/response.txt")
	t.Setenv("FSC_PLATFORM_ADAPTER", "log")
	t.Setenv("FSC_STATUS_ADDR", ":9999")
	cfg := defaultFileConfig()
	applyEnv(&cfg)
	assert.Equal(t, "/lab/response.txt", cfg.Paths.RemoteResponse)
	assert.Equal(t, "log", cfg.Platform.Adapter)
	assert.Equal(t, ":9999", cfg.StatusAddr)
}

func TestPathsMerge(t *testing.T) {
	defaults := fsc.DefaultOptions().Paths
	cfg := defaultFileConfig()
	cfg.Paths.RemoteResponse = "/lab/response.txt"
	merged := cfg.paths(defaults)
	assert.Equal(t, "/lab/response.txt", merged.RemoteResponse)
	assert.Equal(t, defaults.PrimaryVersion, merged.PrimaryVersion)
	assert.Equal(t, defaults.DebugOverride, merged.DebugOverride)
}
