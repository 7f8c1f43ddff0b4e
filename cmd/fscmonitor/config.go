package main

import (
	"fmt"
	"os"

	fsc "github.com/xmidt-org/fscmonitor"
	"gopkg.in/yaml.v3"
)

// platformConfig selects and addresses the HAL adapter.
type platformConfig struct {
	Adapter string `yaml:"adapter"` // "wrp", "http" or "log"
	URL     string `yaml:"url"`
	Source  string `yaml:"source"` // WRP source locator for the wrp adapter
	Token   string `yaml:"token"`  // optional Authorization header value
}

// fileConfig is the optional YAML configuration of the binary. Everything has
// a working default; lab setups typically override only the paths.
type fileConfig struct {
	Paths struct {
		DebugOverride    string `yaml:"debugOverride"`
		PrimaryVersion   string `yaml:"primaryVersion"`
		SecondaryVersion string `yaml:"secondaryVersion"`
		RemoteResponse   string `yaml:"remoteResponse"`
	} `yaml:"paths"`
	Platform   platformConfig `yaml:"platform"`
	StatusAddr string         `yaml:"statusAddr"`
}

func defaultFileConfig() fileConfig {
	cfg := fileConfig{}
	cfg.Platform = platformConfig{
		Adapter: "wrp",
		URL:     "ws://127.0.0.1:6666/api/v2/device",
		Source:  "mac:000000000000/fsc",
	}
	return cfg
}

// loadConfig reads the YAML file over the defaults. An empty path or a
// missing file yields the defaults without error.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaultFileConfig(), fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// applyEnv layers environment overrides on top of the file config.
func applyEnv(cfg *fileConfig) {
	setIfEnv(&cfg.Paths.DebugOverride, "FSC_DEBUG_FILE")
	setIfEnv(&cfg.Paths.PrimaryVersion, "FSC_VERSION_FILE")
	setIfEnv(&cfg.Paths.SecondaryVersion, "FSC_VERSION_FILE_FALLBACK")
	setIfEnv(&cfg.Paths.RemoteResponse, "FSC_RESPONSE_FILE")
	setIfEnv(&cfg.Platform.Adapter, "FSC_PLATFORM_ADAPTER")
	setIfEnv(&cfg.Platform.URL, "FSC_PLATFORM_URL")
	setIfEnv(&cfg.Platform.Source, "FSC_PLATFORM_SOURCE")
	setIfEnv(&cfg.StatusAddr, "FSC_STATUS_ADDR")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// paths merges the configured path overrides into the defaults.
func (c fileConfig) paths(defaults fsc.Paths) fsc.Paths {
	out := defaults
	if c.Paths.DebugOverride != "" {
		out.DebugOverride = c.Paths.DebugOverride
	}
	if c.Paths.PrimaryVersion != "" {
		out.PrimaryVersion = c.Paths.PrimaryVersion
	}
	if c.Paths.SecondaryVersion != "" {
		out.SecondaryVersion = c.Paths.SecondaryVersion
	}
	if c.Paths.RemoteResponse != "" {
		out.RemoteResponse = c.Paths.RemoteResponse
	}
	return out
}
