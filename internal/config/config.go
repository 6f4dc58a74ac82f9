// Package config handles global gridbox settings.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds global gridbox settings from ~/.gridbox/config.yaml.
type GlobalConfig struct {
	// Images pins browser family names to specific image tags,
	// overriding the built-in table.
	Images map[string]string `yaml:"images,omitempty"`

	// VideoImage overrides the recorder container image.
	VideoImage string `yaml:"video_image,omitempty"`

	// ReadinessTimeoutSeconds bounds how long Driver() waits for the
	// WebDriver endpoint to accept sessions.
	ReadinessTimeoutSeconds int `yaml:"readiness_timeout_seconds,omitempty"`

	Debug DebugConfig `yaml:"debug,omitempty"`
}

// DebugConfig holds debug logging settings.
type DebugConfig struct {
	// RetentionDays is how many days of debug logs to keep.
	RetentionDays int `yaml:"retention_days,omitempty"`
}

// DefaultGlobalConfig returns the default global configuration.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ReadinessTimeoutSeconds: 60,
		Debug: DebugConfig{
			RetentionDays: 7,
		},
	}
}

// GlobalConfigDir returns the gridbox config directory (~/.gridbox).
func GlobalConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gridbox"
	}
	return filepath.Join(homeDir, ".gridbox")
}

// LoadGlobal reads ~/.gridbox/config.yaml and applies environment overrides.
func LoadGlobal() (*GlobalConfig, error) {
	return loadGlobalFrom(filepath.Join(GlobalConfigDir(), "config.yaml"))
}

func loadGlobalFrom(path string) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, cfg) // Ignore unmarshal errors, use defaults
	}

	// Environment overrides
	if v := os.Getenv("GRIDBOX_VIDEO_IMAGE"); v != "" {
		cfg.VideoImage = v
	}
	if v := os.Getenv("GRIDBOX_READINESS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReadinessTimeoutSeconds = int(d / time.Second)
		}
	}

	if cfg.ReadinessTimeoutSeconds <= 0 {
		cfg.ReadinessTimeoutSeconds = DefaultGlobalConfig().ReadinessTimeoutSeconds
	}

	return cfg, nil
}

// ReadinessTimeout returns the readiness deadline as a duration.
func (c *GlobalConfig) ReadinessTimeout() time.Duration {
	return time.Duration(c.ReadinessTimeoutSeconds) * time.Second
}
