package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultGlobalConfig(t *testing.T) {
	cfg := DefaultGlobalConfig()
	if cfg.ReadinessTimeoutSeconds != 60 {
		t.Errorf("ReadinessTimeoutSeconds = %d, want 60", cfg.ReadinessTimeoutSeconds)
	}
	if cfg.Debug.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", cfg.Debug.RetentionDays)
	}
}

func TestLoadGlobalFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
images:
  chrome: selenium/standalone-chrome:4.20.0
video_image: selenium/video:custom
readiness_timeout_seconds: 120
debug:
  retention_days: 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadGlobalFrom(path)
	if err != nil {
		t.Fatalf("loadGlobalFrom: %v", err)
	}
	if cfg.Images["chrome"] != "selenium/standalone-chrome:4.20.0" {
		t.Errorf("Images[chrome] = %q", cfg.Images["chrome"])
	}
	if cfg.VideoImage != "selenium/video:custom" {
		t.Errorf("VideoImage = %q", cfg.VideoImage)
	}
	if cfg.ReadinessTimeoutSeconds != 120 {
		t.Errorf("ReadinessTimeoutSeconds = %d, want 120", cfg.ReadinessTimeoutSeconds)
	}
	if cfg.Debug.RetentionDays != 3 {
		t.Errorf("RetentionDays = %d, want 3", cfg.Debug.RetentionDays)
	}
}

func TestLoadGlobalMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadGlobalFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadGlobalFrom: %v", err)
	}
	if cfg.ReadinessTimeoutSeconds != 60 {
		t.Errorf("missing file should keep defaults, got %d", cfg.ReadinessTimeoutSeconds)
	}
}

func TestLoadGlobalEnvOverride(t *testing.T) {
	t.Setenv("GRIDBOX_VIDEO_IMAGE", "selenium/video:env")
	t.Setenv("GRIDBOX_READINESS_TIMEOUT", "90s")

	cfg, err := loadGlobalFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadGlobalFrom: %v", err)
	}
	if cfg.VideoImage != "selenium/video:env" {
		t.Errorf("VideoImage = %q, want env override", cfg.VideoImage)
	}
	if cfg.ReadinessTimeout() != 90*time.Second {
		t.Errorf("ReadinessTimeout = %v, want 90s", cfg.ReadinessTimeout())
	}
}

func TestLoadGlobalZeroTimeoutRestoresDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("readiness_timeout_seconds: -5\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadGlobalFrom(path)
	if err != nil {
		t.Fatalf("loadGlobalFrom: %v", err)
	}
	if cfg.ReadinessTimeoutSeconds != 60 {
		t.Errorf("negative timeout should fall back to default, got %d", cfg.ReadinessTimeoutSeconds)
	}
}
