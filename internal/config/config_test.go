package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "observer:\n  lat: 40.7\n  lng: -74\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Observer.Latitude != 40.7 || cfg.Observer.Longitude != -74 {
		t.Fatalf("observer = %+v", cfg.Observer)
	}
	if cfg.CelestrakURL != DefaultCelestrakURL || cfg.N2YOURL != DefaultN2YOURL {
		t.Fatalf("upstreams = %q %q", cfg.CelestrakURL, cfg.N2YOURL)
	}
	if cfg.CacheTTL != 2*time.Hour || cfg.PollInterval != 10*time.Second {
		t.Fatalf("durations = %v %v", cfg.CacheTTL, cfg.PollInterval)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0] != "active" {
		t.Fatalf("groups = %v", cfg.Groups)
	}
	if cfg.TextureDir != DefaultTextureDir {
		t.Fatalf("texture dir = %q", cfg.TextureDir)
	}
	if cfg.PositionSeconds != 10 || cfg.AboveRadius != 70 {
		t.Fatalf("n2yo defaults = %d %d", cfg.PositionSeconds, cfg.AboveRadius)
	}
}

func TestLoadOverrides(t *testing.T) {
	body := `
cache_dir: /var/cache/satglobe
cache_ttl: 30m
poll_interval: 5s
n2yo_api_key: SECRET
groups: [stations, gps-ops]
textures:
  - name: day
    source: assets/imgs/globe-8K-blue.jpg
  - name: night
    source: https://example.org/night.png
    width: 2048
    night: true
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CacheDir != "/var/cache/satglobe" || cfg.CacheTTL != 30*time.Minute || cfg.PollInterval != 5*time.Second {
		t.Fatalf("overrides lost: %+v", cfg)
	}
	if cfg.N2YOAPIKey != "SECRET" || len(cfg.Groups) != 2 {
		t.Fatalf("overrides lost: %+v", cfg)
	}
	if cfg.Textures[0].Width != DefaultTextureWidth || cfg.Textures[1].Width != 2048 {
		t.Fatalf("texture widths = %d %d", cfg.Textures[0].Width, cfg.Textures[1].Width)
	}

	night, ok := cfg.Texture("night")
	if !ok || !night.Night {
		t.Fatalf("night texture = %+v %v", night, ok)
	}
	if _, ok := cfg.Texture("moon"); ok {
		t.Fatalf("unknown texture found")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "observer: [1, 2")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}
