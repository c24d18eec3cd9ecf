// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Normalize.
const (
	DefaultCelestrakURL    = "https://celestrak.org/NORAD/elements"
	DefaultN2YOURL         = "https://api.n2yo.com/rest/v1/satellite"
	DefaultCacheDir        = "cache"
	DefaultFallbackCatalog = "data/json/satellites.json"
	DefaultCacheTTL        = 2 * time.Hour
	DefaultPollInterval    = 10 * time.Second
	DefaultUpstreamTimeout = 15 * time.Second
	DefaultPositionSeconds = 10
	DefaultAboveRadius     = 70
	DefaultTextureWidth    = 4096
	DefaultTextureDir      = "textures"
)

// Config represents the root configuration file structure.
type Config struct {
	Observer        Observer      `yaml:"observer"`
	CelestrakURL    string        `yaml:"celestrak_url,omitempty"`
	N2YOURL         string        `yaml:"n2yo_url,omitempty"`
	N2YOAPIKey      string        `yaml:"n2yo_api_key,omitempty"`
	CacheDir        string        `yaml:"cache_dir,omitempty"`
	FallbackCatalog string        `yaml:"fallback_catalog,omitempty"`
	CategoriesFile  string        `yaml:"categories_file,omitempty"`
	CountriesFile   string        `yaml:"countries_file,omitempty"` // observer presets
	TextureDir      string        `yaml:"texture_dir,omitempty"`    // WebP textures written by the loader, served at /textures/
	Groups          []string      `yaml:"groups,omitempty"`         // CelesTrak groups prefetched by the loader
	Textures        []Texture     `yaml:"textures,omitempty"`       // globe textures prepared by the loader
	CacheTTL        time.Duration `yaml:"cache_ttl,omitempty"`
	PollInterval    time.Duration `yaml:"poll_interval,omitempty"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout,omitempty"`
	PositionSeconds int           `yaml:"position_seconds,omitempty"`
	AboveRadius     int           `yaml:"above_radius,omitempty"`
}

// Observer is the default ground observer.
type Observer struct {
	Latitude  float64 `yaml:"lat" json:"lat"`
	Longitude float64 `yaml:"lng" json:"lng"`
	Altitude  float64 `yaml:"alt" json:"alt"` // metres above sea level
}

// Texture returns the configured texture with the given name.
func (c *Config) Texture(name string) (Texture, bool) {
	for _, t := range c.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return Texture{}, false
}

// Texture is a globe texture converted to WebP for the viewer.
type Texture struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"` // URL or local path of an equirectangular image
	Width  int    `yaml:"width,omitempty"`
	Night  bool   `yaml:"night,omitempty"` // shown by the viewer in night mode
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()
	return &cfg, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.CelestrakURL == "" {
		c.CelestrakURL = DefaultCelestrakURL
	}
	if c.N2YOURL == "" {
		c.N2YOURL = DefaultN2YOURL
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.TextureDir == "" {
		c.TextureDir = DefaultTextureDir
	}
	if c.FallbackCatalog == "" {
		c.FallbackCatalog = DefaultFallbackCatalog
	}
	if len(c.Groups) == 0 {
		c.Groups = []string{"active"}
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if c.PositionSeconds <= 0 {
		c.PositionSeconds = DefaultPositionSeconds
	}
	if c.AboveRadius <= 0 {
		c.AboveRadius = DefaultAboveRadius
	}
	for i := range c.Textures {
		if c.Textures[i].Width <= 0 {
			c.Textures[i].Width = DefaultTextureWidth
		}
	}
}
