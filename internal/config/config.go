// Package config handles configuration loading for the route map pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Geocoding  Geocoding  `yaml:"geocoding"`
	Directions Directions `yaml:"directions"`
	Tiles      Tiles      `yaml:"tiles"`
	Overlay    Overlay    `yaml:"overlay"`
	StaticMap  StaticMap  `yaml:"static_map"`

	// applied to every outbound request
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Geocoding configures the place search provider (Nominatim compatible).
type Geocoding struct {
	BaseURL string `yaml:"base_url"`
}

// Directions configures the routing provider (OpenRouteService compatible).
type Directions struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"`
	Profile string `yaml:"profile,omitempty"`
	Mode    string `yaml:"mode,omitempty"` // geojson or summary
}

// Tiles configures the raster tile source and stitching limits.
type Tiles struct {
	URL         string `yaml:"url"`
	UserAgent   string `yaml:"user_agent"`
	Zoom        int    `yaml:"zoom,omitempty"`
	TileSize    int    `yaml:"tile_size,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	MaxTiles    int    `yaml:"max_tiles,omitempty"`
}

// Overlay configures how the route line is drawn.
type Overlay struct {
	Color string  `yaml:"color,omitempty"` // #rrggbb or #rrggbbaa
	Width float64 `yaml:"width,omitempty"`
}

// StaticMap configures the external static-map URL output mode.
type StaticMap struct {
	BaseURL string `yaml:"base_url"`
	Width   int    `yaml:"width,omitempty"`
	Height  int    `yaml:"height,omitempty"`
}

// Defaults used when a field is not set in the file.
const (
	DefaultGeocodingURL  = "https://nominatim.openstreetmap.org"
	DefaultDirectionsURL = "https://api.openrouteservice.org"
	DefaultProfile       = "foot-walking"
	DefaultTileURL       = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultUserAgent     = "tourmap/1.0 (tourmap@example.com)"
	DefaultStaticMapURL  = "https://staticmap.openstreetmap.de/staticmap.php"
	DefaultZoom          = 14
	DefaultTileSize      = 256
	DefaultConcurrency   = 4
	DefaultMaxTiles      = 256
	DefaultTimeout       = 10 * time.Second
	DefaultLineColor     = "#0000ff"
	DefaultLineWidth     = 4.0

	ModeGeoJSON = "geojson"
	ModeSummary = "summary"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// Unset fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadOptional behaves like Load but returns defaults when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// ApplyDefaults fills every zero field with its default.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = DefaultGeocodingURL
	}

	if c.Directions.BaseURL == "" {
		c.Directions.BaseURL = DefaultDirectionsURL
	}
	if c.Directions.Profile == "" {
		c.Directions.Profile = DefaultProfile
	}
	if c.Directions.Mode == "" {
		c.Directions.Mode = ModeGeoJSON
	}

	if c.Tiles.URL == "" {
		c.Tiles.URL = DefaultTileURL
	}
	if c.Tiles.UserAgent == "" {
		c.Tiles.UserAgent = DefaultUserAgent
	}
	if c.Tiles.Zoom <= 0 {
		c.Tiles.Zoom = DefaultZoom
	}
	if c.Tiles.TileSize <= 0 {
		c.Tiles.TileSize = DefaultTileSize
	}
	if c.Tiles.Concurrency <= 0 {
		c.Tiles.Concurrency = DefaultConcurrency
	}
	if c.Tiles.MaxTiles <= 0 {
		c.Tiles.MaxTiles = DefaultMaxTiles
	}

	if c.Overlay.Color == "" {
		c.Overlay.Color = DefaultLineColor
	}
	if c.Overlay.Width <= 0 {
		c.Overlay.Width = DefaultLineWidth
	}

	if c.StaticMap.BaseURL == "" {
		c.StaticMap.BaseURL = DefaultStaticMapURL
	}
	if c.StaticMap.Width <= 0 {
		c.StaticMap.Width = 600
	}
	if c.StaticMap.Height <= 0 {
		c.StaticMap.Height = 400
	}
}

// RenderBudget is the worst-case duration of one render when every outbound
// request runs into Timeout: two geocoding calls, one directions call and
// MaxTiles/Concurrency rounds of tile fetches.
func (c *Config) RenderBudget() time.Duration {
	concurrency := max(c.Tiles.Concurrency, 1)
	rounds := (c.Tiles.MaxTiles + concurrency - 1) / concurrency

	return time.Duration(3+rounds) * c.Timeout
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if c.Directions.Mode != ModeGeoJSON && c.Directions.Mode != ModeSummary {
		return fmt.Errorf("directions.mode must be %q or %q, got %q", ModeGeoJSON, ModeSummary, c.Directions.Mode)
	}
	if c.Tiles.Zoom > 19 {
		return fmt.Errorf("tiles.zoom %d exceeds 19", c.Tiles.Zoom)
	}

	return nil
}
