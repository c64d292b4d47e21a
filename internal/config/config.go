// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/servicefinder/internal/catalog"
	"github.com/woozymasta/servicefinder/internal/geo"

	"gopkg.in/yaml.v3"
)

// Source formats understood by the loader.
const (
	FormatGeoJSON  = "geojson"
	FormatOverpass = "overpass"
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution string              `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	DataDir     string              `yaml:"data_dir,omitempty" json:"-"`
	SearchField string              `yaml:"search_field,omitempty" json:"search_field"`
	Sources     []Source            `yaml:"sources" json:"-"`
	Map         catalog.ViewOptions `yaml:"map" json:"map"`
	Locator     Locator             `yaml:"locator" json:"-"`
	Server      Server              `yaml:"server" json:"-"`
}

// Source represents a single raw feature snapshot.
type Source struct {
	// defining GeoJSON directly in config.yaml
	Inline *geo.FeatureCollection `yaml:"features,omitempty" json:"-"`

	Name   string `yaml:"name" json:"name"`
	URL    string `yaml:"url,omitempty" json:"-"`
	Format string `yaml:"format,omitempty" json:"-"` // geojson (default) or overpass
}

// Locator configures the geocoding collaborator.
type Locator struct {
	URL       string        `yaml:"url,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`
	Countries string        `yaml:"countries,omitempty"` // comma separated ISO 3166-1 alpha-2 codes
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	MaxAge    time.Duration `yaml:"max_age,omitempty"`
	Rate      float64       `yaml:"rate,omitempty"` // requests per second
}

// Server holds HTTP presentation host settings.
type Server struct {
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Config{Map: catalog.DefaultViewOptions()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.SetDefaults()

	return &cfg, nil
}

// SetDefaults fills every unset option with its default value.
func (c *Config) SetDefaults() {
	defaults := catalog.DefaultViewOptions()

	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.SearchField == "" {
		c.SearchField = string(catalog.FieldPostcode)
	}
	if c.Map.Zoom <= 0 {
		c.Map.Zoom = defaults.Zoom
	}
	if c.Map.SelectedZoom <= 0 {
		c.Map.SelectedZoom = defaults.SelectedZoom
	}
	if c.Map.Proximity.RadiusMeters <= 0 {
		c.Map.Proximity.RadiusMeters = catalog.DefaultRadiusMeters
	}

	for i := range c.Sources {
		if c.Sources[i].Format == "" {
			c.Sources[i].Format = FormatGeoJSON
		}
	}

	if c.Locator.URL == "" {
		c.Locator.URL = "https://nominatim.openstreetmap.org/search"
	}
	if c.Locator.UserAgent == "" {
		c.Locator.UserAgent = "servicefinder/1.0"
	}
	if c.Locator.Timeout <= 0 {
		c.Locator.Timeout = 7 * time.Second
	}
	if c.Locator.MaxAge <= 0 {
		c.Locator.MaxAge = time.Minute
	}
	if c.Locator.Rate <= 0 {
		c.Locator.Rate = 1
	}

	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
}

// SnapshotPath returns where the snapshot of source s is stored.
func (c *Config) SnapshotPath(s Source) string {
	return filepath.Join(c.DataDir, s.Name+".geojson")
}
