package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for snapshot files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
)

// ReadFeatureCollection loads a feature collection snapshot from disk.
// JSON (.json, .geojson) and YAML (.yaml, .yml) files are supported.
func ReadFeatureCollection(path string) (FeatureCollection, error) {
	var fc FeatureCollection

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".geojson":
		err = json.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		return fc, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fc, fmt.Errorf("decode %s: %w", path, err)
	}

	return fc, nil
}
