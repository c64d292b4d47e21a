package processor

import (
	"fmt"

	"github.com/woozymasta/servicefinder/internal/catalog"
	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/geo"

	"github.com/rs/zerolog/log"
)

// LoadFeatures reads the features of every configured source, in order.
// Inline sources are used as is; the others are read from their snapshot files.
func LoadFeatures(cfg *config.Config) ([]geo.Feature, error) {
	var features []geo.Feature

	for _, src := range cfg.Sources {
		if src.Inline != nil {
			features = append(features, src.Inline.Features...)
			continue
		}

		path := cfg.SnapshotPath(src)
		fc, err := geo.ReadFeatureCollection(path)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		log.Debug().
			Str("source", src.Name).
			Str("path", path).
			Int("features", len(fc.Features)).
			Msg("Snapshot loaded")

		features = append(features, fc.Features...)
	}

	return features, nil
}

// LoadCatalog reads all sources and normalizes them into the service catalog.
func LoadCatalog(cfg *config.Config) ([]catalog.Service, error) {
	features, err := LoadFeatures(cfg)
	if err != nil {
		return nil, err
	}

	return normalizeLogged(features), nil
}

// LoadSnapshotCatalog normalizes a single snapshot file.
func LoadSnapshotCatalog(path string) ([]catalog.Service, error) {
	fc, err := geo.ReadFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	return normalizeLogged(fc.Features), nil
}

func normalizeLogged(features []geo.Feature) []catalog.Service {
	services := catalog.Normalize(features)

	log.Info().
		Int("features", len(features)).
		Int("services", len(services)).
		Int("skipped", len(features)-len(services)).
		Msg("Catalog normalized")

	return services
}
