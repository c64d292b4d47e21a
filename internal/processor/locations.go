// Package processor handles the downloading and loading of service snapshots.
package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
)

var (
	// ErrUnsupportedFormat is returned for sources with an unknown format.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// ProcessSource fetches one configured source and stores it as a snapshot.
// Inline data from config takes priority over the URL.
func ProcessSource(client *http.Client, cfg *config.Config, src config.Source, force bool) error {
	destFile := cfg.SnapshotPath(src)

	// Check if file exists
	if _, err := os.Stat(destFile); err == nil {
		if !force {
			log.Debug().Str("source", src.Name).Msg("Snapshot file exists, skipping")
			return nil
		}
	}

	// Inline Data Priority
	if src.Inline != nil {
		log.Info().
			Str("source", src.Name).
			Msg("Using inline features from config")
		return saveGeoJSON(destFile, *src.Inline)
	}

	if src.URL == "" {
		return nil
	}

	log.Info().
		Str("source", src.Name).
		Str("url", src.URL).
		Str("format", src.Format).
		Msg("Processing source from URL")

	switch src.Format {
	case config.FormatOverpass:
		fc, err := fetchOverpass(client, src.URL)
		if err != nil {
			return err
		}
		return saveGeoJSON(destFile, fc)

	case config.FormatGeoJSON, "":
		return fetchGeoJSON(client, src.URL, destFile)

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Format)
	}
}

// fetchGeoJSON downloads a feature collection and stores it verbatim, minified.
// The document is decoded first so broken downloads never replace a snapshot.
func fetchGeoJSON(client *http.Client, url, path string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var fc geo.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return fmt.Errorf("decode geojson: %w", err)
	}

	m := minify.New()
	m.AddFunc("application/geo+json", mjson.Minify)

	out, err := m.Bytes("application/geo+json", body)
	if err != nil {
		return fmt.Errorf("minify geojson: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("features", len(fc.Features)).
		Int("bytes_in", len(body)).
		Int("bytes_out", len(out)).
		Msg("Storing GeoJSON snapshot")

	return writeFile(path, out)
}

// saveGeoJSON marshals the feature collection and writes it to disk.
func saveGeoJSON(path string, fc geo.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}

	log.Debug().
		Str("path", path).
		Int("features", len(fc.Features)).
		Msg("Storing GeoJSON snapshot")

	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	_, err = f.Write(data)
	return err
}
