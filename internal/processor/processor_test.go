package processor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geojsonBody = `{
  "type": "FeatureCollection",
  "generator": "overpass-turbo",
  "features": [
    {
      "type": "Feature",
      "id": "node/1",
      "properties": {
        "@id": "node/1",
        "name": "Boots",
        "addr:street": "Cheapside",
        "addr:postcode": "EC2V 6AA",
        "amenity": "pharmacy"
      },
      "geometry": {"type": "Point", "coordinates": [-0.094, 51.514]}
    }
  ]
}`

const overpassBody = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 51.514, "lon": -0.094,
     "tags": {"name": "Boots", "addr:street": "Cheapside", "addr:postcode": "EC2V 6AA", "amenity": "pharmacy"}},
    {"type": "way", "id": 2, "center": {"lat": 51.517, "lon": -0.1},
     "tags": {"name": "Barts", "addr:street": "West Smithfield", "addr:postcode": "EC1A 7BE", "amenity": "hospital"}},
    {"type": "relation", "id": 3, "tags": {"name": "No position"}}
  ]
}`

func newConfig(t *testing.T, sources ...config.Source) *config.Config {
	t.Helper()

	cfg := &config.Config{DataDir: t.TempDir(), Sources: sources}
	cfg.SetDefaults()

	return cfg
}

func serve(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestProcessSourceGeoJSON(t *testing.T) {
	srv := serve(t, geojsonBody, http.StatusOK)
	cfg := newConfig(t, config.Source{Name: "pharmacies", URL: srv.URL})

	require.NoError(t, ProcessSource(srv.Client(), cfg, cfg.Sources[0], false))

	data, err := os.ReadFile(cfg.SnapshotPath(cfg.Sources[0]))
	require.NoError(t, err)
	assert.Less(t, len(data), len(geojsonBody))
	assert.Contains(t, string(data), `"generator":"overpass-turbo"`)

	services, err := LoadCatalog(cfg)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "node/1", services[0].ID)
	assert.Equal(t, [2]float64{51.514, -0.094}, services[0].Coords)
}

func TestProcessSourceOverpass(t *testing.T) {
	srv := serve(t, overpassBody, http.StatusOK)
	cfg := newConfig(t, config.Source{Name: "osm", URL: srv.URL, Format: config.FormatOverpass})

	require.NoError(t, ProcessSource(srv.Client(), cfg, cfg.Sources[0], false))

	fc, err := geo.ReadFeatureCollection(cfg.SnapshotPath(cfg.Sources[0]))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "node/1", fc.Features[0].Properties["@id"])
	assert.Equal(t, "way/2", fc.Features[1].ID)

	services, err := LoadCatalog(cfg)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Barts", services[1].Name)
	assert.Equal(t, 51.517, services[1].Latitude)
	assert.Equal(t, -0.1, services[1].Longitude)
}

func TestProcessSourceSkipsExisting(t *testing.T) {
	srv := serve(t, geojsonBody, http.StatusOK)
	cfg := newConfig(t, config.Source{Name: "pharmacies", URL: srv.URL})
	path := cfg.SnapshotPath(cfg.Sources[0])

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0644))

	require.NoError(t, ProcessSource(srv.Client(), cfg, cfg.Sources[0], false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Boots")

	require.NoError(t, ProcessSource(srv.Client(), cfg, cfg.Sources[0], true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Boots")
}

func TestProcessSourceErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := serve(t, "", http.StatusBadGateway)
		cfg := newConfig(t, config.Source{Name: "s", URL: srv.URL})

		assert.Error(t, ProcessSource(srv.Client(), cfg, cfg.Sources[0], false))
		assert.NoFileExists(t, cfg.SnapshotPath(cfg.Sources[0]))
	})

	t.Run("broken geojson", func(t *testing.T) {
		srv := serve(t, `{"features":`, http.StatusOK)
		cfg := newConfig(t, config.Source{Name: "s", URL: srv.URL})

		assert.Error(t, ProcessSource(srv.Client(), cfg, cfg.Sources[0], false))
		assert.NoFileExists(t, cfg.SnapshotPath(cfg.Sources[0]))
	})

	t.Run("unknown format", func(t *testing.T) {
		cfg := newConfig(t, config.Source{Name: "s", URL: "http://127.0.0.1:0", Format: "csv"})

		err := ProcessSource(http.DefaultClient, cfg, cfg.Sources[0], false)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestLoadCatalogInlineSource(t *testing.T) {
	inline := geo.FeatureCollection{
		Type: "FeatureCollection",
		Features: []geo.Feature{
			geo.NewPointFeature(-0.09, 51.505, map[string]any{
				"name":          "Inline Clinic",
				"addr:city":     "London",
				"addr:postcode": "EC1A 1BB",
				"amenity":       "clinic",
			}),
		},
	}
	cfg := newConfig(t, config.Source{Name: "inline", Inline: &inline})

	services, err := LoadCatalog(cfg)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "London", services[0].Address)

	require.NoError(t, ProcessSource(http.DefaultClient, cfg, cfg.Sources[0], false))
	assert.FileExists(t, cfg.SnapshotPath(cfg.Sources[0]))
}

func TestLoadCatalogMissingSnapshot(t *testing.T) {
	cfg := newConfig(t, config.Source{Name: "missing"})

	_, err := LoadCatalog(cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
