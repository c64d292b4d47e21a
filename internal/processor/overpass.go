package processor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/woozymasta/servicefinder/internal/geo"
)

// Internal structures for JSON parsing
type overpassRoot struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// fetchOverpass downloads an Overpass API JSON response and converts it to GeoJSON.
func fetchOverpass(client *http.Client, url string) (geo.FeatureCollection, error) {
	resp, err := client.Get(url)
	if err != nil {
		return geo.FeatureCollection{}, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.FeatureCollection{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var root overpassRoot
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		return geo.FeatureCollection{}, err
	}

	return overpassToGeoJSON(root), nil
}

// overpassToGeoJSON turns tagged elements into point features the way
// overpass-turbo exports them: tags become properties and "@id" holds
// "<type>/<id>". Ways and relations use their centre when it was requested
// with "out center"; elements without any position are skipped.
func overpassToGeoJSON(root overpassRoot) geo.FeatureCollection {
	fc := geo.FeatureCollection{Type: "FeatureCollection", Features: []geo.Feature{}}

	for _, el := range root.Elements {
		lat, lon := el.Lat, el.Lon
		if (lat == nil || lon == nil) && el.Center != nil {
			lat, lon = &el.Center.Lat, &el.Center.Lon
		}
		if lat == nil || lon == nil {
			continue
		}

		id := fmt.Sprintf("%s/%d", el.Type, el.ID)
		props := make(map[string]any, len(el.Tags)+1)
		for k, v := range el.Tags {
			props[k] = v
		}
		props["@id"] = id

		f := geo.NewPointFeature(*lon, *lat, props)
		f.ID = id
		fc.Features = append(fc.Features, f)
	}

	return fc
}
