package geo

import "math"

// EarthRadius is the sphere radius in meters used for surface distances.
const EarthRadius = 6378137.0

// Point is a WGS84 position in display order (latitude first).
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// FromLonLat reprojects a source-order (lon, lat) pair into a Point.
// It reports false when either value is missing.
func FromLonLat(lon, lat *float64) (Point, bool) {
	if lon == nil || lat == nil {
		return Point{}, false
	}

	return Point{Lat: *lat, Lng: *lon}, true
}

// Coords returns the point as a (lat, lng) pair, the order map widgets expect.
func (p Point) Coords() [2]float64 {
	return [2]float64{p.Lat, p.Lng}
}

// Distance returns the great-circle distance between a and b in whole meters.
//
// It uses the haversine formula on a sphere of EarthRadius and rounds the
// result to the nearest meter, which keeps radius comparisons stable against
// floating point noise.
func Distance(a, b Point) float64 {
	const rad = math.Pi / 180.0

	lat1 := a.Lat * rad
	lat2 := b.Lat * rad
	dLat := (b.Lat - a.Lat) * rad
	dLng := (b.Lng - a.Lng) * rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}

	return math.Round(2 * EarthRadius * math.Asin(math.Sqrt(h)))
}
