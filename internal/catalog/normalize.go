package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/woozymasta/servicefinder/internal/geo"

	"golang.org/x/text/unicode/norm"
)

// Property keys read from raw features.
const (
	PropOSMID       = "@id"
	PropID          = "id"
	PropName        = "name"
	PropHouseNumber = "addr:housenumber"
	PropStreet      = "addr:street"
	PropCity        = "addr:city"
	PropPostcode    = "addr:postcode"
	PropAmenity     = "amenity"
	PropPhone       = "phone"
	PropWebsite     = "website"
)

// addressKeys are joined, in this order, into Service.Address.
var addressKeys = []string{PropHouseNumber, PropStreet, PropCity}

// Normalize converts raw features into services.
//
// Features missing a name, address, postcode, category or either coordinate
// are left out without error. Input order is preserved.
func Normalize(features []geo.Feature) []Service {
	services := make([]Service, 0, len(features))

	for _, f := range features {
		s, ok := normalizeFeature(f)
		if !ok {
			continue
		}
		services = append(services, s)
	}

	return services
}

func normalizeFeature(f geo.Feature) (Service, bool) {
	props := f.Properties

	point, hasPoint := geo.FromLonLat(f.Geometry.Position())

	s := Service{
		ID:       firstNonEmpty(prop(props, PropOSMID), prop(props, PropID), text(f.ID)),
		Name:     prop(props, PropName),
		Address:  joinAddress(props),
		Postcode: prop(props, PropPostcode),
		Category: prop(props, PropAmenity),
		Phone:    prop(props, PropPhone),
		Website:  prop(props, PropWebsite),
	}

	if s.Name == "" || s.Address == "" || s.Postcode == "" || s.Category == "" || !hasPoint {
		return Service{}, false
	}

	s.Latitude = point.Lat
	s.Longitude = point.Lng
	s.Coords = point.Coords()

	return s, true
}

func joinAddress(props map[string]any) string {
	parts := make([]string, 0, len(addressKeys))
	for _, key := range addressKeys {
		if v := prop(props, key); v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// prop reads a property as NFC normalized, trimmed text.
// Absent keys and unsupported value kinds read as "".
func prop(props map[string]any, key string) string {
	if props == nil {
		return ""
	}

	return text(props[key])
}

func text(v any) string {
	var s string

	switch val := v.(type) {
	case string:
		s = val
	case json.Number:
		s = val.String()
	case float64:
		if val == 0 {
			return ""
		}
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		if val == 0 {
			return ""
		}
		s = strconv.Itoa(val)
	case int64:
		if val == 0 {
			return ""
		}
		s = strconv.FormatInt(val, 10)
	case uint64:
		if val == 0 {
			return ""
		}
		s = strconv.FormatUint(val, 10)
	default:
		return ""
	}

	return strings.TrimSpace(norm.NFC.String(s))
}
