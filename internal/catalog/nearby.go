package catalog

import "github.com/woozymasta/servicefinder/internal/geo"

// DefaultRadiusMeters is the distance within which a service counts as nearby.
const DefaultRadiusMeters = 10000.0

// Proximity configures nearby selection.
type Proximity struct {
	// RadiusMeters is the exclusive upper bound on distance. Values <= 0
	// select DefaultRadiusMeters.
	RadiusMeters float64 `yaml:"radius_meters" json:"radius_meters"`

	// KeepSelected appends the selected service when it falls outside the
	// radius, so its marker stays on the map.
	KeepSelected bool `yaml:"keep_selected" json:"keep_selected"`
}

// DefaultProximity returns a 10 km radius that keeps the selected service.
func DefaultProximity() Proximity {
	return Proximity{RadiusMeters: DefaultRadiusMeters, KeepSelected: true}
}

// SelectNearby returns the services closer than radiusMeters to user, with
// selected appended when it is not already among them.
// A nil user location yields an empty result.
func SelectNearby(services []Service, user *geo.Point, selected *Service, radiusMeters float64) []Service {
	return Proximity{RadiusMeters: radiusMeters, KeepSelected: true}.Select(services, user, selected)
}

// Select narrows services to those strictly within the radius of user,
// preserving source order. See SelectNearby.
func (p Proximity) Select(services []Service, user *geo.Point, selected *Service) []Service {
	nearby := make([]Service, 0)
	if user == nil {
		return nearby
	}

	radius := p.RadiusMeters
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}

	for _, s := range services {
		if geo.Distance(*user, s.Point()) < radius {
			nearby = append(nearby, s)
		}
	}

	if p.KeepSelected && selected != nil && !contains(nearby, selected.ID) {
		nearby = append(nearby, *selected)
	}

	return nearby
}

func contains(services []Service, id string) bool {
	for _, s := range services {
		if s.ID == id {
			return true
		}
	}

	return false
}
