package catalog

import "github.com/woozymasta/servicefinder/internal/geo"

// Display returns the services to place on the map.
//
// With a known user location this is the nearby selection of filtered;
// without one it is filtered unchanged. Nothing else switches between the
// two modes.
func Display(filtered []Service, user *geo.Point, selected *Service, p Proximity) []Service {
	if user == nil {
		return filtered
	}

	return p.Select(filtered, user, selected)
}

// ViewOptions holds the map framing defaults.
type ViewOptions struct {
	Center       geo.Point `yaml:"center" json:"center"`
	Zoom         int       `yaml:"zoom" json:"zoom"`
	SelectedZoom int       `yaml:"selected_zoom" json:"selected_zoom"`
	Proximity    Proximity `yaml:"proximity" json:"proximity"`
}

// DefaultViewOptions centres on central London.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		Center:       geo.Point{Lat: 51.505, Lng: -0.09},
		Zoom:         13,
		SelectedZoom: 16,
		Proximity:    DefaultProximity(),
	}
}

// View is everything a map needs to render one frame.
type View struct {
	Center   geo.Point `json:"center" yaml:"center"`
	Zoom     int       `json:"zoom" yaml:"zoom"`
	Nearby   bool      `json:"nearby" yaml:"nearby"`
	Selected *Service  `json:"selected,omitempty" yaml:"selected,omitempty"`
	Services []Service `json:"services" yaml:"services"`
}

// NewView frames the map on the selected service, else on the user, else on
// the default centre, and fills it with the Display subset of filtered.
func NewView(filtered []Service, user *geo.Point, selected *Service, opts ViewOptions) View {
	v := View{
		Center:   opts.Center,
		Zoom:     opts.Zoom,
		Nearby:   user != nil,
		Selected: selected,
		Services: Display(filtered, user, selected, opts.Proximity),
	}

	switch {
	case selected != nil:
		v.Center = selected.Point()
		v.Zoom = opts.SelectedZoom
	case user != nil:
		v.Center = *user
	}

	return v
}
