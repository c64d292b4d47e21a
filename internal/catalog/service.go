// Package catalog turns raw location features into a service catalog and
// selects the services to list and to place on the map.
//
// Every function here is pure: inputs are never modified and each call
// returns a fresh slice, so callers may run them concurrently.
package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/woozymasta/servicefinder/internal/geo"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Service is a normalized point of interest.
type Service struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Address   string     `json:"address" yaml:"address"`
	Postcode  string     `json:"postcode" yaml:"postcode"`
	Category  string     `json:"category" yaml:"category"`
	Phone     string     `json:"phone" yaml:"phone"`
	Website   string     `json:"website" yaml:"website"`
	Latitude  float64    `json:"latitude" yaml:"latitude"`
	Longitude float64    `json:"longitude" yaml:"longitude"`
	Coords    [2]float64 `json:"coords" yaml:"coords"` // [Lat, Lon]
}

// Point returns the service location.
func (s Service) Point() geo.Point {
	return geo.Point{Lat: s.Latitude, Lng: s.Longitude}
}

// WebsiteURL returns the website as a link target, adding an https scheme
// when the source value has none.
func (s Service) WebsiteURL() string {
	if s.Website == "" || strings.HasPrefix(s.Website, "http") {
		return s.Website
	}

	return "https://" + s.Website
}

// Find returns the service with the given id, or nil.
func Find(services []Service, id string) *Service {
	if id == "" {
		return nil
	}
	for i := range services {
		if services[i].ID == id {
			found := services[i]
			return &found
		}
	}

	return nil
}

// CategoryLabel formats a raw category token for display:
// first letter upper case, the rest lower case.
func CategoryLabel(category string) string {
	if category == "" {
		return ""
	}

	_, size := utf8.DecodeRuneInString(category)
	head := cases.Upper(language.Und).String(category[:size])
	tail := cases.Lower(language.Und).String(category[size:])

	return head + tail
}
