// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/servicefinder/internal/catalog"
	"github.com/woozymasta/servicefinder/internal/geo"
	"github.com/woozymasta/servicefinder/internal/locate"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const etagCap = 24

var (
	errBadLocation = errors.New("lat and lng must be given together")
	errNoGeocoder  = errors.New("location search is disabled")
)

// categoryOption is one entry of the category filter.
type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// HandleCategories serves the category filter options.
func (s *ServerContext) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories := catalog.DistinctCategories(s.Services)

	options := make([]categoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, categoryOption{Value: c, Label: catalog.CategoryLabel(c)})
	}

	s.respondJSON(w, r, http.StatusOK, options)
}

// HandleServices serves the filtered service list.
func (s *ServerContext) HandleServices(w http.ResponseWriter, r *http.Request) {
	term, category, field, err := s.parseCriteria(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}

	s.respondJSON(w, r, http.StatusOK, catalog.Filter(s.Services, term, category, field))
}

// HandleService serves a single service. IDs may contain slashes ("node/1").
func (s *ServerContext) HandleService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")

	service := catalog.Find(s.Services, id)
	if service == nil {
		s.respondError(w, r, http.StatusNotFound, errors.New("service not found"))
		return
	}

	s.respondJSON(w, r, http.StatusOK, service)
}

// HandleView serves the map frame: centre, zoom and the markers to show.
func (s *ServerContext) HandleView(w http.ResponseWriter, r *http.Request) {
	term, category, field, err := s.parseCriteria(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}

	user, err := s.parseLocation(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}

	var selected *catalog.Service
	if id := r.URL.Query().Get("selected"); id != "" {
		if selected = catalog.Find(s.Services, id); selected == nil {
			s.respondError(w, r, http.StatusBadRequest, errors.New("unknown selected service"))
			return
		}
	}

	filtered := catalog.Filter(s.Services, term, category, field)
	s.respondJSON(w, r, http.StatusOK, catalog.NewView(filtered, user, selected, s.Config.Map))
}

// parseCriteria reads q, category and by. An empty by uses the configured field.
func (s *ServerContext) parseCriteria(r *http.Request) (term, category string, field catalog.SearchField, err error) {
	q := r.URL.Query()

	field = s.SearchField
	if by := q.Get("by"); by != "" {
		if field, err = catalog.ParseSearchField(by); err != nil {
			return "", "", "", err
		}
	}

	return q.Get("q"), q.Get("category"), field, nil
}

// parseLocation reads lat/lng, or geocodes near. No parameters means unknown.
// A failed geocode is also unknown rather than an error.
func (s *ServerContext) parseLocation(r *http.Request) (*geo.Point, error) {
	q := r.URL.Query()
	latStr, lngStr, near := q.Get("lat"), q.Get("lng"), strings.TrimSpace(q.Get("near"))

	if latStr != "" || lngStr != "" {
		if latStr == "" || lngStr == "" {
			return nil, errBadLocation
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, errors.New("invalid latitude")
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil || lng < -180 || lng > 180 {
			return nil, errors.New("invalid longitude")
		}

		return &geo.Point{Lat: lat, Lng: lng}, nil
	}

	if near == "" {
		return nil, nil
	}
	if s.Geocoder == nil {
		return nil, errNoGeocoder
	}

	return locate.Resolve(r.Context(), s.Locations, near, s.Geocoder.Query(near)), nil
}

// respondJSON writes v with an ETag derived from the body.
func (s *ServerContext) respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h := fnv.New64a()
	_, _ = h.Write(body)

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendUint(buf, h.Sum64(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *ServerContext) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log.Debug().
		Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("Request rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
