package server

import (
	"net/http"
	"time"

	"github.com/woozymasta/servicefinder/internal/catalog"
	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/locate"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Geocoder turns free text into a Locator.
type Geocoder interface {
	Query(q string) locate.Locator
}

// ServerContext holds dependencies for request handlers.
// The catalog is read-only once the context is built.
type ServerContext struct {
	Config      *config.Config
	Services    []catalog.Service
	Geocoder    Geocoder
	Locations   *locate.Cache
	SearchField catalog.SearchField
}

// NewServerContext wires the loaded catalog to the handlers.
// A nil geocoder disables the "near" query parameter.
func NewServerContext(cfg *config.Config, services []catalog.Service, geocoder Geocoder) *ServerContext {
	field, err := catalog.ParseSearchField(cfg.SearchField)
	if err != nil {
		log.Warn().
			Err(err).
			Str("fallback", string(catalog.FieldPostcode)).
			Msg("Invalid default search field")
		field = catalog.FieldPostcode
	}

	log.Info().
		Int("services", len(services)).
		Int("categories", len(catalog.DistinctCategories(services))).
		Str("search_field", string(field)).
		Bool("geocoder", geocoder != nil).
		Msg("Server context initialized")

	return &ServerContext{
		Config:      cfg,
		Services:    services,
		Geocoder:    geocoder,
		Locations:   locate.NewCache(cfg.Locator.Timeout, cfg.Locator.MaxAge),
		SearchField: field,
	}
}

// Routes builds the HTTP handler tree.
func (s *ServerContext) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.Config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.HandleHealth)
		r.Get("/categories", s.HandleCategories)
		r.Get("/services", s.HandleServices)
		r.Get("/services/*", s.HandleService)
		r.Get("/view", s.HandleView)
	})

	return r
}
