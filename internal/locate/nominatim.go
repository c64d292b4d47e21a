package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/geo"

	"golang.org/x/time/rate"
)

// nominatimResult is the subset of a Nominatim search hit we read.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim geocodes free text, such as a postcode, to a position.
// Requests are throttled to the configured rate.
type Nominatim struct {
	client    *http.Client
	limiter   *rate.Limiter
	baseURL   string
	userAgent string
	countries string
}

// NewNominatim creates a geocoder from the locator configuration.
func NewNominatim(client *http.Client, cfg config.Locator) *Nominatim {
	return &Nominatim{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		baseURL:   cfg.URL,
		userAgent: cfg.UserAgent,
		countries: cfg.Countries,
	}
}

// Query returns a Locator resolving q.
func (n *Nominatim) Query(q string) Locator {
	return LocatorFunc(func(ctx context.Context) (geo.Point, error) {
		return n.Search(ctx, q)
	})
}

// Search returns the position of the best match for q.
func (n *Nominatim) Search(ctx context.Context, q string) (geo.Point, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return geo.Point{}, err
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", "1")
	if n.countries != "" {
		params.Set("countrycodes", n.countries)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return geo.Point{}, err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return geo.Point{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, fmt.Errorf("geocode %q: unexpected status: %s", q, resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Point{}, fmt.Errorf("geocode %q: %w", q, err)
	}
	if len(results) == 0 {
		return geo.Point{}, fmt.Errorf("%w for %q", ErrNoResult, q)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode %q: latitude: %w", q, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode %q: longitude: %w", q, err)
	}

	return geo.Point{Lat: lat, Lng: lon}, nil
}
