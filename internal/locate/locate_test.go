package locate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test helpers ---

type countingLocator struct {
	point geo.Point
	err   error
	calls atomic.Int32
}

func (c *countingLocator) Locate(context.Context) (geo.Point, error) {
	c.calls.Add(1)
	return c.point, c.err
}

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(timeout, maxAge time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(timeout, maxAge)
	c.now = clock.now
	return c, clock
}

// --- Cache ---

func TestStatic(t *testing.T) {
	p, err := Static{Lat: 51.5, Lng: -0.1}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Lat: 51.5, Lng: -0.1}, p)
}

func TestCacheReusesRecentPosition(t *testing.T) {
	c, clock := newTestCache(time.Second, time.Minute)
	l := &countingLocator{point: geo.Point{Lat: 1, Lng: 2}}

	for i := 0; i < 3; i++ {
		p, err := c.Locate(context.Background(), "EC2V", l)
		require.NoError(t, err)
		assert.Equal(t, geo.Point{Lat: 1, Lng: 2}, p)
	}
	assert.Equal(t, int32(1), l.calls.Load())

	clock.t = clock.t.Add(2 * time.Minute)
	_, err := c.Locate(context.Background(), "EC2V", l)
	require.NoError(t, err)
	assert.Equal(t, int32(2), l.calls.Load())

	_, err = c.Locate(context.Background(), "SW1A", l)
	require.NoError(t, err)
	assert.Equal(t, int32(3), l.calls.Load())
}

func TestCacheZeroMaxAgeAlwaysAsks(t *testing.T) {
	c, _ := newTestCache(time.Second, 0)
	l := &countingLocator{}

	for i := 0; i < 2; i++ {
		_, err := c.Locate(context.Background(), "k", l)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), l.calls.Load())
}

func TestCacheEvictsExpiredPositions(t *testing.T) {
	c, clock := newTestCache(time.Second, time.Minute)
	l := &countingLocator{point: geo.Point{Lat: 1, Lng: 2}}

	for i := 0; i < 500; i++ {
		_, err := c.Locate(context.Background(), fmt.Sprintf("query-%d", i), l)
		require.NoError(t, err)
	}
	assert.Equal(t, 500, c.Len())

	clock.t = clock.t.Add(2 * time.Minute)

	_, err := c.Locate(context.Background(), "query-0", l)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Len(t, c.entries, 1)
}

func TestCacheCapsEntries(t *testing.T) {
	c, clock := newTestCache(time.Second, time.Hour)
	l := &countingLocator{}

	for i := 0; i < MaxCacheEntries+50; i++ {
		clock.t = clock.t.Add(time.Millisecond)
		_, err := c.Locate(context.Background(), fmt.Sprintf("query-%d", i), l)
		require.NoError(t, err)
	}
	assert.Equal(t, MaxCacheEntries, c.Len())

	// the oldest lookups were dropped, the newest kept
	assert.NotContains(t, c.entries, "query-0")
	assert.Contains(t, c.entries, fmt.Sprintf("query-%d", MaxCacheEntries+49))
}

func TestCacheZeroMaxAgeStoresNothing(t *testing.T) {
	c, _ := newTestCache(time.Second, 0)

	_, err := c.Locate(context.Background(), "k", &countingLocator{})
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	c, _ := newTestCache(time.Second, time.Minute)
	l := &countingLocator{err: ErrNoResult}

	_, err := c.Locate(context.Background(), "k", l)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = c.Locate(context.Background(), "k", l)
	assert.ErrorIs(t, err, ErrNoResult)
	assert.Equal(t, int32(2), l.calls.Load())
}

func TestCacheTimeout(t *testing.T) {
	c, _ := newTestCache(20*time.Millisecond, time.Minute)
	slow := LocatorFunc(func(ctx context.Context) (geo.Point, error) {
		<-ctx.Done()
		return geo.Point{}, ctx.Err()
	})

	start := time.Now()
	_, err := c.Locate(context.Background(), "k", slow)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestResolve(t *testing.T) {
	c, _ := newTestCache(time.Second, time.Minute)

	p := Resolve(context.Background(), c, "ok", Static{Lat: 3, Lng: 4})
	require.NotNil(t, p)
	assert.Equal(t, geo.Point{Lat: 3, Lng: 4}, *p)

	assert.Nil(t, Resolve(context.Background(), c, "bad", &countingLocator{err: ErrNoResult}))
}

// --- Nominatim ---

func newNominatim(t *testing.T, handler http.HandlerFunc) *Nominatim {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewNominatim(srv.Client(), config.Locator{
		URL:       srv.URL + "/search",
		UserAgent: "servicefinder-test",
		Countries: "gb",
		Rate:      1000,
	})
}

func TestNominatimSearch(t *testing.T) {
	n := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "EC2V 6AA", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "gb", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "servicefinder-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"51.5142","lon":"-0.0931","display_name":"Cheapside"}]`))
	})

	p, err := n.Query("EC2V 6AA").Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Lat: 51.5142, Lng: -0.0931}, p)
}

func TestNominatimErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "no result", status: http.StatusOK, body: `[]`, wantErr: ErrNoResult},
		{name: "bad status", status: http.StatusTooManyRequests, body: `[]`},
		{name: "bad json", status: http.StatusOK, body: `{`},
		{name: "bad latitude", status: http.StatusOK, body: `[{"lat":"north","lon":"0"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := n.Search(context.Background(), "nowhere")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
