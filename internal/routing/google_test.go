package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-fieldops/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleLegDistance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		assert.Equal(t, "-6.200000,106.800000", r.URL.Query().Get("origins"))
		assert.Equal(t, "key-1", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK","distance":{"value":4200}}]}]}`))
	}))
	defer server.Close()

	km, err := NewGoogle(server.URL, "key-1", server.Client()).
		LegDistance(context.Background(), geo.Coordinate{Lat: -6.2, Lng: 106.8}, geo.Coordinate{Lat: -6.25, Lng: 106.85})
	require.NoError(t, err)
	assert.InDelta(t, 4.2, km, 1e-9)
}

func TestGoogleElementNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`))
	}))
	defer server.Close()

	_, err := NewGoogle(server.URL, "key", server.Client()).
		LegDistance(context.Background(), geo.Coordinate{Lat: 0, Lng: 0}, geo.Coordinate{Lat: 1, Lng: 1})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestGoogleRequestDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","rows":[]}`))
	}))
	defer server.Close()

	_, err := NewGoogle(server.URL, "key", server.Client()).
		LegDistance(context.Background(), geo.Coordinate{Lat: 0, Lng: 0}, geo.Coordinate{Lat: 1, Lng: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}
