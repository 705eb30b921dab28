// Package routing resolves road distance for a single leg between two points.
package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"backend-fieldops/internal/config"
	"backend-fieldops/internal/geo"

	"github.com/redis/go-redis/v9"
)

// Router returns the road distance in kilometers for one leg.
type Router interface {
	LegDistance(ctx context.Context, origin, dest geo.Coordinate) (float64, error)
}

// ErrNoRoute is returned when the provider answered but had no distance.
var ErrNoRoute = errors.New("routing: no route between points")

// LegError describes a failed provider call for one leg.
type LegError struct {
	Provider string
	Origin   geo.Coordinate
	Dest     geo.Coordinate
	Reason   string
	Err      error
}

func (e *LegError) Error() string {
	return fmt.Sprintf("%s leg %s -> %s failed: %s", e.Provider, e.Origin, e.Dest, e.Reason)
}

func (e *LegError) Unwrap() error { return e.Err }

// New builds the configured provider, wrapped in the Redis leg cache when a
// client is available.
func New(cfg config.Config, rdb *redis.Client) (Router, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	var r Router
	switch strings.ToLower(cfg.RoutingProvider) {
	case "", "osrm":
		r = NewOSRM(cfg.OSRMBaseURL, client)
	case "google":
		if cfg.GoogleMapsAPIKey == "" {
			return nil, errors.New("routing: GOOGLE_MAPS_API_KEY is required for the google provider")
		}
		r = NewGoogle(defaultGoogleBaseURL, cfg.GoogleMapsAPIKey, client)
	case "haversine":
		return Haversine{}, nil
	default:
		return nil, fmt.Errorf("routing: unknown provider %q", cfg.RoutingProvider)
	}

	if rdb != nil {
		r = NewCachedRouter(r, rdb, cfg.RoutingCacheTTL)
	}
	return r, nil
}

func samePoint(a, b geo.Coordinate) bool {
	return a.Rounded() == b.Rounded()
}

// Haversine is a straight-line stand-in for local development.
type Haversine struct{}

func (Haversine) LegDistance(_ context.Context, origin, dest geo.Coordinate) (float64, error) {
	return geo.DistanceKm(origin, dest), nil
}
