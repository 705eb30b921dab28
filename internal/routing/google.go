package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"backend-fieldops/internal/geo"
)

const defaultGoogleBaseURL = "https://maps.googleapis.com"

// Google queries the Distance Matrix API with a single origin/destination pair.
type Google struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func NewGoogle(baseURL, apiKey string, httpClient *http.Client) *Google {
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Google{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, httpClient: httpClient}
}

func (g *Google) LegDistance(ctx context.Context, origin, dest geo.Coordinate) (float64, error) {
	if samePoint(origin, dest) {
		return 0, nil
	}
	fail := func(reason string, err error) error {
		return &LegError{Provider: "google", Origin: origin, Dest: dest, Reason: reason, Err: err}
	}

	q := url.Values{}
	q.Set("origins", fmt.Sprintf("%.6f,%.6f", origin.Lat, origin.Lng))
	q.Set("destinations", fmt.Sprintf("%.6f,%.6f", dest.Lat, dest.Lng))
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/maps/api/distancematrix/json?"+q.Encode(), nil)
	if err != nil {
		return 0, fail(err.Error(), err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, fail(err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fail(fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	var out distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fail("decode response", err)
	}
	if out.Status != "OK" {
		return 0, fail("status "+out.Status, nil)
	}
	if len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 || out.Rows[0].Elements[0].Status != "OK" {
		return 0, fail("no element", ErrNoRoute)
	}
	return out.Rows[0].Elements[0].Distance.Value / 1000, nil
}
