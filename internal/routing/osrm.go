package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/logger"
)

const defaultOSRMBaseURL = "https://router.project-osrm.org"

type OSRM struct {
	baseURL    string
	httpClient *http.Client
}

type osrmRouteResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

func NewOSRM(baseURL string, httpClient *http.Client) *OSRM {
	if baseURL == "" {
		baseURL = defaultOSRMBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OSRM{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (o *OSRM) LegDistance(ctx context.Context, origin, dest geo.Coordinate) (float64, error) {
	if samePoint(origin, dest) {
		return 0, nil
	}

	// OSRM wants lng,lat order.
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=false",
		o.baseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat)
	fail := func(reason string, err error) error {
		return &LegError{Provider: "osrm", Origin: origin, Dest: dest, Reason: reason, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fail(err.Error(), err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, fail(err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fail(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var out osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fail("decode response", err)
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		return 0, fail("code "+out.Code, ErrNoRoute)
	}

	km := out.Routes[0].Distance / 1000
	logger.Ctx(ctx).Debug("osrm leg resolved",
		logger.String("origin", origin.String()),
		logger.String("dest", dest.String()),
		logger.Float64("km", km),
	)
	return km, nil
}
