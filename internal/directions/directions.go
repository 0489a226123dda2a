// Package directions requests routed paths from an OpenRouteService
// compatible directions API and normalises its response shapes.
package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/woozymasta/tourmap/internal/geo"
	"github.com/woozymasta/tourmap/internal/metrics"

	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyResponse is returned when the provider body is empty or JSON null.
	ErrEmptyResponse = errors.New("directions provider returned an empty response")
	// ErrNoRoute is returned when the response holds no usable route.
	ErrNoRoute = errors.New("no route found")
)

// UnavailableError reports a transport, timeout or protocol failure of the provider.
type UnavailableError struct {
	Profile string
	Status  int
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("directions %s: provider returned status %d", e.Profile, e.Status)
	}
	return fmt.Sprintf("directions %s: provider unavailable: %v", e.Profile, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Mode selects the endpoint flavour.
const (
	ModeGeoJSON = "geojson"
	ModeSummary = "summary"
)

// maxBodySize caps how much of a provider response is read.
const maxBodySize = 16 << 20

// Client posts directions requests to a single provider.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	mode    string
}

// NewClient creates a directions client. An unknown mode falls back to geojson.
func NewClient(client *http.Client, baseURL, apiKey, mode string) *Client {
	if mode != ModeSummary {
		mode = ModeGeoJSON
	}

	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		mode:    mode,
	}
}

type routeRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// GetRoute requests a route between from and to for the travel profile
// (e.g. "foot-walking"). Distance and duration stay in meters and seconds.
func (c *Client) GetRoute(ctx context.Context, profile string, from, to geo.GeoPoint) (res RouteResult, err error) {
	if profile == "" {
		return nil, errors.New("directions: empty profile")
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider("directions", start, err) }()

	// provider payloads are [lon, lat]
	body, err := json.Marshal(routeRequest{Coordinates: [][2]float64{
		{from.Lon, from.Lat},
		{to.Lon, to.Lat},
	}})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/v2/directions/" + url.PathEscape(profile)
	if c.mode == ModeGeoJSON {
		endpoint += "/geojson"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, application/geo+json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	log.Debug().
		Str("profile", profile).
		Str("from", from.String()).
		Str("to", to.String()).
		Str("mode", c.mode).
		Msg("Requesting route")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Profile: profile, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &UnavailableError{Profile: profile, Err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// routable point not found near one of the coordinates
		return nil, fmt.Errorf("%w: provider returned status %d", ErrNoRoute, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &UnavailableError{Profile: profile, Status: resp.StatusCode}
	}

	res, err = ParseResponse(data)
	switch {
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrNoRoute):
		return nil, err
	case err != nil:
		// undecodable body or broken geometry
		return nil, &UnavailableError{Profile: profile, Status: resp.StatusCode, Err: err}
	}

	m := res.Metrics()
	log.Debug().
		Str("profile", profile).
		Float64("distance_m", m.DistanceMeters).
		Float64("duration_s", m.DurationSeconds).
		Bool("geometry", isWithGeometry(res)).
		Msg("Route received")

	return res, nil
}

func isWithGeometry(r RouteResult) bool {
	_, ok := r.(*WithGeometry)
	return ok
}
