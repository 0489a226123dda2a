// Package geocode resolves free-text place names to coordinates through a
// Nominatim compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/tourmap/internal/geo"
	"github.com/woozymasta/tourmap/internal/metrics"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound is returned when the provider has no result for the address.
	ErrNotFound = errors.New("address not found")
	// ErrEmptyAddress is returned for a blank address without issuing a request.
	ErrEmptyAddress = errors.New("empty address")
)

// UnavailableError reports a transport, timeout or protocol failure of the provider.
type UnavailableError struct {
	Address string
	Status  int
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("geocoding %q: provider returned status %d", e.Address, e.Status)
	}
	return fmt.Sprintf("geocoding %q: provider unavailable: %v", e.Address, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Resolver issues search requests against a single provider.
type Resolver struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewResolver creates a resolver. The client is shared and may carry a timeout.
func NewResolver(client *http.Client, baseURL, userAgent string) *Resolver {
	return &Resolver{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// Internal structure for JSON parsing, coordinates arrive as decimal strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the coordinates of the first search hit for address.
// There is no retry: the caller aborts its operation on any error.
func (r *Resolver) Resolve(ctx context.Context, address string) (p geo.GeoPoint, err error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return geo.GeoPoint{}, ErrEmptyAddress
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider("geocode", start, err) }()

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("q", address)
	reqURL := r.baseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return geo.GeoPoint{}, err
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	log.Debug().Str("address", address).Msg("Geocoding address")

	resp, err := r.client.Do(req)
	if err != nil {
		return geo.GeoPoint{}, &UnavailableError{Address: address, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.GeoPoint{}, &UnavailableError{Address: address, Status: resp.StatusCode}
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.GeoPoint{}, &UnavailableError{Address: address, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(results) == 0 {
		return geo.GeoPoint{}, fmt.Errorf("%w: %q", ErrNotFound, address)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return geo.GeoPoint{}, &UnavailableError{Address: address, Err: fmt.Errorf("parse lat %q: %w", first.Lat, err)}
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return geo.GeoPoint{}, &UnavailableError{Address: address, Err: fmt.Errorf("parse lon %q: %w", first.Lon, err)}
	}

	p, err = geo.NewGeoPoint(lat, lon)
	if err != nil {
		return geo.GeoPoint{}, &UnavailableError{Address: address, Err: err}
	}

	log.Debug().
		Str("address", address).
		Str("match", first.DisplayName).
		Float64("lat", p.Lat).
		Float64("lon", p.Lon).
		Msg("Address resolved")

	return p, nil
}
