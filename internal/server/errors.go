package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/woozymasta/tourmap/internal/directions"
	"github.com/woozymasta/tourmap/internal/geo"
	"github.com/woozymasta/tourmap/internal/geocode"
	"github.com/woozymasta/tourmap/internal/processor"

	"github.com/rs/zerolog/log"
)

// APIError is the JSON error body.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps pipeline errors to an HTTP status and error code.
func classify(err error) (int, string) {
	var (
		geoUnavailable  *geocode.UnavailableError
		dirUnavailable  *directions.UnavailableError
		tileFetchFailed *processor.TileFetchError
	)

	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return http.StatusNotFound, "geocoding_not_found"
	case errors.As(err, &tileFetchFailed):
		return http.StatusBadGateway, "tile_fetch_failed"
	case errors.Is(err, directions.ErrEmptyResponse), errors.As(err, &dirUnavailable):
		return http.StatusBadGateway, "directions_unavailable"
	case errors.As(err, &geoUnavailable):
		return http.StatusBadGateway, "geocoding_unavailable"
	case errors.Is(err, geocode.ErrEmptyAddress),
		errors.Is(err, processor.ErrEmptyPlace),
		errors.Is(err, geo.ErrMalformedPolyline),
		errors.Is(err, geo.ErrEmptyPath):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, directions.ErrNoRoute):
		return http.StatusUnprocessableEntity, "no_route"
	case errors.Is(err, processor.ErrGridTooLarge):
		return http.StatusUnprocessableEntity, "grid_too_large"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("code", code).
		Msg("Request failed")

	writeJSON(w, status, APIError{Status: status, Code: code, Message: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, APIError{Status: http.StatusBadRequest, Code: "bad_request", Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
