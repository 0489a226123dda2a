// Package server exposes the route map pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/tourmap/internal/directions"
	"github.com/woozymasta/tourmap/internal/geo"
	"github.com/woozymasta/tourmap/internal/metrics"
	"github.com/woozymasta/tourmap/internal/processor"
)

// Routes registers every handler on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/route", s.HandleRoute)
	mux.HandleFunc("GET /api/route/map", s.HandleRouteMap)
	mux.HandleFunc("GET /api/geocode", s.HandleGeocode)
	mux.HandleFunc("GET /api/polyline/decode", s.HandlePolylineDecode)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", s.HandleIndex)

	return mux
}

// RouteResponse is the JSON body of /api/route.
type RouteResponse struct {
	From            geo.GeoPoint   `json:"from"`
	To              geo.GeoPoint   `json:"to"`
	Profile         string         `json:"profile"`
	DistanceKm      float64        `json:"distance_km"`
	DurationSeconds float64        `json:"duration_seconds"`
	Duration        string         `json:"duration"`
	Routed          bool           `json:"routed"`
	Polyline        string         `json:"polyline"`
	StaticMapURL    string         `json:"static_map_url"`
	Points          []geo.GeoPoint `json:"points"`
}

func routeRequest(r *http.Request) (processor.Request, error) {
	q := r.URL.Query()
	req := processor.Request{
		From:    q.Get("from"),
		To:      q.Get("to"),
		Profile: q.Get("profile"),
		Format:  strings.ToLower(q.Get("format")),
	}
	if strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.To) == "" {
		return req, fmt.Errorf("query parameters 'from' and 'to' are required")
	}
	if req.Format != "" && req.Format != processor.FormatPNG && req.Format != processor.FormatWebP {
		return req, fmt.Errorf("unsupported format %q", req.Format)
	}
	if z := q.Get("zoom"); z != "" {
		zoom, err := strconv.Atoi(z)
		if err != nil || zoom < 1 || zoom > 19 {
			return req, fmt.Errorf("invalid zoom %q", z)
		}
		req.Zoom = zoom
	}

	var err error
	if req.MaxWidth, err = optionalSize(q.Get("max_width")); err != nil {
		return req, fmt.Errorf("invalid max_width: %w", err)
	}
	if req.MaxHeight, err = optionalSize(q.Get("max_height")); err != nil {
		return req, fmt.Errorf("invalid max_height: %w", err)
	}

	return req, nil
}

// optionalSize parses a positive pixel size; empty means unbounded.
func optionalSize(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}

	return n, nil
}

// HandleRoute returns route metrics, the encoded path and a static-map URL.
func (s *ServerContext) HandleRoute(w http.ResponseWriter, r *http.Request) {
	req, err := routeRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rep, err := s.RouteMap.Plan(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	zoom := req.Zoom
	if zoom == 0 {
		zoom = s.RouteMap.Zoom
	}
	sm := s.Config.StaticMap
	staticURL, err := directions.StaticMapURL(sm.BaseURL, rep.Path, sm.Width, sm.Height, zoom)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RouteResponse{
		From:            rep.From,
		To:              rep.To,
		Profile:         rep.Profile,
		DistanceKm:      rep.DistanceKm,
		DurationSeconds: rep.Duration.Seconds(),
		Duration:        rep.Duration.String(),
		Routed:          rep.Routed,
		Polyline:        rep.Polyline,
		StaticMapURL:    staticURL,
		Points:          rep.Path,
	})
}

// imageAssembler writes a rendered report as the HTTP response body.
type imageAssembler struct {
	w http.ResponseWriter
}

func (a imageAssembler) Assemble(_ context.Context, rep *processor.Report) error {
	h := a.w.Header()
	h.Set("Content-Type", processor.ContentType(rep.Format))
	h.Set("Content-Length", strconv.Itoa(len(rep.Image)))
	h.Set("Cache-Control", "no-store")
	h.Set("X-Route-Distance-Km", strconv.FormatFloat(rep.DistanceKm, 'f', 3, 64))
	h.Set("X-Route-Duration", rep.Duration.String())
	b := rep.Grid.Bound()
	h.Set("X-Route-Bbox", fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()))
	a.w.WriteHeader(http.StatusOK)

	_, err := a.w.Write(rep.Image)
	return err
}

// HandleRouteMap renders the stitched route image.
func (s *ServerContext) HandleRouteMap(w http.ResponseWriter, r *http.Request) {
	req, err := routeRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rep, err := s.RouteMap.Render(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Ignoring error as we cannot handle client disconnects
	_ = imageAssembler{w: w}.Assemble(r.Context(), rep)
}

// HandleGeocode resolves ?q= to coordinates.
func (s *ServerContext) HandleGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeBadRequest(w, "query parameter 'q' is required")
		return
	}

	p, err := s.RouteMap.Geocoder.Resolve(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// HandlePolylineDecode decodes ?p= into a list of points.
func (s *ServerContext) HandlePolylineDecode(w http.ResponseWriter, r *http.Request) {
	path, err := geo.DecodePolyline(r.URL.Query().Get("p"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if path == nil {
		path = []geo.GeoPoint{}
	}

	writeJSON(w, http.StatusOK, path)
}

// HandleIndex serves the viewer page.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	etag := s.IndexETag
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}
