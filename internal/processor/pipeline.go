package processor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/woozymasta/tourmap/internal/directions"
	"github.com/woozymasta/tourmap/internal/geo"
	"github.com/woozymasta/tourmap/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (geo.GeoPoint, error)
}

// Router returns a route between two points for a travel profile.
type Router interface {
	GetRoute(ctx context.Context, profile string, from, to geo.GeoPoint) (directions.RouteResult, error)
}

// ReportAssembler consumes a finished Report, e.g. by embedding it in a document.
type ReportAssembler interface {
	Assemble(ctx context.Context, r *Report) error
}

// Request describes one route map render.
type Request struct {
	From    string // place name or "lat,lon"
	To      string
	Profile string
	Zoom    int    // 0 uses the RouteMap default
	Format  string // png or webp

	// the rendered image is scaled down to fit; 0 leaves an axis unbounded
	MaxWidth  int
	MaxHeight int
}

// Report is the pipeline output handed to a ReportAssembler. Units are
// converted here: kilometres and time.Duration.
type Report struct {
	From       geo.GeoPoint
	To         geo.GeoPoint
	Profile    string
	DistanceKm float64
	Duration   time.Duration
	Path       []geo.GeoPoint
	Polyline   string
	Routed     bool // false when the path is the straight from/to fallback
	Grid       geo.TileGrid
	Image      []byte
	Format     string
}

// RouteMap wires the geocoder, router, stitcher and overlay together.
type RouteMap struct {
	Geocoder Geocoder
	Router   Router
	Stitcher *Stitcher
	Overlay  Overlay
	Zoom     int
	Profile  string
}

// Plan resolves both places and fetches the route without rendering an image.
func (m *RouteMap) Plan(ctx context.Context, req Request) (*Report, error) {
	from, err := m.resolve(ctx, req.From)
	if err != nil {
		return nil, fmt.Errorf("resolve from: %w", err)
	}
	to, err := m.resolve(ctx, req.To)
	if err != nil {
		return nil, fmt.Errorf("resolve to: %w", err)
	}

	profile := req.Profile
	if profile == "" {
		profile = m.Profile
	}

	res, err := m.Router.GetRoute(ctx, profile, from, to)
	if err != nil {
		return nil, err
	}

	if res == nil {
		return nil, fmt.Errorf("%w: empty result", directions.ErrNoRoute)
	}
	path := directions.PathOrStraight(res, from, to)
	_, routed := res.(*directions.WithGeometry)

	s := res.Metrics()
	return &Report{
		From:       from,
		To:         to,
		Profile:    profile,
		DistanceKm: s.DistanceMeters / 1000,
		Duration:   time.Duration(s.DurationSeconds * float64(time.Second)),
		Path:       path,
		Polyline:   geo.EncodePolyline(path),
		Routed:     routed,
	}, nil
}

// Render runs the full pipeline and returns a Report with encoded image bytes.
// Any failure aborts the render; there is no partial report.
func (m *RouteMap) Render(ctx context.Context, req Request) (rep *Report, err error) {
	shape := "unknown"
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.RendersTotal.WithLabelValues(shape, outcome).Inc()
	}()

	rep, err = m.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	shape = "summary"
	if rep.Routed {
		shape = "geometry"
	}

	img, grid, err := m.Draw(ctx, rep.Path, req.Zoom)
	if err != nil {
		return nil, err
	}

	img = Fit(img, req.MaxWidth, req.MaxHeight)

	format := strings.ToLower(req.Format)
	if format == "" {
		format = FormatPNG
	}
	data, err := EncodeBytes(img, format)
	if err != nil {
		return nil, err
	}

	rep.Grid = grid
	rep.Image = data
	rep.Format = format

	log.Info().
		Str("from", rep.From.String()).
		Str("to", rep.To.String()).
		Str("profile", rep.Profile).
		Float64("distance_km", rep.DistanceKm).
		Dur("duration", rep.Duration).
		Int("tiles", grid.Count()).
		Int("bytes", len(data)).
		Msg("Route map rendered")

	return rep, nil
}

// Draw stitches the tiles covering path and draws the path on them.
func (m *RouteMap) Draw(ctx context.Context, path []geo.GeoPoint, zoom int) (image.Image, geo.TileGrid, error) {
	if zoom <= 0 {
		zoom = m.Zoom
	}

	stitched, err := m.Stitcher.Stitch(ctx, path, zoom)
	if err != nil {
		return nil, geo.TileGrid{}, err
	}
	m.Overlay.Draw(stitched, path)

	return stitched.Image, stitched.Grid, nil
}

// RenderTo renders and hands the report to the assembler.
func (m *RouteMap) RenderTo(ctx context.Context, req Request, a ReportAssembler) error {
	rep, err := m.Render(ctx, req)
	if err != nil {
		return err
	}
	return a.Assemble(ctx, rep)
}

// ErrEmptyPlace is returned when a from/to place is blank.
var ErrEmptyPlace = errors.New("empty place")

// resolve accepts literal "lat,lon" coordinates and geocodes anything else.
func (m *RouteMap) resolve(ctx context.Context, place string) (geo.GeoPoint, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return geo.GeoPoint{}, ErrEmptyPlace
	}
	if p, ok := geo.ParseLatLon(place); ok {
		return p, nil
	}

	return m.Geocoder.Resolve(ctx, place)
}
