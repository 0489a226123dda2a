package directions

import "github.com/woozymasta/tourmap/internal/geo"

// Summary carries the route metrics in the provider's native units.
type Summary struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RouteResult is either *WithGeometry or *SummaryOnly. Callers resolve it
// with a type switch.
type RouteResult interface {
	Metrics() Summary
	routeResult()
}

// WithGeometry is a route whose path has at least two points.
type WithGeometry struct {
	Summary
	Path []geo.GeoPoint
}

// SummaryOnly is a route for which the provider returned metrics but no geometry.
type SummaryOnly struct {
	Summary
}

func (r *WithGeometry) Metrics() Summary { return r.Summary }
func (r *SummaryOnly) Metrics() Summary  { return r.Summary }

func (*WithGeometry) routeResult() {}
func (*SummaryOnly) routeResult()  {}

// PathOrStraight returns the routed path, or the straight segment from→to
// when the result has no geometry.
func PathOrStraight(r RouteResult, from, to geo.GeoPoint) []geo.GeoPoint {
	switch res := r.(type) {
	case *WithGeometry:
		return res.Path
	default:
		return []geo.GeoPoint{from, to}
	}
}
