package directions

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/woozymasta/tourmap/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Internal structures for JSON parsing. The provider has shipped both a
// GeoJSON FeatureCollection and a plain routes[] document over time.
type wireResponse struct {
	Features []wireFeature `json:"features"`
	Routes   []wireRoute   `json:"routes"`
}

type wireFeature struct {
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties struct {
		Segments []wireSummary `json:"segments"`
		Summary  *wireSummary  `json:"summary"`
	} `json:"properties"`
}

type wireRoute struct {
	Summary  *wireSummary    `json:"summary"`
	Geometry json.RawMessage `json:"geometry"`
}

type wireSummary struct {
	Distance *float64 `json:"distance"`
	Duration *float64 `json:"duration"`
}

func (s *wireSummary) complete() bool {
	return s != nil && s.Distance != nil && s.Duration != nil
}

func (s *wireSummary) summary() Summary {
	return Summary{DistanceMeters: *s.Distance, DurationSeconds: *s.Duration}
}

// ParseResponse normalises a directions response body. It tries, in order,
// a GeoJSON FeatureCollection and a routes[] document with a summary.
func ParseResponse(data []byte) (RouteResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyResponse
	}

	var doc wireResponse
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	switch {
	case len(doc.Features) > 0:
		return fromFeature(doc.Features[0])
	case len(doc.Routes) > 0:
		return fromRoute(doc.Routes[0])
	default:
		return nil, ErrNoRoute
	}
}

func fromFeature(f wireFeature) (RouteResult, error) {
	var s *wireSummary
	if len(f.Properties.Segments) > 0 {
		s = &f.Properties.Segments[0]
	}
	if !s.complete() {
		s = f.Properties.Summary
	}
	if !s.complete() {
		return nil, fmt.Errorf("%w: feature has no distance/duration", ErrNoRoute)
	}

	if f.Geometry == nil {
		return &SummaryOnly{Summary: s.summary()}, nil
	}

	path := pathFromGeometry(f.Geometry.Geometry())
	if len(path) < 2 {
		return &SummaryOnly{Summary: s.summary()}, nil
	}

	return &WithGeometry{Summary: s.summary(), Path: path}, nil
}

func fromRoute(r wireRoute) (RouteResult, error) {
	if !r.Summary.complete() {
		return nil, fmt.Errorf("%w: route has no distance/duration", ErrNoRoute)
	}

	// routes[] documents may carry the geometry as an encoded polyline
	var encoded string
	if len(r.Geometry) == 0 || json.Unmarshal(r.Geometry, &encoded) != nil || encoded == "" {
		return &SummaryOnly{Summary: r.Summary.summary()}, nil
	}

	path, err := geo.DecodePolyline(encoded)
	if err != nil {
		return nil, fmt.Errorf("route geometry: %w", err)
	}
	if len(path) < 2 {
		return &SummaryOnly{Summary: r.Summary.summary()}, nil
	}

	return &WithGeometry{Summary: r.Summary.summary(), Path: path}, nil
}

// pathFromGeometry flattens line geometries to canonical (lat, lon) points.
func pathFromGeometry(g orb.Geometry) []geo.GeoPoint {
	switch v := g.(type) {
	case orb.LineString:
		return geo.PathFromLineString(v)
	case orb.MultiLineString:
		var path []geo.GeoPoint
		for _, ls := range v {
			path = append(path, geo.PathFromLineString(ls)...)
		}
		return path
	default:
		return nil
	}
}
