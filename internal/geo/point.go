// Package geo holds the coordinate types and the pure math of the route map
// pipeline: the polyline codec, Web Mercator tile math and GeoJSON helpers.
package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// GeoPoint is a WGS84 coordinate in canonical (lat, lon) order.
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// NewGeoPoint returns a point after checking the coordinate ranges.
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	p := GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return GeoPoint{}, fmt.Errorf("coordinate out of range: %s", p)
	}

	return p, nil
}

// Valid reports whether latitude is within [-90,90] and longitude within [-180,180].
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// String formats the point as "lat,lon".
func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// Orb converts the point to an orb.Point, which is ordered [lon, lat].
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an [lon, lat] orb.Point to a GeoPoint.
func FromOrb(p orb.Point) GeoPoint {
	return GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

// ParseLatLon parses a literal "lat,lon" pair such as "48.2082,16.3738".
// The second return value is false when s does not look like a coordinate
// pair, so callers can fall back to geocoding it as a place name.
func ParseLatLon(s string) (GeoPoint, bool) {
	latStr, lonStr, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return GeoPoint{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return GeoPoint{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return GeoPoint{}, false
	}

	p := GeoPoint{Lat: lat, Lon: lon}
	return p, p.Valid()
}

// Bound returns the bounding box of the path. The result is empty for an empty path.
func Bound(path []GeoPoint) orb.Bound {
	return LineString(path).Bound()
}

// Center returns the arithmetic mean of the path coordinates.
func Center(path []GeoPoint) GeoPoint {
	if len(path) == 0 {
		return GeoPoint{}
	}

	var lat, lon float64
	for _, p := range path {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(path))

	return GeoPoint{Lat: lat / n, Lon: lon / n}
}
