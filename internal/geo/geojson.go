package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LineString converts a path to an orb.LineString in GeoJSON [lon, lat] order.
func LineString(path []GeoPoint) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, p := range path {
		ls = append(ls, p.Orb())
	}

	return ls
}

// PathFromLineString converts [lon, lat] positions back to canonical GeoPoints.
func PathFromLineString(ls orb.LineString) []GeoPoint {
	path := make([]GeoPoint, 0, len(ls))
	for _, p := range ls {
		path = append(path, FromOrb(p))
	}

	return path
}

// RouteFeatureCollection wraps the path as a single LineString feature
// plus start/end point features, carrying props on the line.
func RouteFeatureCollection(path []GeoPoint, props map[string]interface{}) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(path) == 0 {
		return fc
	}

	line := geojson.NewFeature(LineString(path))
	for k, v := range props {
		line.Properties[k] = v
	}
	fc.Append(line)

	start := geojson.NewFeature(path[0].Orb())
	start.Properties["name"] = "start"
	fc.Append(start)

	end := geojson.NewFeature(path[len(path)-1].Orb())
	end.Properties["name"] = "end"
	fc.Append(end)

	return fc
}
