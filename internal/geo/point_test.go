package geo

import "testing"

func TestParseLatLon(t *testing.T) {
	tests := []struct {
		in     string
		want   GeoPoint
		wantOK bool
	}{
		{"48.2082,16.3738", GeoPoint{Lat: 48.2082, Lon: 16.3738}, true},
		{" 48.2082 , 16.3738 ", GeoPoint{Lat: 48.2082, Lon: 16.3738}, true},
		{"-33.9,151.2", GeoPoint{Lat: -33.9, Lon: 151.2}, true},
		{"Stephansplatz, Wien", GeoPoint{}, false},
		{"91,0", GeoPoint{}, false},
		{"0,181", GeoPoint{}, false},
		{"48.2", GeoPoint{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLatLon(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewGeoPoint(t *testing.T) {
	if _, err := NewGeoPoint(48.2, 16.3); err != nil {
		t.Errorf("valid point: %v", err)
	}
	if _, err := NewGeoPoint(-90.1, 0); err == nil {
		t.Error("lat -90.1: expected error")
	}
	if _, err := NewGeoPoint(0, 180.5); err == nil {
		t.Error("lon 180.5: expected error")
	}
}

func TestCenterAndBound(t *testing.T) {
	path := []GeoPoint{{Lat: 10, Lon: 20}, {Lat: 20, Lon: 40}}

	c := Center(path)
	if c.Lat != 15 || c.Lon != 30 {
		t.Errorf("Center = %s, want 15,30", c)
	}

	b := Bound(path)
	if b.Min.Lat() != 10 || b.Max.Lat() != 20 || b.Min.Lon() != 20 || b.Max.Lon() != 40 {
		t.Errorf("Bound = %v", b)
	}
}

func TestLineStringSwapsOrder(t *testing.T) {
	path := []GeoPoint{{Lat: 48.2, Lon: 16.3}}

	ls := LineString(path)
	if ls[0][0] != 16.3 || ls[0][1] != 48.2 {
		t.Fatalf("LineString = %v, want [lon, lat]", ls)
	}

	back := PathFromLineString(ls)
	if back[0] != path[0] {
		t.Fatalf("PathFromLineString = %v, want %v", back, path)
	}

	fc := RouteFeatureCollection(path, map[string]interface{}{"profile": "foot-walking"})
	if len(fc.Features) != 3 {
		t.Fatalf("features = %d, want 3", len(fc.Features))
	}
	if fc.Features[0].Properties["profile"] != "foot-walking" {
		t.Errorf("line properties = %v", fc.Features[0].Properties)
	}
}
