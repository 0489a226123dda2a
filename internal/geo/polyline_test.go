package geo

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestEncodePolylineKnownVector(t *testing.T) {
	path := []GeoPoint{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	got := EncodePolyline(path)
	want := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	if got != want {
		t.Fatalf("EncodePolyline = %q, want %q", got, want)
	}
}

func TestEncodePolylineEmpty(t *testing.T) {
	if got := EncodePolyline(nil); got != "" {
		t.Errorf("EncodePolyline(nil) = %q, want empty", got)
	}
	if got := EncodePolyline([]GeoPoint{}); got != "" {
		t.Errorf("EncodePolyline([]) = %q, want empty", got)
	}
}

func TestDecodePolylineKnownVector(t *testing.T) {
	path, err := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	if err != nil {
		t.Fatalf("DecodePolyline: %v", err)
	}

	want := []GeoPoint{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}
	if len(path) != len(want) {
		t.Fatalf("got %d points, want %d", len(path), len(want))
	}
	for i := range want {
		assertNear(t, path[i], want[i], 1e-5)
	}
}

func TestDecodePolylineEmpty(t *testing.T) {
	path, err := DecodePolyline("")
	if err != nil {
		t.Fatalf("DecodePolyline(\"\"): %v", err)
	}
	if len(path) != 0 {
		t.Errorf("got %d points, want 0", len(path))
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 0; n < 50; n++ {
		path := make([]GeoPoint, n)
		for i := range path {
			path[i] = GeoPoint{
				Lat: rng.Float64()*180 - 90,
				Lon: rng.Float64()*360 - 180,
			}
		}

		got, err := DecodePolyline(EncodePolyline(path))
		if err != nil {
			t.Fatalf("n=%d: DecodePolyline: %v", n, err)
		}
		if len(got) != len(path) {
			t.Fatalf("n=%d: got %d points, want %d", n, len(got), len(path))
		}
		for i := range path {
			assertNear(t, got[i], path[i], 1e-5)
		}
	}
}

func TestPolylineRoundTripExtremes(t *testing.T) {
	path := []GeoPoint{
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
		{Lat: 0, Lon: 0},
		{Lat: 0.000004, Lon: -0.000004},
		{Lat: 48.2082, Lon: 16.3738},
		{Lat: 48.2082, Lon: 16.3738},
	}

	got, err := DecodePolyline(EncodePolyline(path))
	if err != nil {
		t.Fatalf("DecodePolyline: %v", err)
	}
	for i := range path {
		assertNear(t, got[i], path[i], 1e-5)
	}
}

func TestDecodePolylineMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"continuation bit on last byte", "_p~iF~ps|"},
		{"latitude without longitude", "_p~iF"},
		{"single continuation char", "_"},
		{"character below range", "_p~iF~ps|U\x20"},
		{"character above range", "\x7f"},
		{"final chunk overflows 64 bits", strings.Repeat("~", 12) + "^" + "?"},
		{"continuation past 64 bits", strings.Repeat("~", 14) + "??"},
		{"latitude out of range", encodeRaw(9100000, 0)},
		{"longitude out of range", encodeRaw(0, -18000001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePolyline(tt.input)
			if !errors.Is(err, ErrMalformedPolyline) {
				t.Fatalf("err = %v, want ErrMalformedPolyline", err)
			}
		})
	}
}

func assertNear(t *testing.T, got, want GeoPoint, eps float64) {
	t.Helper()
	if math.Abs(got.Lat-want.Lat) > eps || math.Abs(got.Lon-want.Lon) > eps {
		t.Errorf("point = %s, want %s (±%g)", got, want, eps)
	}
}

// encodeRaw writes one point from raw 1e5-scaled integers, bypassing range checks.
func encodeRaw(lat, lon int64) string {
	return string(appendPolylineValue(appendPolylineValue(nil, lat), lon))
}
