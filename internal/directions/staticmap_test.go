package directions

import (
	"net/url"
	"strings"
	"testing"

	"github.com/woozymasta/tourmap/internal/geo"
)

func TestStaticMapURL(t *testing.T) {
	path := []geo.GeoPoint{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	got, err := StaticMapURL("https://staticmap.openstreetmap.de/staticmap.php", path, 600, 400, 14)
	if err != nil {
		t.Fatalf("StaticMapURL: %v", err)
	}

	wantPrefix := "https://staticmap.openstreetmap.de/staticmap.php?size=600x400&center="
	if !strings.HasPrefix(got, wantPrefix) {
		t.Fatalf("url = %q, want prefix %q", got, wantPrefix)
	}
	if !strings.Contains(got, "&zoom=14&") {
		t.Errorf("url %q missing zoom", got)
	}
	if !strings.Contains(got, "&markers=38.5,-120.2,blue1|43.252,-126.453,red1&") {
		t.Errorf("url %q missing markers", got)
	}

	enc := got[strings.Index(got, "&path=enc:")+len("&path=enc:"):]
	raw, err := url.QueryUnescape(enc)
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	if raw != "_p~iF~ps|U_ulLnnqC_mqNvxq`@" {
		t.Errorf("encoded path = %q", raw)
	}
}

func TestStaticMapURLEmptyPath(t *testing.T) {
	if _, err := StaticMapURL("https://example.org", nil, 1, 1, 1); err == nil {
		t.Fatal("expected error for empty path")
	}
}
