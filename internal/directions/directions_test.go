package directions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/woozymasta/tourmap/internal/geo"
)

var (
	vienna1 = geo.GeoPoint{Lat: 48.2082, Lon: 16.3738}
	vienna2 = geo.GeoPoint{Lat: 48.2000, Lon: 16.3600}
)

func TestGetRouteRequest(t *testing.T) {
	var (
		gotMethod, gotPath, gotAuth string
		gotBody                     routeRequest
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(geojsonBody))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "secret-key", ModeGeoJSON)
	res, err := c.GetRoute(context.Background(), "foot-walking", vienna1, vienna2)
	if err != nil {
		t.Fatalf("GetRoute: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/v2/directions/foot-walking/geojson" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	want := [][2]float64{{16.3738, 48.2082}, {16.3600, 48.2000}}
	if len(gotBody.Coordinates) != 2 || gotBody.Coordinates[0] != want[0] || gotBody.Coordinates[1] != want[1] {
		t.Errorf("coordinates = %v, want %v", gotBody.Coordinates, want)
	}

	if _, ok := res.(*WithGeometry); !ok {
		t.Errorf("result = %T, want *WithGeometry", res)
	}
}

func TestGetRouteSummaryMode(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"routes":[{"summary":{"distance":1500,"duration":1100}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "", ModeSummary)
	res, err := c.GetRoute(context.Background(), "cycling-regular", vienna1, vienna2)
	if err != nil {
		t.Fatalf("GetRoute: %v", err)
	}
	if gotPath != "/v2/directions/cycling-regular" {
		t.Errorf("path = %q", gotPath)
	}
	if _, ok := res.(*SummaryOnly); !ok {
		t.Errorf("result = %T, want *SummaryOnly", res)
	}
}

func TestGetRouteFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantAs  bool
	}{
		{"no features", http.StatusOK, `{"features":[]}`, ErrNoRoute, false},
		{"empty body", http.StatusOK, ``, ErrEmptyResponse, false},
		{"routable point not found", http.StatusNotFound, `{"error":{"code":2010}}`, ErrNoRoute, false},
		{"provider down", http.StatusServiceUnavailable, ``, nil, true},
		{"unauthorized", http.StatusForbidden, `{"error":"Access to this API has been disallowed"}`, nil, true},
		{"undecodable body", http.StatusOK, `<html>gateway error</html>`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.Client(), srv.URL, "k", ModeGeoJSON).
				GetRoute(context.Background(), "foot-walking", vienna1, vienna2)

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantAs {
				var ue *UnavailableError
				if !errors.As(err, &ue) {
					t.Fatalf("err = %v, want *UnavailableError", err)
				}
				if ue.Status != tt.status {
					t.Errorf("status = %d, want %d", ue.Status, tt.status)
				}
			}
		})
	}
}

func TestGetRouteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(http.DefaultClient, url, "", ModeGeoJSON).
		GetRoute(context.Background(), "foot-walking", vienna1, vienna2)

	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UnavailableError", err)
	}
}

func TestGetRouteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond

	_, err := NewClient(client, srv.URL, "k", ModeGeoJSON).
		GetRoute(context.Background(), "foot-walking", vienna1, vienna2)

	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UnavailableError", err)
	}
}
