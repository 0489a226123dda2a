package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	var gotQuery, gotUA, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"48.2082","lon":"16.3738","display_name":"Stephansplatz, Wien"}]`))
	}))
	defer srv.Close()

	r := NewResolver(srv.Client(), srv.URL+"/", "tourmap-test (test@example.com)")
	p, err := r.Resolve(context.Background(), "Stephansplatz, Wien")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if p.Lat != 48.2082 || p.Lon != 16.3738 {
		t.Errorf("point = %s, want 48.2082,16.3738", p)
	}
	if gotPath != "/search" {
		t.Errorf("path = %q, want /search", gotPath)
	}
	if gotQuery != "format=json&limit=1&q=Stephansplatz%2C+Wien" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotUA != "tourmap-test (test@example.com)" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewResolver(srv.Client(), srv.URL, "").Resolve(context.Background(), "Nowhere at all")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveUnavailable(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
		{
			name: "unparsable latitude",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"lat":"north","lon":"16.3"}]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewResolver(srv.Client(), srv.URL, "").Resolve(context.Background(), "Wien")

			var ue *UnavailableError
			if !errors.As(err, &ue) {
				t.Fatalf("err = %v, want *UnavailableError", err)
			}
			if ue.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", ue.Status, tt.wantStatus)
			}
		})
	}
}

func TestResolveTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond

	_, err := NewResolver(client, srv.URL, "").Resolve(context.Background(), "Wien")

	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UnavailableError", err)
	}
}

func TestResolveEmptyAddress(t *testing.T) {
	r := NewResolver(http.DefaultClient, "http://127.0.0.1:1", "")
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("err = %v, want ErrEmptyAddress", err)
	}
}
