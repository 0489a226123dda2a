package processor

import (
	"fmt"
	"net/http"
	"time"

	"github.com/woozymasta/tourmap/internal/config"
	"github.com/woozymasta/tourmap/internal/directions"
	"github.com/woozymasta/tourmap/internal/geocode"
)

// NewHTTPClient returns the client shared by geocoding, directions and tile fetches.
func NewHTTPClient(timeout time.Duration, maxConns int) *http.Client {
	if maxConns <= 0 {
		maxConns = 4
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxConns * 2,
			MaxIdleConnsPerHost: maxConns,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: timeout,
	}
}

// FromConfig wires a RouteMap and its collaborators around one client.
func FromConfig(client *http.Client, cfg *config.Config) (*RouteMap, error) {
	lineColor, err := ParseHexColor(cfg.Overlay.Color)
	if err != nil {
		return nil, fmt.Errorf("overlay color: %w", err)
	}

	return &RouteMap{
		Geocoder: geocode.NewResolver(client, cfg.Geocoding.BaseURL, cfg.Tiles.UserAgent),
		Router:   directions.NewClient(client, cfg.Directions.BaseURL, cfg.Directions.APIKey, cfg.Directions.Mode),
		Stitcher: NewStitcher(client, StitcherOptions{
			URLTemplate: cfg.Tiles.URL,
			UserAgent:   cfg.Tiles.UserAgent,
			TileSize:    cfg.Tiles.TileSize,
			Concurrency: cfg.Tiles.Concurrency,
			MaxTiles:    cfg.Tiles.MaxTiles,
		}),
		Overlay: Overlay{Color: lineColor, Width: cfg.Overlay.Width},
		Zoom:    cfg.Tiles.Zoom,
		Profile: cfg.Directions.Profile,
	}, nil
}
