// Package processor stitches map tiles into a single raster, draws routes on
// top of it and orchestrates the route map pipeline.
package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/woozymasta/tourmap/internal/geo"
	"github.com/woozymasta/tourmap/internal/metrics"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrGridTooLarge is returned before any fetch when the grid exceeds the tile limit.
var ErrGridTooLarge = errors.New("tile grid too large")

// maxTileBytes caps a single tile download.
const maxTileBytes = 4 << 20

// TileFetchError aborts a stitch. Status is 0 for transport failures.
type TileFetchError struct {
	Zoom, X, Y int
	Status     int
	Err        error
}

func (e *TileFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch tile %d/%d/%d (status %d): %v", e.Zoom, e.X, e.Y, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch tile %d/%d/%d: status %d", e.Zoom, e.X, e.Y, e.Status)
}

func (e *TileFetchError) Unwrap() error { return e.Err }

// StitchedRaster owns the composed pixels and the grid they were stitched from.
type StitchedRaster struct {
	Image *image.RGBA
	Grid  geo.TileGrid
}

// StitcherOptions configures a Stitcher.
type StitcherOptions struct {
	URLTemplate string // {z}, {x}, {y} and {tms_y} placeholders
	UserAgent   string // "<app-id> (<contact-email>)" per tile usage policy
	TileSize    int
	Concurrency int // 1 fetches tiles one at a time
	MaxTiles    int
}

// Stitcher downloads a grid of tiles and composes them into one raster.
type Stitcher struct {
	client *http.Client
	opts   StitcherOptions
}

// NewStitcher creates a stitcher sharing the given client.
func NewStitcher(client *http.Client, opts StitcherOptions) *Stitcher {
	if opts.TileSize <= 0 {
		opts.TileSize = geo.DefaultTileSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxTiles <= 0 {
		opts.MaxTiles = 256
	}

	return &Stitcher{client: client, opts: opts}
}

// TileSize is the tile edge length used by this stitcher.
func (s *Stitcher) TileSize() int { return s.opts.TileSize }

// Stitch fetches every tile covering the bounding box of path at zoom and
// blits it into a fresh raster. Any failed tile fails the whole stitch and
// no raster is returned.
func (s *Stitcher) Stitch(ctx context.Context, path []geo.GeoPoint, zoom int) (*StitchedRaster, error) {
	grid, err := geo.GridFor(path, zoom, s.opts.TileSize)
	if err != nil {
		return nil, err
	}
	if grid.Count() > s.opts.MaxTiles {
		return nil, fmt.Errorf("%w: %dx%d tiles at zoom %d, limit %d",
			ErrGridTooLarge, grid.Width(), grid.Height(), zoom, s.opts.MaxTiles)
	}

	w, h := grid.PixelSize()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	log.Debug().
		Int("zoom", zoom).
		Int("tiles", grid.Count()).
		Int("width", w).
		Int("height", h).
		Msg("Stitching tiles")

	if err := s.fetchAll(ctx, grid, dst); err != nil {
		return nil, err
	}
	metrics.TilesPerStitch.Observe(float64(grid.Count()))

	return &StitchedRaster{Image: dst, Grid: grid}, nil
}

// fetchAll runs a bounded worker pool over the grid in row-major order.
// The first failure cancels the outstanding fetches. Workers write to
// disjoint rectangles of dst, so the blit needs no lock.
func (s *Stitcher) fetchAll(ctx context.Context, grid geo.TileGrid, dst *image.RGBA) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	tiles := grid.Tiles()
	jobs := make(chan geo.TileCoordinate)

	var wg sync.WaitGroup
	for i := 0; i < min(s.opts.Concurrency, len(tiles)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := s.fetchInto(ctx, t, grid, dst); err != nil {
					cancel(err)
				}
			}
		}()
	}

feed:
	for _, t := range tiles {
		select {
		case jobs <- t:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return context.Cause(ctx)
}

func (s *Stitcher) fetchInto(ctx context.Context, t geo.TileCoordinate, grid geo.TileGrid, dst *image.RGBA) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("tiles", start, err) }()

	img, err := s.fetchTile(ctx, t)
	if err != nil {
		return err
	}

	ox, oy := grid.Offset(t)
	rect := image.Rect(ox, oy, ox+grid.TileSize, oy+grid.TileSize)

	if b := img.Bounds(); b.Dx() == grid.TileSize && b.Dy() == grid.TileSize {
		draw.Draw(dst, rect, img, b.Min, draw.Src)
	} else {
		// high-dpi or odd sized tiles are scaled into the slot
		xdraw.CatmullRom.Scale(dst, rect, img, b, draw.Src, nil)
	}

	return nil
}

func (s *Stitcher) fetchTile(ctx context.Context, t geo.TileCoordinate) (image.Image, error) {
	url := buildURL(s.opts.URLTemplate, t)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TileFetchError{Zoom: t.Z, X: t.X, Y: t.Y, Err: err}
	}
	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TileFetchError{Zoom: t.Z, X: t.X, Y: t.Y, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Trace().Str("url", url).Int("status", resp.StatusCode).Msg("Tile fetch failed")
		return nil, &TileFetchError{Zoom: t.Z, X: t.X, Y: t.Y, Status: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, &TileFetchError{Zoom: t.Z, X: t.X, Y: t.Y, Status: resp.StatusCode, Err: err}
	}

	img, format, err := image.Decode(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &TileFetchError{Zoom: t.Z, X: t.X, Y: t.Y, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}

	log.Trace().Str("url", url).Str("format", format).Msg("Tile fetched")
	return img, nil
}

func buildURL(tpl string, c geo.TileCoordinate) string {
	s := strings.ReplaceAll(tpl, "{z}", strconv.Itoa(c.Z))
	s = strings.ReplaceAll(s, "{x}", strconv.Itoa(c.X))
	s = strings.ReplaceAll(s, "{y}", strconv.Itoa(c.Y))

	if strings.Contains(s, "{tms_y}") {
		maxCoord := (1 << c.Z) - 1
		s = strings.ReplaceAll(s, "{tms_y}", strconv.Itoa(maxCoord-c.Y))
	}

	return s
}
