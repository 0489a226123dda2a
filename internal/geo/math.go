package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// MaxLat is the latitude where the spherical Web Mercator projection is cut off.
// Inputs beyond ±MaxLat are clamped to it before projecting.
const MaxLat = 85.05112878

// DefaultTileSize is the edge length of a slippy-map tile in pixels.
const DefaultTileSize = 256

// ErrEmptyPath is returned when a tile grid is requested for a path without points.
var ErrEmptyPath = errors.New("path has no points")

// TileCoordinate addresses a single tile of the slippy-map scheme.
type TileCoordinate struct {
	Z, X, Y int
}

// TileFraction projects lon/lat onto the tile plane at the given zoom and
// returns fractional tile coordinates. It is the single projection used by
// both LonLatToTile and LonLatToPixel, so tiles and overlays always agree.
func TileFraction(lon, lat float64, zoom int) (fx, fy float64) {
	if lat > MaxLat {
		lat = MaxLat
	} else if lat < -MaxLat {
		lat = -MaxLat
	}

	n := float64(uint64(1) << uint(zoom))
	latRad := lat * math.Pi / 180.0

	fx = (lon + 180.0) / 360.0 * n
	fy = (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n

	return fx, fy
}

// LonLatToTile returns the index of the tile containing lon/lat at zoom.
// Latitude is clamped to ±MaxLat and the result is clamped to [0, 2^zoom),
// so lon=180 maps to the last column rather than off the grid. A negative
// zoom is treated as zoom 0.
func LonLatToTile(lon, lat float64, zoom int) (x, y int) {
	zoom = max(zoom, 0)
	fx, fy := TileFraction(lon, lat, zoom)
	limit := (1 << uint(zoom)) - 1

	return clampTile(int(math.Floor(fx)), limit), clampTile(int(math.Floor(fy)), limit)
}

// LonLatToPixel returns the pixel of lon/lat inside a raster whose top-left
// tile is (originX, originY).
func LonLatToPixel(lon, lat float64, zoom, originX, originY, tileSize int) (px, py int) {
	fx, fy := TileFraction(lon, lat, zoom)
	size := float64(tileSize)

	px = int(math.Round(fx*size - float64(originX)*size))
	py = int(math.Round(fy*size - float64(originY)*size))

	return px, py
}

// TileToLonLat returns the north-west corner of tile x/y at zoom
// using the inverse Mercator projection.
func TileToLonLat(x, y, zoom int) (lon, lat float64) {
	n := float64(uint64(1) << uint(zoom))

	lon = float64(x)/n*360.0 - 180.0
	mercatorY := math.Pi * (1.0 - 2.0*float64(y)/n)
	lat = math.Atan(math.Sinh(mercatorY)) * (180.0 / math.Pi)

	return lon, lat
}

func clampTile(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}

	return v
}

// TileGrid is the minimal rectangle of tiles covering a bounding box.
type TileGrid struct {
	Zoom     int `json:"zoom"`
	MinX     int `json:"min_x"`
	MinY     int `json:"min_y"`
	MaxX     int `json:"max_x"`
	MaxY     int `json:"max_y"`
	TileSize int `json:"tile_size"`
}

// GridFor computes the tile grid covering the bounding box of path.
// Tile Y grows southwards, so the corners are re-ordered per axis.
func GridFor(path []GeoPoint, zoom, tileSize int) (TileGrid, error) {
	if len(path) == 0 {
		return TileGrid{}, ErrEmptyPath
	}
	if zoom < 0 || zoom > 30 {
		return TileGrid{}, fmt.Errorf("zoom %d out of range", zoom)
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	b := Bound(path)
	x1, y1 := LonLatToTile(b.Min.Lon(), b.Min.Lat(), zoom)
	x2, y2 := LonLatToTile(b.Max.Lon(), b.Max.Lat(), zoom)

	return TileGrid{
		Zoom:     zoom,
		MinX:     min(x1, x2),
		MaxX:     max(x1, x2),
		MinY:     min(y1, y2),
		MaxY:     max(y1, y2),
		TileSize: tileSize,
	}, nil
}

// Width is the number of tile columns.
func (g TileGrid) Width() int { return g.MaxX - g.MinX + 1 }

// Height is the number of tile rows.
func (g TileGrid) Height() int { return g.MaxY - g.MinY + 1 }

// Count is the number of tiles in the grid.
func (g TileGrid) Count() int { return g.Width() * g.Height() }

// PixelSize returns the raster dimensions the grid stitches into.
func (g TileGrid) PixelSize() (w, h int) {
	return g.Width() * g.TileSize, g.Height() * g.TileSize
}

// Tiles lists the grid's tiles in row-major order.
func (g TileGrid) Tiles() []TileCoordinate {
	tiles := make([]TileCoordinate, 0, g.Count())
	for y := g.MinY; y <= g.MaxY; y++ {
		for x := g.MinX; x <= g.MaxX; x++ {
			tiles = append(tiles, TileCoordinate{Z: g.Zoom, X: x, Y: y})
		}
	}

	return tiles
}

// Offset returns the pixel offset of tile t inside the stitched raster.
func (g TileGrid) Offset(t TileCoordinate) (x, y int) {
	return (t.X - g.MinX) * g.TileSize, (t.Y - g.MinY) * g.TileSize
}

// Bound returns the geographic extent covered by the stitched raster.
func (g TileGrid) Bound() orb.Bound {
	west, north := TileToLonLat(g.MinX, g.MinY, g.Zoom)
	east, south := TileToLonLat(g.MaxX+1, g.MaxY+1, g.Zoom)

	return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}
}

// Pixel maps p onto the stitched raster of this grid.
func (g TileGrid) Pixel(p GeoPoint) (x, y int) {
	return LonLatToPixel(p.Lon, p.Lat, g.Zoom, g.MinX, g.MinY, g.TileSize)
}
