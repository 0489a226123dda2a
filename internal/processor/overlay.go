package processor

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/woozymasta/tourmap/internal/geo"

	"github.com/golang/freetype/raster"
	"golang.org/x/image/math/fixed"
)

// Overlay draws a route as a connected line with round caps and joins.
type Overlay struct {
	Color color.Color
	Width float64 // pixels
}

// DefaultOverlay is a 4px blue line.
var DefaultOverlay = Overlay{Color: color.RGBA{B: 0xff, A: 0xff}, Width: 4}

// Draw strokes path onto the raster in place, mapping points with the same
// projection and grid origin the raster was stitched with. Paths with fewer
// than two points are ignored. An empty raster is a caller error.
func (o Overlay) Draw(dst *StitchedRaster, path []geo.GeoPoint) {
	if len(path) < 2 {
		return
	}

	bounds := dst.Image.Bounds()

	var (
		q     raster.Path
		last  image.Point
		first fixed.Point26_6
		n     int
	)
	for _, p := range path {
		x, y := dst.Grid.Pixel(p)
		pt := image.Pt(x, y)
		if n > 0 && pt == last {
			continue
		}

		fp := fixed.P(x, y)
		if n == 0 {
			q.Start(fp)
			first = fp
		} else {
			q.Add1(fp)
		}
		last = pt
		n++
	}

	if n == 1 {
		// every point fell on one pixel; a minimal segment still gets round caps
		q.Add1(fixed.Point26_6{X: first.X + 1, Y: first.Y})
	}

	width := o.Width
	if width <= 0 {
		width = DefaultOverlay.Width
	}
	c := o.Color
	if c == nil {
		c = DefaultOverlay.Color
	}

	r := raster.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.UseNonZeroWinding = true
	raster.Stroke(r, q, fixed.Int26_6(width*64), raster.RoundCapper, raster.RoundJoiner)

	painter := raster.NewRGBAPainter(dst.Image)
	painter.SetColor(c)
	r.Rasterize(painter)
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
