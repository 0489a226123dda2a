package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// ContentType returns the MIME type of an output format.
func ContentType(format string) string {
	if format == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Encode writes img in the requested format. An empty format means PNG.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "", FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: 90})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// EncodeBytes encodes img into a new buffer.
func EncodeBytes(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fit scales img down to fit within maxWidth x maxHeight, keeping the aspect
// ratio. A non-positive limit leaves that axis unconstrained. Images that
// already fit are returned unchanged.
func Fit(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if maxWidth > 0 && w > maxWidth {
		scale = float64(maxWidth) / float64(w)
	}
	if maxHeight > 0 && h > maxHeight {
		scale = min(scale, float64(maxHeight)/float64(h))
	}
	if scale >= 1 {
		return img
	}

	dw := max(1, int(float64(w)*scale))
	dh := max(1, int(float64(h)*scale))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	return dst
}
