package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedPolyline is returned when a polyline string cannot be decoded.
var ErrMalformedPolyline = errors.New("malformed polyline")

const polylinePrecision = 1e5

// EncodePolyline encodes the path with the Google polyline algorithm at
// five decimal places. Latitude is emitted before longitude for every point.
func EncodePolyline(path []GeoPoint) string {
	buf := make([]byte, 0, len(path)*8)

	var prevLat, prevLon int64
	for _, p := range path {
		lat := int64(math.Round(p.Lat * polylinePrecision))
		lon := int64(math.Round(p.Lon * polylinePrecision))

		buf = appendPolylineValue(buf, lat-prevLat)
		buf = appendPolylineValue(buf, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return string(buf)
}

// DecodePolyline is the inverse of EncodePolyline.
func DecodePolyline(s string) ([]GeoPoint, error) {
	var (
		path     []GeoPoint
		lat, lon int64
	)

	for i := 0; i < len(s); {
		dLat, next, err := readPolylineValue(s, i)
		if err != nil {
			return nil, err
		}
		dLon, next, err := readPolylineValue(s, next)
		if err != nil {
			return nil, err
		}
		i = next

		lat += dLat
		lon += dLon
		p := GeoPoint{
			Lat: float64(lat) / polylinePrecision,
			Lon: float64(lon) / polylinePrecision,
		}
		if !p.Valid() {
			return nil, fmt.Errorf("%w: point %d out of range: %s", ErrMalformedPolyline, len(path), p)
		}
		path = append(path, p)
	}

	return path, nil
}

// appendPolylineValue zig-zag encodes n and writes it in 5-bit chunks,
// setting the 0x20 continuation bit on every chunk but the last.
func appendPolylineValue(buf []byte, n int64) []byte {
	u := uint64(n << 1)
	if n < 0 {
		u = ^u
	}

	for u >= 0x20 {
		buf = append(buf, byte((u&0x1f)|0x20)+63)
		u >>= 5
	}

	return append(buf, byte(u)+63)
}

func readPolylineValue(s string, i int) (int64, int, error) {
	var (
		result uint64
		shift  uint
	)

	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("%w: input ends inside a value at offset %d", ErrMalformedPolyline, i)
		}

		b := int(s[i]) - 63
		if b < 0 || b > 0x3f {
			return 0, i, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedPolyline, s[i], i)
		}
		i++

		// only four payload bits fit above shift 60
		if shift > 60 || (shift == 60 && b&0x1f > 0xf) {
			return 0, i, fmt.Errorf("%w: value overflows at offset %d", ErrMalformedPolyline, i)
		}
		result |= uint64(b&0x1f) << shift
		shift += 5

		if b < 0x20 {
			break
		}
	}

	v := int64(result >> 1)
	if result&1 != 0 {
		v = ^v
	}

	return v, i, nil
}
