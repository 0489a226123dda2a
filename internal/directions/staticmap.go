package directions

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/woozymasta/tourmap/internal/geo"
)

// StaticMapURL builds a static-map URL that renders the path remotely,
// centred on the mean of its points with blue/red start/end markers.
// It is an alternative output to local stitching.
func StaticMapURL(baseURL string, path []geo.GeoPoint, width, height, zoom int) (string, error) {
	if len(path) == 0 {
		return "", errors.New("static map: empty path")
	}

	center := geo.Center(path)
	first, last := path[0], path[len(path)-1]

	var sb strings.Builder
	sb.WriteString(baseURL)
	sb.WriteString("?size=")
	sb.WriteString(strconv.Itoa(width))
	sb.WriteByte('x')
	sb.WriteString(strconv.Itoa(height))
	sb.WriteString("&center=")
	sb.WriteString(center.String())
	sb.WriteString("&zoom=")
	sb.WriteString(strconv.Itoa(zoom))
	sb.WriteString("&markers=")
	sb.WriteString(first.String())
	sb.WriteString(",blue1|")
	sb.WriteString(last.String())
	sb.WriteString(",red1")
	sb.WriteString("&path=enc:")
	sb.WriteString(url.QueryEscape(geo.EncodePolyline(path)))

	return sb.String(), nil
}
