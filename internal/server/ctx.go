package server

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/woozymasta/tourmap/assets"
	"github.com/woozymasta/tourmap/internal/config"
	"github.com/woozymasta/tourmap/internal/processor"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	RouteMap  *processor.RouteMap
	IndexHTML []byte
	IndexETag string
}

// NewServerContext builds the handler context and prepares the minified viewer page.
func NewServerContext(cfg *config.Config, rm *processor.RouteMap) (*ServerContext, error) {
	index, err := buildIndex()
	if err != nil {
		return nil, fmt.Errorf("build index page: %w", err)
	}

	log.Info().
		Str("geocoding", cfg.Geocoding.BaseURL).
		Str("directions", cfg.Directions.BaseURL).
		Str("tiles", cfg.Tiles.URL).
		Int("zoom", rm.Zoom).
		Int("index_bytes", len(index)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:    cfg,
		RouteMap:  rm,
		IndexHTML: index,
		IndexETag: fmt.Sprintf(`"%016x"`, xxhash.Sum64(index)),
	}, nil
}

type pageData struct {
	CSS string
	JS  string
}

// buildIndex renders the embedded page template with minified CSS and JS
// and minifies the resulting HTML.
func buildIndex() ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, fmt.Errorf("minify css: %w", err)
	}
	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, fmt.Errorf("minify js: %w", err)
	}

	tmpl, err := template.New("index").Parse(assets.Index)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData{CSS: cssMin, JS: jsMin}); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	out, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}

	return out, nil
}
