package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/woozymasta/tourmap/internal/config"
	"github.com/woozymasta/tourmap/internal/directions"
	"github.com/woozymasta/tourmap/internal/geo"
	"github.com/woozymasta/tourmap/internal/logger"
	"github.com/woozymasta/tourmap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	From        string `short:"f" long:"from"        description:"Start place name or lat,lon" required:"true"`
	To          string `short:"t" long:"to"          description:"End place name or lat,lon" required:"true"`
	Profile     string `short:"P" long:"profile"     description:"Directions profile (default from config)"`
	Output      string `short:"o" long:"out"         description:"Output image path" default:"route.png"`
	Format      string `long:"format"                description:"Image format" choice:"png" choice:"webp" default:"png"`
	GeoJSON     string `short:"g" long:"geojson"     description:"Also write the route as GeoJSON to this path"`
	APIKey      string `short:"k" long:"api-key"     env:"ORS_API_KEY"  description:"Directions provider API key (overrides config)"`
	Zoom        int    `short:"z" long:"zoom"        env:"MAP_ZOOM"     description:"Tile zoom level (overrides config)"`
	Concurrency int    `short:"p" long:"concurrency" env:"CONCURRENCY"  description:"Parallel tile downloads (overrides config)"`
	MaxWidth    int    `long:"max-width"             description:"Scale the image down to at most this width"`
	MaxHeight   int    `long:"max-height"            description:"Scale the image down to at most this height"`
	StaticURL   bool   `short:"s" long:"static-url"  description:"Print the static-map URL instead of stitching tiles"`
}

// fileAssembler writes the rendered report to disk.
type fileAssembler struct {
	imagePath   string
	geojsonPath string
}

func (a fileAssembler) Assemble(_ context.Context, rep *processor.Report) error {
	if err := os.MkdirAll(filepath.Dir(a.imagePath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(a.imagePath, rep.Image, 0644); err != nil {
		return err
	}

	log.Info().
		Str("path", a.imagePath).
		Int("bytes", len(rep.Image)).
		Int("tiles_x", rep.Grid.Width()).
		Int("tiles_y", rep.Grid.Height()).
		Msg("Route image written")

	if a.geojsonPath == "" {
		return nil
	}

	fc := geo.RouteFeatureCollection(rep.Path, map[string]interface{}{
		"profile":          rep.Profile,
		"distance_km":      rep.DistanceKm,
		"duration_seconds": rep.Duration.Seconds(),
		"routed":           rep.Routed,
		"polyline":         rep.Polyline,
	})
	fc.BBox = geojson.NewBBox(rep.Grid.Bound())
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.geojsonPath, data, 0644); err != nil {
		return err
	}

	log.Info().Str("path", a.geojsonPath).Msg("Route GeoJSON written")
	return nil
}

func main() {
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.LoadOptional(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.APIKey != "" {
		cfg.Directions.APIKey = opts.APIKey
	}
	if opts.Zoom > 0 {
		cfg.Tiles.Zoom = opts.Zoom
	}
	if opts.Concurrency > 0 {
		cfg.Tiles.Concurrency = opts.Concurrency
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	client := processor.NewHTTPClient(cfg.Timeout, cfg.Tiles.Concurrency)
	routeMap, err := processor.FromConfig(client, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build route map pipeline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := processor.Request{
		From:      opts.From,
		To:        opts.To,
		Profile:   opts.Profile,
		Format:    opts.Format,
		MaxWidth:  opts.MaxWidth,
		MaxHeight: opts.MaxHeight,
	}

	if opts.StaticURL {
		rep, err := routeMap.Plan(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to plan route")
		}
		sm := cfg.StaticMap
		u, err := directions.StaticMapURL(sm.BaseURL, rep.Path, sm.Width, sm.Height, cfg.Tiles.Zoom)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build static map URL")
		}
		fmt.Println(u)
		return
	}

	log.Info().
		Str("from", opts.From).
		Str("to", opts.To).
		Int("zoom", cfg.Tiles.Zoom).
		Msg("Starting route map render")

	err = routeMap.RenderTo(ctx, req, fileAssembler{imagePath: opts.Output, geojsonPath: opts.GeoJSON})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render route map")
	}

	log.Info().Msg("Route map finished successfully")
}
