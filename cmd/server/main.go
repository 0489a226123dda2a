package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/tourmap/internal/config"
	"github.com/woozymasta/tourmap/internal/logger"
	"github.com/woozymasta/tourmap/internal/processor"
	"github.com/woozymasta/tourmap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr        string `short:"a" long:"addr"        env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port        int    `short:"p" long:"port"        env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	APIKey      string `short:"k" long:"api-key"     env:"ORS_API_KEY"    description:"Directions provider API key (overrides config)"`
	Zoom        int    `short:"z" long:"zoom"        env:"MAP_ZOOM"       description:"Tile zoom level (overrides config)"`
	Concurrency int    `long:"tile-concurrency"      env:"TILE_CONCURRENCY" description:"Parallel tile downloads (overrides config)"`
}

func main() {
	// optional .env next to the binary; real environment wins
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
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
	if cfg.Directions.APIKey == "" {
		log.Warn().Msg("No directions API key configured, provider requests will likely be rejected")
	}

	client := processor.NewHTTPClient(cfg.Timeout, cfg.Tiles.Concurrency)
	routeMap, err := processor.FromConfig(client, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build route map pipeline")
	}

	srvCtx, err := server.NewServerContext(cfg, routeMap)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           server.RequestLogger(srvCtx.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
		// a render may wait on every provider call in turn
		WriteTimeout: cfg.RenderBudget() + 10*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Int("zoom", cfg.Tiles.Zoom).
		Str("profile", cfg.Directions.Profile).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
