package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/aerosurf/internal/config"
	"github.com/woozymasta/aerosurf/internal/logger"
	"github.com/woozymasta/aerosurf/internal/runway"
	"github.com/woozymasta/aerosurf/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"       env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Runways    string `short:"r" long:"runways"    env:"RUNWAYS_FILE"   description:"Runways CSV, overrides the configuration"`
	Port       int    `short:"p" long:"port"       env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	Workers    int    `short:"w" long:"workers"    env:"WORKERS"        description:"Evaluation workers per request"`
	NoMetrics  bool   `long:"no-metrics"           env:"NO_METRICS"     description:"Disable the /metrics endpoint"`
}

func main() {
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
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Runways != "" {
		cfg.Runways = opts.Runways
	}

	proj, err := cfg.Projector()
	if err != nil {
		log.Fatal().Err(err).Str("projection", cfg.Projection).Msg("Failed to build projection")
	}

	var dir *runway.Directory
	if cfg.Runways != "" {
		if dir, err = runway.Open(cfg.Runways); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Runways).Msg("Failed to load runways")
		}
	}

	var metrics *server.Metrics
	if !opts.NoMetrics {
		if metrics, err = server.NewMetrics(nil); err != nil {
			log.Fatal().Err(err).Msg("Failed to register metrics")
		}
	}

	srvCtx := server.NewServerContext(cfg, proj, dir, metrics)
	handler := server.RequestLogger(srvCtx.Routes())

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("surfaces_loaded", len(srvCtx.Names)).
		Int("workers", srvCtx.Workers).
		Bool("metrics", metrics != nil).
		Msg("Web server started")

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
