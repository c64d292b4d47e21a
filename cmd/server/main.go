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

	"github.com/woozymasta/servicefinder/internal/catalog"
	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/locate"
	"github.com/woozymasta/servicefinder/internal/logger"
	"github.com/woozymasta/servicefinder/internal/processor"
	"github.com/woozymasta/servicefinder/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"      env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Snapshot   string `short:"s" long:"snapshot"    env:"SNAPSHOT_FILE"  description:"Serve a single snapshot file instead of the configured sources"`
	Addr       string `short:"a" long:"addr"        env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"        env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	NoGeocoder bool   `short:"G" long:"no-geocoder" env:"NO_GEOCODER"    description:"Disable the near query parameter"`
}

func main() {
	// .env is optional
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

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	var services []catalog.Service
	if opts.Snapshot != "" {
		services, err = processor.LoadSnapshotCatalog(opts.Snapshot)
	} else {
		services, err = processor.LoadCatalog(cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load service catalog")
	}

	var geocoder server.Geocoder
	if !opts.NoGeocoder {
		geocoder = locate.NewNominatim(&http.Client{Timeout: cfg.Locator.Timeout}, cfg.Locator)
	}

	srvCtx := server.NewServerContext(cfg, services, geocoder)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", listenAddr).
			Int("services", len(services)).
			Msg("Web server started")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
