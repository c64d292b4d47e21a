package main

import (
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/logger"
	"github.com/woozymasta/servicefinder/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Limit      []string      `short:"l" long:"limit"   env:"LIMIT_NAMES"  description:"Limit processing to specific source names"`
	Timeout    time.Duration `short:"t" long:"timeout" env:"HTTP_TIMEOUT" description:"Download timeout per source" default:"60s"`
	Force      bool          `short:"f" long:"force"   description:"Force overwrite of existing snapshots"`
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

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
		},
		Timeout: opts.Timeout,
	}

	sources := selectSources(cfg.Sources, opts.Limit)

	log.Info().
		Int("sources_total", len(cfg.Sources)).
		Int("sources_queued", len(sources)).
		Str("data_dir", cfg.DataDir).
		Bool("force", opts.Force).
		Msg("Starting loader")

	failed := 0
	for _, src := range sources {
		if err := processor.ProcessSource(client, cfg, src, opts.Force); err != nil {
			log.Error().Err(err).Str("source", src.Name).Msg("Failed to process source")
			failed++
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}

	log.Info().Msg("Loader finished successfully")
}

// selectSources filters sources by name, keeping the --limit order.
func selectSources(all []config.Source, limit []string) []config.Source {
	if len(limit) == 0 {
		return all
	}

	available := make(map[string]config.Source, len(all))
	for _, s := range all {
		available[s.Name] = s
	}

	seen := make(map[string]bool)
	selected := make([]config.Source, 0, len(limit))

	for _, name := range limit {
		if seen[name] {
			continue
		}
		seen[name] = true

		if s, ok := available[name]; ok {
			selected = append(selected, s)
		} else {
			log.Error().
				Str("name", name).
				Msg("Source specified in --limit not found in configuration")
		}
	}

	return selected
}
