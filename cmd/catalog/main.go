package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/servicefinder/internal/catalog"
	"github.com/woozymasta/servicefinder/internal/config"
	"github.com/woozymasta/servicefinder/internal/geo"
	"github.com/woozymasta/servicefinder/internal/locate"
	"github.com/woozymasta/servicefinder/internal/logger"
	"github.com/woozymasta/servicefinder/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config"   env:"CONFIG_FILE"   description:"Path to configuration file" default:"config.yaml"`
	Snapshot   string   `short:"s" long:"snapshot" env:"SNAPSHOT_FILE" description:"Read a single snapshot file instead of the configured sources"`
	Mode       string   `short:"m" long:"mode"     description:"What to print" choice:"list" choice:"categories" choice:"markers" choice:"view" default:"list"`
	Search     string   `short:"q" long:"search"   description:"Search term"`
	Category   string   `short:"k" long:"category" description:"Category filter"`
	By         string   `short:"b" long:"by"       description:"Field to search (name, postcode, address, category, phone, website, id)"`
	Lat        *float64 `long:"lat"                description:"User latitude"`
	Lng        *float64 `long:"lng"                description:"User longitude"`
	Near       string   `short:"n" long:"near"     description:"Geocode this text (e.g. a postcode) as the user location"`
	Selected   string   `short:"S" long:"selected" description:"ID of the selected service"`
	Radius     float64  `short:"r" long:"radius"   description:"Nearby radius in meters (config value if unset)"`
	Format     string   `short:"f" long:"format"   description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Output     string   `short:"o" long:"out"      description:"Output file path. Writes to stdout if empty"`
}

// marker is the minimal data a map pin needs.
type marker struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Category string     `json:"category" yaml:"category"`
	Address  string     `json:"address" yaml:"address"`
	Website  string     `json:"website,omitempty" yaml:"website,omitempty"`
	Coords   [2]float64 `json:"coords" yaml:"coords,flow"`
}

type categoryOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
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

	if err := run(opts, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Catalog query failed")
	}
}

func run(opts Options, stdout io.Writer) error {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if opts.Radius > 0 {
		cfg.Map.Proximity.RadiusMeters = opts.Radius
	}

	var services []catalog.Service
	if opts.Snapshot != "" {
		services, err = processor.LoadSnapshotCatalog(opts.Snapshot)
	} else {
		services, err = processor.LoadCatalog(cfg)
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	by := opts.By
	if by == "" {
		by = cfg.SearchField
	}
	field, err := catalog.ParseSearchField(by)
	if err != nil {
		return err
	}

	var selected *catalog.Service
	if opts.Selected != "" {
		if selected = catalog.Find(services, opts.Selected); selected == nil {
			return fmt.Errorf("unknown selected service %q", opts.Selected)
		}
	}

	user, err := userLocation(opts, cfg)
	if err != nil {
		return err
	}

	filtered := catalog.Filter(services, opts.Search, opts.Category, field)

	log.Debug().
		Str("mode", opts.Mode).
		Str("field", string(field)).
		Int("filtered", len(filtered)).
		Bool("located", user != nil).
		Msg("Pipeline evaluated")

	var out any
	switch opts.Mode {
	case "categories":
		categories := catalog.DistinctCategories(services)
		options := make([]categoryOption, 0, len(categories))
		for _, c := range categories {
			options = append(options, categoryOption{Value: c, Label: catalog.CategoryLabel(c)})
		}
		out = options

	case "markers":
		shown := catalog.Display(filtered, user, selected, cfg.Map.Proximity)
		markers := make([]marker, 0, len(shown))
		for _, s := range shown {
			markers = append(markers, marker{
				ID:       s.ID,
				Name:     s.Name,
				Category: s.Category,
				Address:  s.Address,
				Website:  s.WebsiteURL(),
				Coords:   s.Coords,
			})
		}
		out = markers

	case "view":
		out = catalog.NewView(filtered, user, selected, cfg.Map)

	default:
		out = filtered
	}

	return write(opts, stdout, out)
}

// userLocation resolves --lat/--lng or --near. A failed lookup is an unknown location.
func userLocation(opts Options, cfg *config.Config) (*geo.Point, error) {
	if (opts.Lat == nil) != (opts.Lng == nil) {
		return nil, errors.New("--lat and --lng must be given together")
	}

	if opts.Lat != nil {
		p := geo.Point{Lat: *opts.Lat, Lng: *opts.Lng}
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return nil, fmt.Errorf("coordinates out of range: %v, %v", p.Lat, p.Lng)
		}
		return &p, nil
	}

	if opts.Near == "" {
		return nil, nil
	}

	cache := locate.NewCache(cfg.Locator.Timeout, 0)
	geocoder := locate.NewNominatim(&http.Client{Timeout: 15 * time.Second}, cfg.Locator)

	return locate.Resolve(context.Background(), cache, opts.Near, geocoder.Query(opts.Near)), nil
}

func write(opts Options, stdout io.Writer, v any) error {
	var (
		data []byte
		err  error
	)

	if opts.Format == "yaml" {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	if opts.Output == "" {
		_, err = stdout.Write(data)
		return err
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return err
	}

	log.Info().
		Str("path", opts.Output).
		Str("format", opts.Format).
		Str("mode", opts.Mode).
		Msg("Output written")

	return nil
}
