package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"osmblocks/internal/config"
	"osmblocks/internal/extrude"
	"osmblocks/internal/logging"
	"osmblocks/internal/metrics"
	"osmblocks/internal/overpass"
	"osmblocks/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "osmblocks",
	Short: "Extrude OpenStreetMap building footprints into 3D blocks",
	Long: `osmblocks queries the Overpass API for the building ways inside a
bounding box, extrudes each footprint to its tagged height and either shows
the result in an interactive terminal viewer or writes it out.`,
	SilenceUsage: true,
}

// flag name -> config key
var flagKeys = map[string]string{
	"min-lat":          "bbox.min_lat",
	"min-lon":          "bbox.min_lon",
	"max-lat":          "bbox.max_lat",
	"max-lon":          "bbox.max_lon",
	"scale-horizontal": "scale.horizontal",
	"scale-vertical":   "scale.vertical",
	"endpoint":         "overpass.endpoint",
	"timeout":          "overpass.timeout",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"log-file":         "log.file",
	"metrics-addr":     "metrics.addr",
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "config file (default ./osmblocks.yaml or ~/.config/osmblocks/osmblocks.yaml)")
	f.String("input", "", "read footprints from a file instead of Overpass: .csv (WKT column), .wkt (one shape per line) or GeoJSON")

	f.Float64("min-lat", config.DefaultBBox.MinLat, "south edge of the bounding box")
	f.Float64("min-lon", config.DefaultBBox.MinLon, "west edge of the bounding box")
	f.Float64("max-lat", config.DefaultBBox.MaxLat, "north edge of the bounding box")
	f.Float64("max-lon", config.DefaultBBox.MaxLon, "east edge of the bounding box")
	f.Float64("scale-horizontal", 0, "scene units per degree (default 1e-5)")
	f.Float64("scale-vertical", 0, "scene units per metre of height (default 1e-5)")
	f.String("endpoint", "", "Overpass interpreter URL")
	f.Duration("timeout", 0, "HTTP timeout for the Overpass request")
	f.String("log-level", "info", "debug, info, warn or error")
	f.String("log-format", "text", "text or json")
	f.String("log-file", "", "append logs to this file")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	v, err := config.New(path)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	return config.Load(v)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		fl := fs.Lookup(name)
		if fl == nil || !fl.Changed {
			continue
		}
		if err := v.BindPFlag(key, fl); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// app is what every subcommand runs against.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	closer   io.Closer
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
	source   string
}

// newApp loads configuration, sets up logging and wires the pipeline.
// logFile replaces an empty log.file, so the viewer never writes to the
// terminal it draws on.
func newApp(ctx context.Context, cmd *cobra.Command, logFile string) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return nil, err
	}
	path := cfg.Log.File
	if path == "" {
		path = logFile
	}
	logger, closer, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, closer: closer, metrics: metrics.New()}
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	var fetcher pipeline.Fetcher
	if input != "" {
		fetcher = &pipeline.FileSource{Path: input}
		a.source = input
	} else {
		opts := cfg.Overpass.Options()
		opts.Logger = logger.With("component", "overpass")
		client := overpass.NewClient(opts)
		fetcher = client
		a.source = client.Endpoint()
	}
	ex := extrude.New(cfg.Scale, logger.With("component", "extrude"))
	a.pipeline = pipeline.New(fetcher, ex, a.metrics, logger)

	logger.Info("starting",
		"command", cmd.Name(),
		"source", a.source,
		"bbox", cfg.BBox,
		"scale_h", cfg.Scale.Horizontal,
		"scale_v", cfg.Scale.Vertical,
	)
	return a, nil
}

func (a *app) Close() error { return a.closer.Close() }
