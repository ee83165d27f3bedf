package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"osmblocks/internal/geom"
	"osmblocks/internal/overpass"
)

// Config holds all application configuration.
type Config struct {
	Overpass OverpassConfig   `mapstructure:"overpass"`
	BBox     geom.BoundingBox `mapstructure:"bbox"`
	Scale    geom.Scale       `mapstructure:"scale"`
	Log      LogConfig        `mapstructure:"log"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
}

type OverpassConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
	QueryTimeout int           `mapstructure:"query_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// Options maps the section onto client options.
func (o OverpassConfig) Options() overpass.Options {
	return overpass.Options{
		Endpoint:     o.Endpoint,
		Timeout:      o.Timeout,
		QueryTimeout: o.QueryTimeout,
		UserAgent:    o.UserAgent,
	}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default area: lower Manhattan.
var DefaultBBox = geom.BoundingBox{MinLat: 40.7128, MinLon: -74.0060, MaxLat: 40.7138, MaxLon: -74.0050}

// New returns a viper instance with defaults, the optional config file and
// the environment layered in. path overrides the config file search.
func New(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("overpass.endpoint", overpass.DefaultEndpoint)
	v.SetDefault("overpass.timeout", overpass.DefaultTimeout)
	v.SetDefault("overpass.query_timeout", overpass.DefaultQueryTimeout)
	v.SetDefault("overpass.user_agent", overpass.DefaultUserAgent)
	v.SetDefault("bbox.min_lat", DefaultBBox.MinLat)
	v.SetDefault("bbox.min_lon", DefaultBBox.MinLon)
	v.SetDefault("bbox.max_lat", DefaultBBox.MaxLat)
	v.SetDefault("bbox.max_lon", DefaultBBox.MaxLon)
	v.SetDefault("scale.horizontal", geom.DefaultHorizontalScale)
	v.SetDefault("scale.vertical", geom.DefaultVerticalScale)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("metrics.addr", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("osmblocks")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/osmblocks")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// OSMBLOCKS_OVERPASS_ENDPOINT -> overpass.endpoint
	v.SetEnvPrefix("OSMBLOCKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load unmarshals and validates v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Overpass.Endpoint == "" {
		errs = append(errs, errors.New("overpass.endpoint is required"))
	}
	if c.Overpass.Timeout <= 0 {
		errs = append(errs, errors.New("overpass.timeout must be positive"))
	}
	if c.Overpass.QueryTimeout <= 0 {
		errs = append(errs, errors.New("overpass.query_timeout must be positive"))
	}
	if err := c.BBox.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bbox: %w", err))
	}
	if c.Scale.Horizontal <= 0 {
		errs = append(errs, fmt.Errorf("scale.horizontal must be positive, got %g", c.Scale.Horizontal))
	}
	if c.Scale.Vertical <= 0 {
		errs = append(errs, fmt.Errorf("scale.vertical must be positive, got %g", c.Scale.Vertical))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n%w", errors.Join(errs...))
	}
	return nil
}
