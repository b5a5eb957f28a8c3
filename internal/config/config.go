package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cristianadrielbraun/sigbake/internal/compositor"
	"github.com/cristianadrielbraun/sigbake/internal/imageio"
	"github.com/cristianadrielbraun/sigbake/internal/signature"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Composite compositor.Spec    `yaml:"composite"`
	Colors    ColorsConfig       `yaml:"colors"`
	Palette   []signature.Swatch `yaml:"palette"`
	Limits    LimitsConfig       `yaml:"limits"`
	Rendering RenderingConfig    `yaml:"rendering"`
	Session   SessionConfig      `yaml:"session"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ColorsConfig struct {
	Background   string `yaml:"background"`
	GapFill      string `yaml:"gap_fill"`
	DefaultBrand string `yaml:"default_brand"`
}

type LimitsConfig struct {
	MaxUploadBytes   int64 `yaml:"max_upload_bytes"`
	MaxSurfacePixels int   `yaml:"max_surface_pixels"`
	// MaxSourcePixels rejects uploads by their declared dimensions before decoding.
	MaxSourcePixels int `yaml:"max_source_pixels"`
	// WarnDataURIBytes is the advisory size above which users are told that
	// mail clients may truncate the signature.
	WarnDataURIBytes int `yaml:"warn_data_uri_bytes"`
}

type RenderingConfig struct {
	// Disabled forces the pass-through mode used when no raster backend exists.
	Disabled bool `yaml:"disabled"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8080"},
		Composite: compositor.DefaultSpec(),
		Colors: ColorsConfig{
			Background:   "#FAFAFA",
			GapFill:      "#EEEEEE",
			DefaultBrand: signature.DefaultBrandColor,
		},
		Palette: signature.DefaultPalette(),
		Limits: LimitsConfig{
			MaxUploadBytes:   20 << 20,
			MaxSurfacePixels: compositor.DefaultMaxSurfacePixels,
			MaxSourcePixels:  imageio.DefaultMaxPixels,
			WarnDataURIBytes: 100 << 10,
		},
		Session: SessionConfig{CookieName: "sigbake_session", TTL: 2 * time.Hour},
	}
}

// Load reads the configuration file over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// FromEnv loads .env if present, then the file named by SIGBAKE_CONFIG (or
// config.yaml when it exists). PORT overrides the listen address.
func FromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	path := os.Getenv("SIGBAKE_CONFIG")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	return cfg, nil
}

// Validate checks that every field can be used as-is
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := c.Composite.Validate(); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	for name, v := range map[string]string{
		"colors.background":    c.Colors.Background,
		"colors.gap_fill":      c.Colors.GapFill,
		"colors.default_brand": c.Colors.DefaultBrand,
	} {
		if _, err := signature.ParseHex(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette must list at least one colour")
	}
	for i, s := range c.Palette {
		if _, err := signature.ParseHex(s.Code); err != nil {
			return fmt.Errorf("palette[%d]: %w", i, err)
		}
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("limits.max_upload_bytes must be positive")
	}
	if c.Limits.MaxSurfacePixels <= 0 {
		return fmt.Errorf("limits.max_surface_pixels must be positive")
	}
	if c.Limits.MaxSourcePixels <= 0 {
		return fmt.Errorf("limits.max_source_pixels must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}

// CompositeColors returns the neutral fills for the compositor.
func (c *Config) CompositeColors() (compositor.Colors, error) {
	bg, err := signature.ParseHex(c.Colors.Background)
	if err != nil {
		return compositor.Colors{}, err
	}
	gap, err := signature.ParseHex(c.Colors.GapFill)
	if err != nil {
		return compositor.Colors{}, err
	}
	return compositor.Colors{Background: bg, GapFill: gap}, nil
}

// NewCompositor builds the compositor described by the config.
func (c *Config) NewCompositor() (*compositor.Compositor, error) {
	colors, err := c.CompositeColors()
	if err != nil {
		return nil, err
	}
	surface := compositor.RGBASurface(c.Limits.MaxSurfacePixels)
	if c.Rendering.Disabled {
		surface = compositor.Unavailable
	}
	return compositor.New(c.Composite, compositor.WithColors(colors), compositor.WithSurface(surface))
}
