package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all shell service configuration.
type Config struct {
	Server    ServerConfig
	Shell     ShellConfig
	Catalog   CatalogConfig
	Probe     ProbeConfig
	Layout    LayoutConfig
	Storage   StorageConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// ShellConfig describes the document hosting the shell.
type ShellConfig struct {
	// Origin of the shell document, e.g. https://os.example.com
	Origin string `envconfig:"SHELL_ORIGIN" default:"http://localhost:8000"`
	// Label inserted before the host to form the trusted sibling origin.
	TrustedLabel string `envconfig:"SHELL_TRUSTED_LABEL" default:"apps"`
	// Catalog id suffix of the app store app that handles link clicks.
	StoreAppID string `envconfig:"SHELL_STORE_APP" default:"store"`
	// Hostnames treated as local development hosts.
	LocalHosts  []string `envconfig:"SHELL_LOCAL_HOSTS" default:"localhost,127.0.0.1"`
	DrawerKey   string   `envconfig:"SHELL_KEY_DRAWER" default:"a"`
	SwitcherKey string   `envconfig:"SHELL_KEY_SWITCHER" default:"s"`
	HomeKey     string   `envconfig:"SHELL_KEY_HOME" default:"h"`
}

// CatalogConfig holds catalog source configuration.
type CatalogConfig struct {
	URL     string `envconfig:"CATALOG_URL" default:""`
	PushURL string `envconfig:"CATALOG_PUSH_URL" default:""`
	SeedDir string `envconfig:"CATALOG_SEED_DIR" default:"./apps"`
}

// ProbeConfig holds escape-hatch probe configuration.
type ProbeConfig struct {
	Timeout time.Duration `envconfig:"PROBE_TIMEOUT" default:"100ms"`
	Enabled bool          `envconfig:"PROBE_ENABLED" default:"true"`
}

// LayoutConfig holds the fixed dimensions of the home surface in CSS pixels.
type LayoutConfig struct {
	DockHeight       float64 `envconfig:"LAYOUT_DOCK_HEIGHT" default:"100"`
	SearchHeight     float64 `envconfig:"LAYOUT_SEARCH_HEIGHT" default:"60"`
	Spacing          float64 `envconfig:"LAYOUT_SPACING" default:"16"`
	IconSize         float64 `envconfig:"LAYOUT_ICON_SIZE" default:"72"`
	NarrowBreakpoint float64 `envconfig:"LAYOUT_NARROW_BREAKPOINT" default:"768"`
	MaxWidgetWidth   float64 `envconfig:"LAYOUT_MAX_WIDGET_WIDTH" default:"400"`
	MaxWidgetHeight  float64 `envconfig:"LAYOUT_MAX_WIDGET_HEIGHT" default:"300"`
	GestureZone      float64 `envconfig:"LAYOUT_GESTURE_ZONE" default:"40"`
}

// StorageConfig holds layout persistence configuration.
type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `envconfig:"STORAGE_DRIVER" default:"sqlite"`
	Path   string `envconfig:"STORAGE_PATH" default:"/tmp/shell-storage/layout.db"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Shell: ShellConfig{
			Origin:       "http://localhost:8000",
			TrustedLabel: "apps",
			StoreAppID:   "store",
			LocalHosts:   []string{"localhost", "127.0.0.1"},
			DrawerKey:    "a",
			SwitcherKey:  "s",
			HomeKey:      "h",
		},
		Catalog: CatalogConfig{
			SeedDir: "./apps",
		},
		Probe: ProbeConfig{
			Timeout: 100 * time.Millisecond,
			Enabled: true,
		},
		Layout: LayoutConfig{
			DockHeight:       100,
			SearchHeight:     60,
			Spacing:          16,
			IconSize:         72,
			NarrowBreakpoint: 768,
			MaxWidgetWidth:   400,
			MaxWidgetHeight:  300,
			GestureZone:      40,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "/tmp/shell-storage/layout.db",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
