// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Viewport() ViewportConfig
	Network() NetworkConfig
	Render() RenderConfig
	Session() SessionConfig
	SetSessionConfig(sc SessionConfig)

	// Viewport Setters
	SetViewportSize(width, height float64)
	SetViewportScale(scale float64)

	// Network Setters
	SetNetworkTimeout(d time.Duration)
	SetNetworkIgnoreTLSErrors(bool)
}

// Config holds the entire application configuration. It uses private fields
// to enforce access through the Interface's getter methods.
type Config struct {
	logger   LoggerConfig
	viewport ViewportConfig
	network  NetworkConfig
	render   RenderConfig
	// session gets its marching orders from CLI flags, not the config file.
	session SessionConfig
}

// fileConfig mirrors Config with exported fields so viper can unmarshal it.
type fileConfig struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Render   RenderConfig   `mapstructure:"render" yaml:"render"`
}

func (fc fileConfig) toConfig() *Config {
	return &Config{
		logger:   fc.Logger,
		viewport: fc.Viewport,
		network:  fc.Network,
		render:   fc.Render,
	}
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.logger }
func (c *Config) Viewport() ViewportConfig { return c.viewport }
func (c *Config) Network() NetworkConfig   { return c.network }
func (c *Config) Render() RenderConfig     { return c.render }
func (c *Config) Session() SessionConfig   { return c.session }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetSessionConfig(sc SessionConfig) { c.session = sc }

// Viewport Setters
func (c *Config) SetViewportSize(width, height float64) {
	c.viewport.Width = width
	c.viewport.Height = height
}
func (c *Config) SetViewportScale(scale float64) { c.viewport.Scale = scale }

// Network Setters
func (c *Config) SetNetworkTimeout(d time.Duration)  { c.network.Timeout = d }
func (c *Config) SetNetworkIgnoreTLSErrors(b bool)   { c.network.IgnoreTLSErrors = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ViewportConfig sets the initial size and scale of the content area in
// device-independent pixels.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
	Scale  float64 `mapstructure:"scale" yaml:"scale"`
}

// NetworkConfig tunes the page fetcher.
type NetworkConfig struct {
	Timeout         time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	UserAgent       string            `mapstructure:"user_agent" yaml:"user_agent"`
	RateLimit       float64           `mapstructure:"rate_limit" yaml:"rate_limit"`
	Headers         map[string]string `mapstructure:"headers" yaml:"headers"`
	IgnoreTLSErrors bool              `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// RenderConfig selects font files and raster output settings.
type RenderConfig struct {
	FontRegular    string  `mapstructure:"font_regular" yaml:"font_regular"`
	FontBold       string  `mapstructure:"font_bold" yaml:"font_bold"`
	FontItalic     string  `mapstructure:"font_italic" yaml:"font_italic"`
	FontBoldItalic string  `mapstructure:"font_bold_italic" yaml:"font_bold_italic"`
	DPI            float64 `mapstructure:"dpi" yaml:"dpi"`
	SnapshotDir    string  `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
}

// SessionConfig holds settings populated from CLI flags for one run.
type SessionConfig struct {
	URL      string
	Timing   bool
	Snapshot string
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return fc.toConfig()
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "lantern")
	v.SetDefault("logger.log_file", "lantern.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Viewport --
	v.SetDefault("viewport.width", 1024.0)
	v.SetDefault("viewport.height", 768.0)
	v.SetDefault("viewport.scale", 1.0)

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.user_agent", "lantern/0.1")
	v.SetDefault("network.rate_limit", 8.0)
	v.SetDefault("network.ignore_tls_errors", false)

	// -- Render --
	v.SetDefault("render.dpi", 96.0)
	v.SetDefault("render.snapshot_dir", ".")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg := fc.toConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.viewport.Width <= 0 || c.viewport.Height <= 0 {
		return fmt.Errorf("viewport.width and viewport.height must be positive")
	}
	if c.viewport.Scale <= 0 {
		return fmt.Errorf("viewport.scale must be positive")
	}
	if c.network.Timeout <= 0 {
		return fmt.Errorf("network.timeout must be a positive duration")
	}
	if c.network.RateLimit < 0 {
		return fmt.Errorf("network.rate_limit must not be negative")
	}
	return nil
}
