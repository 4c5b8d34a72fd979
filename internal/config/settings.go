package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is a singleton validator instance
var validate = validator.New()

// Config holds the application settings loaded from a YAML file.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	View     ViewConfig     `yaml:"view"`
	Resolver ResolverConfig `yaml:"resolver"`
	Server   ServerConfig   `yaml:"server"`
	Remote   RemoteConfig   `yaml:"remote"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// ViewConfig tunes the view synchronizer.
type ViewConfig struct {
	// Budget is the time slice one cooperative step may use.
	Budget   Duration `yaml:"budget" validate:"gt=0"`
	Progress bool     `yaml:"progress"`
}

type ResolverConfig struct {
	CacheSize   int    `yaml:"cache_size" validate:"gte=0"`
	AutoConvert *bool  `yaml:"auto_convert"`
	Ambiguity   string `yaml:"ambiguity" validate:"oneof=reject first"`
}

// ServerConfig controls the health and metrics endpoint. Port 0 disables it.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

type RemoteConfig struct {
	URL       string `yaml:"url" validate:"omitempty,url"`
	Namespace string `yaml:"namespace" validate:"startswith=/"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	autoConvert := true
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		View:     ViewConfig{Budget: Duration(4 * time.Millisecond)},
		Resolver: ResolverConfig{CacheSize: 512, AutoConvert: &autoConvert, Ambiguity: "reject"},
		Remote:   RemoteConfig{Namespace: "/"},
	}
}

// LoadFromPath loads settings from a specific path. An empty path yields the
// defaults.
func LoadFromPath(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.View.Budget == 0 {
		c.View.Budget = def.View.Budget
	}
	if c.Resolver.CacheSize == 0 {
		c.Resolver.CacheSize = def.Resolver.CacheSize
	}
	if c.Resolver.AutoConvert == nil {
		c.Resolver.AutoConvert = def.Resolver.AutoConvert
	}
	if c.Resolver.Ambiguity == "" {
		c.Resolver.Ambiguity = def.Resolver.Ambiguity
	}
	if c.Remote.Namespace == "" {
		c.Remote.Namespace = def.Remote.Namespace
	}
}

// AutoConvert reports whether converters are inserted without asking.
func (c *Config) AutoConvert() bool {
	return c.Resolver.AutoConvert == nil || *c.Resolver.AutoConvert
}

// Validate checks the settings against their constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %q", field, e.Param(), e.Value())
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, e.Param())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "lte":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
