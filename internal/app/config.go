package app

import (
	"errors"
	"fmt"

	"github.com/vk/nodesync/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocumentPaths []string // hcl files or directories
	Settings      *config.Config
}

// NewConfig validates cfg and fills in default settings when none are given.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.DocumentPaths) == 0 {
		return nil, errors.New("at least one document path is required")
	}
	if cfg.Settings == nil {
		cfg.Settings = config.DefaultConfig()
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &cfg, nil
}
