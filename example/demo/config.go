package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/entityevent/hydrate-go/hydrate"
)

// Config is the demo's yaml configuration: where the database lives, where
// the hint declarations are, and which record types map to which tables.
type Config struct {
	Database string                            `yaml:"database"`
	HintsDir string                            `yaml:"hints_dir"`
	Tables   map[hydrate.TypeNameString]string `yaml:"tables"`
	Seed     []SeedRecordConfig                `yaml:"seed"`
}

// SeedRecordConfig is one record row to insert during seeding.
type SeedRecordConfig struct {
	Type      hydrate.TypeNameString `yaml:"type"`
	ID        int64                  `yaml:"id"`
	Payload   map[string]any         `yaml:"payload"`
	Relations map[string]any         `yaml:"relations"`
}

// loadConfig reads and parses the yaml config file, applying defaults.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if config.Database == "" {
		config.Database = "./hydrate.db"
	}

	if config.HintsDir == "" {
		config.HintsDir = "./hints"
	}

	return &config, nil
}
