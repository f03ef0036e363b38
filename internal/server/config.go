// Package server implements the HTTP interface of StradaDB.
//
// This file defines the Go structs that correspond to the YAML server
// configuration: where the preprocessed dataset files live, whether to map
// a shared snapshot instead of loading into process memory, and the listen
// address. These structs allow for type-safe parsing of the config file.
package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/stradadb/internal/facade"
)

// Config is the top-level structure of the server configuration file.
type Config struct {
	// HTTPAddr is the listen address, e.g. ":5000".
	HTTPAddr string        `yaml:"http_addr"`
	Dataset  DatasetConfig `yaml:"dataset"`
}

// DatasetConfig names the preprocessed network files. With UseSharedMemory
// only Snapshot is read; otherwise Nodes and Edges are required and
// Timestamp is optional.
type DatasetConfig struct {
	Nodes           string `yaml:"nodes"`
	Edges           string `yaml:"edges"`
	Timestamp       string `yaml:"timestamp"`
	Snapshot        string `yaml:"snapshot"`
	UseSharedMemory bool   `yaml:"use_shared_memory"`
}

// Paths flattens the dataset file names into the role map the engine takes.
func (d DatasetConfig) Paths() map[string]string {
	return map[string]string{
		facade.PathNodes:     d.Nodes,
		facade.PathEdges:     d.Edges,
		facade.PathTimestamp: d.Timestamp,
		facade.PathSnapshot:  d.Snapshot,
	}
}

// LoadConfig parses the YAML configuration at path and applies defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":5000"
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Dataset.UseSharedMemory {
		if c.Dataset.Snapshot == "" {
			return fmt.Errorf("use_shared_memory requires dataset.snapshot")
		}
		return nil
	}
	if c.Dataset.Nodes == "" || c.Dataset.Edges == "" {
		return fmt.Errorf("dataset.nodes and dataset.edges are required")
	}
	return nil
}
