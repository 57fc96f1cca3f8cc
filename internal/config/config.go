// Package config handles configuration loading for cohesort.
package config

import "gopkg.in/yaml.v3"

// Config is cohesort's top-level configuration, loadable from a YAML
// file via Load or used as-is via Default.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Output OutputConfig `yaml:"output"`
}

// EngineConfig controls the ordering engine itself.
type EngineConfig struct {
	Algorithm         string `yaml:"algorithm"` // tsp, only-extensions, byte-distributions, binsort-original
	Workers           int    `yaml:"workers"`
	MemoryBudget      int64  `yaml:"memory_budget_bytes"`
	Seed              int64  `yaml:"seed"`
	MaxReadsPerSecond int    `yaml:"max_reads_per_second"` // 0 = unlimited
	ReadBufSize       int    `yaml:"read_buffer_bytes"`
}

// OutputConfig controls how results are surfaced.
type OutputConfig struct {
	ReportFormat string `yaml:"report_format"` // json, html, markdown
	ReportFile   string `yaml:"report_file"`
	Diagnose     bool   `yaml:"diagnose"` // attach the adjacency cross-check to the report
	Verbose      bool   `yaml:"verbose"`
	EnableTUI    bool   `yaml:"enable_tui"`
	QuietMode    bool   `yaml:"quiet_mode"`
}

// Default returns cohesort's default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Algorithm: "tsp",
			Workers:   0, // 0 means "size to NumCPU"
		},
		Output: OutputConfig{
			ReportFormat: "json",
		},
	}
}

// Load reads and parses a YAML configuration file, filling in defaults
// for anything left unset.
func Load(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
