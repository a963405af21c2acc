package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/histogram"
	"github.com/ivlev/imgforensics/internal/report"
)

// Config is the analysis configuration. Cancellation is carried by the
// context passed to the engine, not by the config.
type Config struct {
	BlockSize          int                    `yaml:"block_size"`
	BinCount           int                    `yaml:"bin_count"`
	NeighborhoodRadius int                    `yaml:"neighborhood_radius"`
	Threshold          report.ThresholdPolicy `yaml:"threshold"`
	// Workers bounds the per-block goroutines; 0 picks the CPU count.
	Workers int `yaml:"workers"`
}

func Default() Config {
	return Config{
		BlockSize:          8,
		BinCount:           256,
		NeighborhoodRadius: 1,
		Threshold:          report.MeanPlusKThreshold(2.0),
	}
}

func (c Config) Validate() error {
	if c.BlockSize < 1 {
		return faults.InvalidConfig("block size must be >= 1, got %d", c.BlockSize)
	}
	if err := histogram.ValidateBins(c.BinCount); err != nil {
		return err
	}
	if c.NeighborhoodRadius < 0 {
		return faults.InvalidConfig("neighborhood radius must be >= 0, got %d", c.NeighborhoodRadius)
	}
	if c.Workers < 0 {
		return faults.InvalidConfig("workers must be >= 0, got %d", c.Workers)
	}
	return c.Threshold.Validate()
}

// Load reads a YAML config file. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
