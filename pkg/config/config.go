// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/telekom/tracelens/pkg/telemetry"
)

const (
	// DefaultMinTraceroutes is the default number of valid traceroutes a key needs to become a candidate.
	DefaultMinTraceroutes = 24
	// DefaultBinSize is the default bin size in seconds.
	DefaultBinSize = 300
	// DefaultWorkers is the default number of result files classified concurrently.
	DefaultWorkers = 4
)

type Config struct {
	// Filter is the configuration of the monitored region
	Filter FilterConfig `yaml:"filter" mapstructure:"filter"`
	// Candidates is the configuration of the candidate aggregation
	Candidates CandidatesConfig `yaml:"candidates" mapstructure:"candidates"`
	// Binning is the configuration of the bin stage
	Binning BinningConfig `yaml:"binning" mapstructure:"binning"`
	// Output is the configuration of the stage outputs
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	// Telemetry is the configuration for the telemetry
	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// FilterConfig describes the monitored region
type FilterConfig struct {
	// Spec is a prefix, an AS number or the path to a file listing both
	Spec string `yaml:"spec" mapstructure:"spec"`
	// ASMapping is the path to an AS-to-prefix mapping in ipasn format.
	// It is required if Spec contains AS numbers.
	ASMapping string `yaml:"asMapping" mapstructure:"asMapping"`
}

// CandidatesConfig is the configuration of the candidate aggregation
type CandidatesConfig struct {
	MinTraceroutes int `yaml:"minTraceroutes" mapstructure:"minTraceroutes"`
}

// BinningConfig is the configuration of the bin stage
type BinningConfig struct {
	// BinSize is the size of a bin in seconds
	BinSize int64 `yaml:"binSize" mapstructure:"binSize"`
	Workers int   `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig is the configuration of the stage outputs
type OutputConfig struct {
	// Force overwrites existing outputs
	Force bool `yaml:"force" mapstructure:"force"`
	// Report is the path the run report is written to. Nothing is written if empty.
	Report string `yaml:"report" mapstructure:"report"`
}

// Default returns the configuration with all defaults applied
func Default() Config {
	return Config{
		Candidates: CandidatesConfig{MinTraceroutes: DefaultMinTraceroutes},
		Binning:    BinningConfig{BinSize: DefaultBinSize, Workers: DefaultWorkers},
	}
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasASMapping returns true if an AS-to-prefix mapping is configured
func (c *Config) HasASMapping() bool {
	return c.Filter.ASMapping != ""
}
