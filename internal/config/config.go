// Package config manages application configuration.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/roboco-io/fcmetrics/internal/parser"
	"github.com/roboco-io/fcmetrics/internal/table"
)

// Config represents the application configuration.
type Config struct {
	Lanes            []int                  `yaml:"lanes" validate:"dive,min=1,max=8"`
	Files            FilesConfig            `yaml:"files"`
	DemultiplexStats DemultiplexStatsConfig `yaml:"demultiplex_stats"`
	Collect          CollectConfig          `yaml:"collect"`
	Output           OutputConfig           `yaml:"output"`
}

// FilesConfig names the run files relative to the run directory. Empty
// entries use the standard names.
type FilesConfig struct {
	RunInfo           string `yaml:"run_info,omitempty"`
	RunParameters     string `yaml:"run_parameters,omitempty"`
	SampleSheet       string `yaml:"sample_sheet,omitempty"`
	RunInfoYAML       string `yaml:"run_info_yaml,omitempty"`
	RunSummary        string `yaml:"run_summary,omitempty"`
	DemultiplexConfig string `yaml:"demultiplex_config,omitempty"`
	DemultiplexStats  string `yaml:"demultiplex_stats,omitempty"`
	Undemultiplexed   string `yaml:"undemultiplexed,omitempty"`
}

// DemultiplexStatsConfig controls HTML table extraction.
type DemultiplexStatsConfig struct {
	HeadingTag      string              `yaml:"heading_tag" validate:"omitempty,alphanum"`
	Deduplicate     bool                `yaml:"deduplicate"`
	StrictHeaders   bool                `yaml:"strict_headers"`
	SortFields      []string            `yaml:"sort_fields,omitempty"`
	Reverse         bool                `yaml:"reverse"`
	ExpectedHeaders map[string][]string `yaml:"expected_headers,omitempty"`
}

// CollectConfig controls attribute collection.
type CollectConfig struct {
	MissingValues []string `yaml:"missing_values"`
}

// OutputConfig contains output formatting options.
type OutputConfig struct {
	Format string `yaml:"format" validate:"omitempty,oneof=json text dump markdown"`
	Pretty bool   `yaml:"pretty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Lanes: append([]int(nil), parser.DefaultLanes...),
		DemultiplexStats: DemultiplexStatsConfig{
			HeadingTag:    "h2",
			Deduplicate:   true,
			StrictHeaders: true,
			SortFields:    append([]string(nil), parser.DefaultSortFields...),
		},
		Collect: CollectConfig{
			MissingValues: []string{"NaN"},
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ParserOptions converts the configuration into run parsing options.
func (c *Config) ParserOptions() parser.Options {
	opts := parser.DefaultOptions()
	if len(c.Lanes) > 0 {
		opts.Lanes = append([]int(nil), c.Lanes...)
	}
	opts.Files = parser.FileNames{
		RunInfo:           c.Files.RunInfo,
		RunParameters:     c.Files.RunParameters,
		SampleSheet:       c.Files.SampleSheet,
		RunInfoYAML:       c.Files.RunInfoYAML,
		RunSummary:        c.Files.RunSummary,
		DemultiplexConfig: c.Files.DemultiplexConfig,
		DemultiplexStats:  c.Files.DemultiplexStats,
		Undemultiplexed:   c.Files.Undemultiplexed,
	}.WithDefaults()
	opts.MissingValues = append([]string(nil), c.Collect.MissingValues...)
	opts.Deduplicate = c.DemultiplexStats.Deduplicate
	opts.StrictHeaders = c.DemultiplexStats.StrictHeaders
	opts.HeadingTag = c.DemultiplexStats.HeadingTag
	opts.SortFields = append([]string(nil), c.DemultiplexStats.SortFields...)
	opts.ReverseSort = c.DemultiplexStats.Reverse
	if len(c.DemultiplexStats.ExpectedHeaders) > 0 {
		opts.ExpectedHeaders = make(map[string][]string, len(c.DemultiplexStats.ExpectedHeaders))
		for name, header := range c.DemultiplexStats.ExpectedHeaders {
			opts.ExpectedHeaders[name] = append([]string(nil), header...)
		}
	}
	return opts
}

// TableOptions converts the demultiplex stats settings into table
// extraction options. Configured expected headers replace the built-in ones.
func (c *Config) TableOptions() table.Options {
	opts := table.Options{
		HeadingTag:  c.DemultiplexStats.HeadingTag,
		Deduplicate: c.DemultiplexStats.Deduplicate,
		Reverse:     c.DemultiplexStats.Reverse,
	}
	if len(c.DemultiplexStats.SortFields) > 0 {
		opts.SortKey = table.SortBy(c.DemultiplexStats.SortFields...)
	}
	if c.DemultiplexStats.StrictHeaders {
		opts.ExpectedHeaders = table.DemultiplexStatsHeadersWith(c.DemultiplexStats.ExpectedHeaders)
	}
	return opts
}
