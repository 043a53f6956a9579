package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/jobrunner/internal/expr"
	"github.com/viant/jobrunner/logging"
	"github.com/viant/jobrunner/model/descriptor"
	"github.com/viant/jobrunner/service/diagnostic"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the worker configuration. The
// zero-value of every section inherits its package defaults.
type Config struct {
	Diagnostics DiagnosticsConfig `json:"diagnostics" yaml:"diagnostics"`
	Descriptor  DescriptorConfig  `json:"descriptor" yaml:"descriptor"`
	Logging     logging.Config    `json:"logging" yaml:"logging"`
	Tracing     TracingConfig     `json:"tracing" yaml:"tracing"`
}

// DiagnosticsConfig tunes the SIGTERM heap report.
type DiagnosticsConfig struct {
	// SampleRate overrides the armed heap profiling rate when > 0.
	SampleRate  int    `json:"sampleRate,omitempty" yaml:"sampleRate,omitempty"`
	Depth       int    `json:"depth" yaml:"depth"`
	TopN        int    `json:"topN" yaml:"topN"`
	File        string `json:"file" yaml:"file"`
	ProfileFile string `json:"profileFile,omitempty" yaml:"profileFile,omitempty"`
}

// DescriptorConfig locates the task descriptor.
type DescriptorConfig struct {
	File string `json:"file" yaml:"file"`
}

// TracingConfig enables OpenTelemetry spans written to File.
type TracingConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// DefaultConfig returns a Config populated with the built-in defaults.
// Callers may modify the returned struct before passing it to WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Diagnostics: DiagnosticsConfig{
			Depth: diagnostic.DefaultDepth,
			TopN:  diagnostic.DefaultTopN,
			File:  diagnostic.FileName,
		},
		Descriptor: DescriptorConfig{File: descriptor.FileName},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Diagnostics.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("diagnostics.sampleRate must be >= 0"))
	}
	if c.Diagnostics.Depth <= 0 {
		errs = append(errs, fmt.Errorf("diagnostics.depth must be > 0"))
	}
	if c.Diagnostics.TopN <= 0 {
		errs = append(errs, fmt.Errorf("diagnostics.topN must be > 0"))
	}
	if err := validateFileName("diagnostics.file", c.Diagnostics.File, true); err != nil {
		errs = append(errs, err)
	}
	if err := validateFileName("diagnostics.profileFile", c.Diagnostics.ProfileFile, false); err != nil {
		errs = append(errs, err)
	}
	if err := validateFileName("descriptor.file", c.Descriptor.File, true); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Output {
	case "", logging.OutputStderr, logging.OutputStdout, logging.OutputFile, logging.OutputBoth:
	default:
		errs = append(errs, fmt.Errorf("logging.output %q is not supported", c.Logging.Output))
	}
	return errors.Join(errs...)
}

func validateFileName(key, name string, required bool) error {
	if name == "" {
		if required {
			return fmt.Errorf("%s is required", key)
		}
		return nil
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("%s must be a file name inside the working directory, got %q", key, name)
	}
	return nil
}

// LoadConfig reads a YAML configuration from location on top of the
// defaults. ${env.KEY} references are expanded before parsing.
func LoadConfig(ctx context.Context, location string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", location, err)
	}
	cfg := DefaultConfig()
	if err = yaml.Unmarshal(expr.ExpandBytes(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", location, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", location, err)
	}
	return cfg, nil
}
