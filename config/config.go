package config

import (
	"time"

	"github.com/kbukum/comprehend/logger"
	"github.com/kbukum/comprehend/validation"
)

// Config is the configuration of the comprehend command.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	Definitions DefinitionsConfig `yaml:"definitions" mapstructure:"definitions"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
	Tracing     TracingConfig     `yaml:"tracing" mapstructure:"tracing"`
}

// DefinitionsConfig lists where named definitions are searched for.
type DefinitionsConfig struct {
	Dirs []string `yaml:"dirs" mapstructure:"dirs" validate:"dive,required"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json yaml"`
	// Limit stops a run after this many results; 0 means no limit.
	Limit int `yaml:"limit" mapstructure:"limit" validate:"gte=0"`
}

// MetricsConfig enables OTLP metric export.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "comprehend"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if len(c.Definitions.Dirs) == 0 {
		c.Definitions.Dirs = []string{"examples"}
	}
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.ValidateStruct(c))
	v.Merge("logging", c.Logging.Validate())
	return v.Validate()
}
