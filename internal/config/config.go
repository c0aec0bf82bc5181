package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/segmenter"
	"github.com/hupe1980/segmenter/dataset"
	"github.com/hupe1980/segmenter/kmeans"
	"github.com/hupe1980/segmenter/resource"
)

// Config is the file configuration of the segmenter CLI.
type Config struct {
	K                     int     `yaml:"k"`
	Epsilon               float64 `yaml:"epsilon"`
	MaxIterations         int     `yaml:"max_iterations"`
	Init                  string  `yaml:"init"`
	Seed                  *uint64 `yaml:"seed,omitempty"` // nil draws a random seed
	Workers               int     `yaml:"workers,omitempty"`
	ParallelDistanceChunk int     `yaml:"parallel_distance_chunk,omitempty"`

	Input     InputConfig    `yaml:"input"`
	Output    OutputConfig   `yaml:"output"`
	Log       LogConfig      `yaml:"log"`
	Resources ResourceConfig `yaml:"resources,omitempty"`
}

// InputConfig locates and describes the dataset.
type InputConfig struct {
	// Store is "local", "s3" or "minio".
	Store       string `yaml:"store"`
	// Path is a file path for local stores and an object key otherwise.
	Path        string `yaml:"path"`
	Bucket      string `yaml:"bucket,omitempty"`
	Prefix      string `yaml:"prefix,omitempty"`
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	AccessKey   string `yaml:"access_key,omitempty"` // Supports ${ENV_VAR} expansion
	SecretKey   string `yaml:"secret_key,omitempty"` // Supports ${ENV_VAR} expansion
	Secure      bool   `yaml:"secure,omitempty"`
	Format      string `yaml:"format,omitempty"`
	Schema      string `yaml:"schema,omitempty"`
	Compression string `yaml:"compression,omitempty"`
	Header      string `yaml:"header,omitempty"` // auto, present, absent
	Delimiter   string `yaml:"delimiter,omitempty"`
}

// OutputConfig controls the report.
type OutputConfig struct {
	Format    string `yaml:"format"` // text or json
	MaxPoints int    `yaml:"max_points"`
	Precision int    `yaml:"precision,omitempty"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// ResourceConfig bounds process-wide resource use.
type ResourceConfig struct {
	MaxWorkers         int64 `yaml:"max_workers,omitempty"`
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes,omitempty"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		K:             3,
		Epsilon:       kmeans.DefaultEpsilon,
		MaxIterations: kmeans.DefaultMaxIterations,
		Init:          kmeans.InitRandomPoint.String(),
		Input: InputConfig{
			Store:       "local",
			Path:        "MOCK_DATA.txt",
			Format:      "auto",
			Compression: "auto",
			Header:      "auto",
		},
		Output: OutputConfig{
			Format:    "text",
			MaxPoints: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads, expands and validates a YAML configuration file. Keys missing
// from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandTilde()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) expandEnvVars() {
	in := &c.Input
	in.Path = os.ExpandEnv(in.Path)
	in.Bucket = os.ExpandEnv(in.Bucket)
	in.Prefix = os.ExpandEnv(in.Prefix)
	in.Region = os.ExpandEnv(in.Region)
	in.Endpoint = os.ExpandEnv(in.Endpoint)
	in.AccessKey = os.ExpandEnv(in.AccessKey)
	in.SecretKey = os.ExpandEnv(in.SecretKey)
}

func (c *Config) expandTilde() {
	if c.Input.Store != "local" {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	if p := c.Input.Path; p == "~" {
		c.Input.Path = home
	} else if strings.HasPrefix(p, "~/") {
		c.Input.Path = filepath.Join(home, p[2:])
	}
}

// Validate checks the configuration for values the run would reject anyway,
// so errors surface before any data is read.
func (c *Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("k must be >= 1, got %d", c.K)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must be >= 0, got %v", c.Epsilon)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be >= 0, got %d", c.MaxIterations)
	}
	if _, err := kmeans.ParseStrategy(c.Init); err != nil {
		return err
	}

	switch c.Input.Store {
	case "local":
	case "s3", "minio":
		if c.Input.Bucket == "" {
			return fmt.Errorf("input.bucket is required for store %q", c.Input.Store)
		}
		if c.Input.Store == "minio" && c.Input.Endpoint == "" {
			return fmt.Errorf("input.endpoint is required for store %q", c.Input.Store)
		}
	default:
		return fmt.Errorf("unknown input.store %q", c.Input.Store)
	}
	if c.Input.Path == "" {
		return fmt.Errorf("input.path is required")
	}
	if _, err := c.DatasetOptions(); err != nil {
		return err
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}

	return nil
}

// SegmenterConfig converts the file settings into a run configuration.
// seeded is false when no seed was configured.
func (c *Config) SegmenterConfig() (cfg segmenter.Config, seeded bool, err error) {
	init, err := kmeans.ParseStrategy(c.Init)
	if err != nil {
		return segmenter.Config{}, false, err
	}

	cfg = segmenter.Config{
		K:             c.K,
		Epsilon:       c.Epsilon,
		MaxIterations: c.MaxIterations,
		Init:          init,
		Workers:       c.Workers,
		ParallelChunk: c.ParallelDistanceChunk,
	}
	if c.Seed != nil {
		cfg.Seed = *c.Seed
	}
	return cfg, c.Seed != nil, nil
}

// DatasetOptions converts the input settings into reader options.
func (c *Config) DatasetOptions() (dataset.Options, error) {
	format, err := dataset.ParseFormat(c.Input.Format)
	if err != nil {
		return dataset.Options{}, err
	}
	schema, err := dataset.ParseSchema(c.Input.Schema)
	if err != nil {
		return dataset.Options{}, err
	}
	compression, err := dataset.ParseCompression(c.Input.Compression)
	if err != nil {
		return dataset.Options{}, err
	}

	var header dataset.HeaderMode
	switch strings.ToLower(c.Input.Header) {
	case "", "auto":
		header = dataset.HeaderAuto
	case "present", "true", "yes":
		header = dataset.HeaderPresent
	case "absent", "false", "no":
		header = dataset.HeaderAbsent
	default:
		return dataset.Options{}, fmt.Errorf("unknown input.header %q", c.Input.Header)
	}

	var comma rune
	if d := c.Input.Delimiter; d != "" {
		r := []rune(d)
		if len(r) != 1 {
			return dataset.Options{}, fmt.Errorf("input.delimiter must be a single character, got %q", d)
		}
		comma = r[0]
	}

	return dataset.Options{
		Format:      format,
		Schema:      schema,
		Header:      header,
		Compression: compression,
		Comma:       comma,
	}, nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// ResourceController builds the shared controller.
func (c *Config) ResourceController() *resource.Controller {
	return resource.NewController(resource.Config{
		MaxWorkers:         c.Resources.MaxWorkers,
		MemoryLimitBytes:   c.Resources.MemoryLimitBytes,
		IOLimitBytesPerSec: c.Resources.IOLimitBytesPerSec,
	})
}
