// Package config loads the tqmend batch configuration from a YAML file
// and validates it against an embedded CUE schema. All fields have
// defaults so running without a config file is always possible.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Columns names the CSV columns the batch commands read and write.
type Columns struct {
	SPARQL   string `yaml:"sparql" json:"sparql"`
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
	Table    string `yaml:"table" json:"table"`
}

// Config holds all tunables for the batch commands. Durations are
// expressed in scalar units in the file (seconds, milliseconds) to keep
// the YAML free of Go-specific duration syntax.
type Config struct {
	Endpoint       string  `yaml:"endpoint" json:"endpoint"`
	TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	Retries        int     `yaml:"retries" json:"retries"`
	BackoffSeconds float64 `yaml:"backoff_seconds" json:"backoff_seconds"`
	PauseMillis    int     `yaml:"pause_ms" json:"pause_ms"`
	Columns        Columns `yaml:"columns" json:"columns"`
	CachePath      string  `yaml:"cache_path" json:"cache_path"`
}

// Default returns the built-in configuration: the public DBpedia
// endpoint with the retry policy the batch jobs were tuned against.
func Default() Config {
	return Config{
		Endpoint:       "https://dbpedia.org/sparql",
		TimeoutSeconds: 25,
		Retries:        5,
		BackoffSeconds: 0.8,
		PauseMillis:    50,
		Columns: Columns{
			SPARQL:   "sparql",
			Question: "question",
			Answer:   "answer",
			Table:    "table",
		},
	}
}

// Load reads a YAML config file, overlays it on the defaults, and
// validates the result. An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	val := ctx.Encode(c)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Backoff returns the base retry backoff as a duration.
func (c Config) Backoff() time.Duration {
	return time.Duration(float64(time.Second) * c.BackoffSeconds)
}

// Pause returns the inter-request pause as a duration.
func (c Config) Pause() time.Duration {
	return time.Duration(c.PauseMillis) * time.Millisecond
}
