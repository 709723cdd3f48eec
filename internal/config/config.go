// Package config loads quizprep settings from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizprep/internal/llm"
	"github.com/abhisek/quizprep/internal/quizgen"
	"github.com/abhisek/quizprep/internal/sampler"
	"github.com/abhisek/quizprep/internal/scoring"
	"github.com/abhisek/quizprep/internal/session"
)

// Config is the full application configuration.
type Config struct {
	LLM        llm.Config       `yaml:"llm"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Session    SessionConfig    `yaml:"session"`
	Generation GenerationConfig `yaml:"generation"`
	Server     ServerConfig     `yaml:"server"`

	// DB is the sqlite path. Empty uses store.DefaultDBPath().
	DB string `yaml:"db"`
}

// SamplerConfig sizes the text sampler, in characters.
type SamplerConfig struct {
	Budget    int `yaml:"budget"`
	IntroSize int `yaml:"intro_size"`
	Zones     int `yaml:"zones"`
}

// SessionConfig holds quiz attempt settings.
type SessionConfig struct {
	ExamDuration  time.Duration `yaml:"exam_duration"`
	Debounce      time.Duration `yaml:"debounce"`
	PassThreshold float64       `yaml:"pass_threshold"`
}

// GenerationConfig holds question generation settings.
type GenerationConfig struct {
	Count          int     `yaml:"count"`
	Difficulty     string  `yaml:"difficulty"`
	DropUnresolved bool    `yaml:"drop_unresolved"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`

	// ReportURL receives submitted results. Empty stores them locally only.
	ReportURL string `yaml:"report_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	sc := sampler.DefaultConfig()
	gc := quizgen.DefaultConfig()
	return Config{
		LLM: llm.DefaultConfig(),
		Sampler: SamplerConfig{
			Budget:    sc.Budget,
			IntroSize: sc.IntroSize,
			Zones:     sc.Zones,
		},
		Session: SessionConfig{
			ExamDuration:  session.DefaultTimeLimit,
			Debounce:      session.DefaultDebounce,
			PassThreshold: scoring.DefaultPassThreshold,
		},
		Generation: GenerationConfig{
			Count:       10,
			Difficulty:  "medium",
			MaxTokens:   gc.MaxTokens,
			Temperature: gc.Temperature,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Parse decodes YAML over the defaults. Unknown keys and multiple
// documents are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load reads path, applies environment overrides and validates the result.
// An empty path uses DefaultPath and a missing default file is not an
// error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = Parse(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays QUIZPREP_* environment variables.
func (c *Config) ApplyEnv() {
	c.LLM.ApplyEnv()
	if v := os.Getenv("QUIZPREP_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("QUIZPREP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("QUIZPREP_REPORT_URL"); v != "" {
		c.Server.ReportURL = v
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.SamplerConfig().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch {
	case c.Session.ExamDuration < time.Second:
		return fmt.Errorf("invalid config: session.exam_duration must be at least 1s")
	case c.Session.Debounce <= 0:
		return fmt.Errorf("invalid config: session.debounce must be positive")
	case c.Session.PassThreshold <= 0 || c.Session.PassThreshold > 100:
		return fmt.Errorf("invalid config: session.pass_threshold must be in (0, 100]")
	case c.Generation.Count <= 0:
		return fmt.Errorf("invalid config: generation.count must be positive")
	case c.Generation.MaxTokens <= 0:
		return fmt.Errorf("invalid config: generation.max_tokens must be positive")
	case c.Server.Addr == "":
		return fmt.Errorf("invalid config: server.addr is required")
	}
	return nil
}

// SamplerConfig converts the sampler section.
func (c Config) SamplerConfig() sampler.Config {
	return sampler.Config{
		Budget:    c.Sampler.Budget,
		IntroSize: c.Sampler.IntroSize,
		Zones:     c.Sampler.Zones,
	}
}

// GeneratorConfig converts the generation section.
func (c Config) GeneratorConfig() quizgen.Config {
	return quizgen.Config{
		MaxTokens:   c.Generation.MaxTokens,
		Temperature: c.Generation.Temperature,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/quizprep/config.yaml, falling back
// to ~/.config.
func DefaultPath() string {
	if v := os.Getenv("QUIZPREP_CONFIG"); v != "" {
		return v
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "quizprep", "config.yaml")
}
