// Package config loads tokengaps configuration from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/tokengaps/internal/analysis"
	"github.com/Aman-CERP/tokengaps/internal/errors"
)

// Config represents the complete tokengaps configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// AnalysisConfig describes the analysis chain: a tokenizer followed by
// filters applied in order.
type AnalysisConfig struct {
	Tokenizer string                `yaml:"tokenizer" json:"tokenizer"`
	Filters   []analysis.FilterSpec `yaml:"filters" json:"filters"`
}

// SearchConfig configures the phrase index.
type SearchConfig struct {
	// IndexPath is the on-disk bleve index. Empty keeps the index in memory.
	IndexPath  string `yaml:"index_path" json:"index_path"`
	MaxResults int    `yaml:"max_results" json:"max_results"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultFilters is the chain used when no configuration overrides it.
func DefaultFilters() []analysis.FilterSpec {
	return []analysis.FilterSpec{
		{Name: analysis.LowercaseName},
		{Name: analysis.StopName},
		{Name: analysis.RemoveGapsName},
	}
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			Tokenizer: analysis.CodeTokenizerName,
			Filters:   DefaultFilters(),
		},
		Search: SearchConfig{
			IndexPath:  "",
			MaxResults: 10,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/tokengaps/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/tokengaps/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tokengaps", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "tokengaps", "config.yaml")
	}
	return filepath.Join(home, ".config", "tokengaps", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var cfg Config
	if err := readYAML(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration with the following precedence (lowest first):
//  1. Hardcoded defaults
//  2. User/global config (~/.config/tokengaps/config.yaml)
//  3. Project config (.tokengaps.yaml in dir)
//  4. Environment variables (TOKENGAPS_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile loads defaults merged with a single explicit file, then applies
// environment overrides and validates.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if !fileExists(path) {
		return nil, errors.New(errors.ErrCodeConfigNotFound, "config file not found: "+path, nil).
			WithSuggestion("check the --config path")
	}
	var parsed Config
	if err := readYAML(path, &parsed); err != nil {
		return nil, err
	}
	cfg.mergeWith(&parsed)
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile attempts to load configuration from .tokengaps.yaml or .tokengaps.yml.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".tokengaps.yaml", ".tokengaps.yml"} {
		path := filepath.Join(dir, name)
		if !fileExists(path) {
			continue
		}
		var parsed Config
		if err := readYAML(path, &parsed); err != nil {
			return err
		}
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func readYAML(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.ErrCodeFilePermission, "failed to read config file "+path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.ConfigError("failed to parse config file "+path, err)
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Analysis.Tokenizer != "" {
		c.Analysis.Tokenizer = other.Analysis.Tokenizer
	}
	// A filter list replaces the default chain as a whole; order matters.
	if other.Analysis.Filters != nil {
		c.Analysis.Filters = other.Analysis.Filters
	}

	if other.Search.IndexPath != "" {
		c.Search.IndexPath = other.Search.IndexPath
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
}

// applyEnvOverrides applies TOKENGAPS_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TOKENGAPS_TOKENIZER"); v != "" {
		c.Analysis.Tokenizer = v
	}
	if v := os.Getenv("TOKENGAPS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TOKENGAPS_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
	// TOKENGAPS_STOP_WORDS replaces the word list of every stop filter.
	if v := os.Getenv("TOKENGAPS_STOP_WORDS"); v != "" {
		for i, f := range c.Analysis.Filters {
			if f.Name != analysis.StopName {
				continue
			}
			args := make(map[string]string, len(f.Args)+1)
			for k, val := range f.Args {
				args[k] = val
			}
			args["words"] = v
			c.Analysis.Filters[i].Args = args
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
// The analysis chain is built once so unknown names and arguments surface here.
func (c *Config) Validate() error {
	if c.Search.MaxResults < 0 {
		return errors.ConfigError(fmt.Sprintf("search.max_results must be non-negative, got %d", c.Search.MaxResults), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return errors.ConfigError(fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return errors.ConfigError(fmt.Sprintf("logging.format must be 'text' or 'json', got %s", c.Logging.Format), nil)
	}

	if _, err := c.Chain(nil); err != nil {
		return err
	}
	return nil
}

// Chain builds the configured analysis chain from reg, or from the default
// registry when reg is nil.
func (c *Config) Chain(reg *analysis.Registry) (*analysis.Chain, error) {
	return analysis.NewChain(reg, c.Analysis.Tokenizer, c.Analysis.Filters)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.InternalError("failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.ErrCodeFilePermission, "failed to write config file "+path, err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
