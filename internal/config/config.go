// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for stepform.
type Config struct {
	Form     string `mapstructure:"form" yaml:"form"`
	Builtin  string `mapstructure:"builtin" yaml:"builtin"`
	Mode     string `mapstructure:"mode" yaml:"mode"`
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
	Events   bool   `mapstructure:"events" yaml:"events"`
	Gate     bool   `mapstructure:"gate" yaml:"gate"`
}

// keys lists every setting bound to a STEPFORM_ environment variable.
var keys = []string{"form", "builtin", "mode", "data_dir", "log_level", "log_file", "events", "gate"}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("stepform")

	v.SetDefault("form", "")
	v.SetDefault("builtin", "")
	v.SetDefault("mode", "")
	v.SetDefault("data_dir", ".stepform")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("events", true)
	v.SetDefault("gate", true)

	// Setup ENV binding with STEPFORM_ prefix
	v.SetEnvPrefix("STEPFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool parsing
	for _, key := range keys {
		if err := v.BindEnv(key, "STEPFORM_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		logger.Debug("Loaded global config from %s", globalPath)
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
		logger.Debug("Merged project config from %s", projectPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values that have a fixed vocabulary. When both form
// and builtin are set the form file wins.
func (c *Config) Validate() error {
	var errs []error
	if _, err := form.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/stepform/stepform.yml or $XDG_CONFIG_HOME/stepform/stepform.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stepform", "stepform.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stepform", "stepform.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "stepform.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
