// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "EXPLORE_PROFILES_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local use.
	Development Environment = "development"
	// Production is for shared installations.
	Production Environment = "production"
)

// Data source kinds.
const (
	KindFixture   = "fixture"
	KindPyroscope = "pyroscope"
)

// Favorites backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

var (
	gridLayouts = []string{"grid", "rows", "single"}
	panelTypes  = []string{"timeseries", "bargauge", "table", "histogram"}
	logLevels   = []string{"debug", "info", "warn", "error"}
)

// Config is the master configuration.
type Config struct {
	// Environment identifies the deployment type (development, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// DataSources lists the selectable data sources. At least one is
	// required.
	DataSources []DataSourceConfig `yaml:"data_sources"`

	// DefaultDataSource is selected when the URL names none. Empty
	// means the first data source by name.
	DefaultDataSource string `yaml:"default_data_source"`

	// Favorites configures favorites persistence.
	Favorites FavoritesConfig `yaml:"favorites"`

	// TimeRange is the panel fetch window ending now.
	// Default: 1h
	TimeRange string `yaml:"time_range"`

	// MaxPoints caps points per panel series. Zero lets the data
	// source decide.
	MaxPoints int `yaml:"max_points"`

	// Grid sets the initial grid controls. URL parameters take
	// precedence.
	Grid GridConfig `yaml:"grid"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	DefaultDataSource string           `yaml:"default_data_source,omitempty"`
	Favorites         *FavoritesConfig `yaml:"favorites,omitempty"`
	TimeRange         string           `yaml:"time_range,omitempty"`
	Grid              *GridConfig      `yaml:"grid,omitempty"`
	Log               *LogConfig       `yaml:"log,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// State is where persistent state (the favorites database) lives.
	State string `yaml:"state"`
}

// DataSourceConfig configures one data source.
type DataSourceConfig struct {
	// Name identifies the source in the data source picker and the
	// var-dataSource URL parameter.
	Name string `yaml:"name"`

	// Kind is "fixture" or "pyroscope".
	Kind string `yaml:"kind"`

	// URL is the Pyroscope server base URL. Pyroscope only.
	URL string `yaml:"url,omitempty"`

	// Path is a JSONC dataset file. Fixture only; empty serves the
	// bundled sample.
	Path string `yaml:"path,omitempty"`

	// Lookback bounds option queries. Pyroscope only.
	// Default: 1h
	Lookback string `yaml:"lookback,omitempty"`
}

// FavoritesConfig configures favorites persistence.
type FavoritesConfig struct {
	// Backend is "memory" or "sqlite".
	// Default: sqlite
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	// Default: ${EXPLORE_PROFILES_STATE}/favorites.db
	Path string `yaml:"path"`

	// User keys the favorites blob.
	// Default: the USER environment variable, or "default"
	User string `yaml:"user"`
}

// GridConfig sets initial grid controls.
type GridConfig struct {
	// Layout is "grid", "rows" or "single".
	Layout string `yaml:"layout"`

	// PanelType is the default panel visualization.
	PanelType string `yaml:"panel_type"`

	// HideNoData hides panels whose fetch returned no series.
	HideNoData bool `yaml:"hide_no_data"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	// Default: info (development), warn (production)
	Level string `yaml:"level"`

	// Output is a file receiving JSON logs. Empty discards logs while
	// the terminal UI runs.
	Output string `yaml:"output"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	user := os.Getenv("USER")
	if user == "" {
		user = "default"
	}

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			State: filepath.Join(homeDir, ".local", "state", "explore-profiles"),
		},
		DataSources: []DataSourceConfig{
			{Name: "sample", Kind: KindFixture},
		},
		Favorites: FavoritesConfig{
			Backend: BackendSQLite,
			Path:    "${EXPLORE_PROFILES_STATE}/favorites.db",
			User:    user,
		},
		TimeRange: "1h",
		Grid: GridConfig{
			Layout:    "grid",
			PanelType: "timeseries",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by the
// EXPLORE_PROFILES_CONFIG environment variable, or returns [Default]
// when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// Data sources listed in the file replace the default sample source
// rather than adding to it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production defaults: quieter logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.DefaultDataSource != "" {
		c.DefaultDataSource = overrides.DefaultDataSource
	}
	if overrides.TimeRange != "" {
		c.TimeRange = overrides.TimeRange
	}

	if overrides.Favorites != nil {
		if overrides.Favorites.Backend != "" {
			c.Favorites.Backend = overrides.Favorites.Backend
		}
		if overrides.Favorites.Path != "" {
			c.Favorites.Path = overrides.Favorites.Path
		}
		if overrides.Favorites.User != "" {
			c.Favorites.User = overrides.Favorites.User
		}
	}

	if overrides.Grid != nil {
		if overrides.Grid.Layout != "" {
			c.Grid.Layout = overrides.Grid.Layout
		}
		if overrides.Grid.PanelType != "" {
			c.Grid.PanelType = overrides.Grid.PanelType
		}
		// HideNoData is a bool, so we always apply it from overrides.
		c.Grid.HideNoData = overrides.Grid.HideNoData
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Output != "" {
			c.Log.Output = overrides.Log.Output
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"EXPLORE_PROFILES_STATE": c.Paths.State,
		"HOME":                   os.Getenv("HOME"),
	}

	c.Paths.State = expandVars(c.Paths.State, vars)
	vars["EXPLORE_PROFILES_STATE"] = c.Paths.State // Update for dependent paths.

	c.Favorites.Path = expandVars(c.Favorites.Path, vars)
	c.Log.Output = expandVars(c.Log.Output, vars)
	for index := range c.DataSources {
		c.DataSources[index].Path = expandVars(c.DataSources[index].Path, vars)
		c.DataSources[index].URL = expandVars(c.DataSources[index].URL, vars)
	}
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if len(c.DataSources) == 0 {
		errs = append(errs, fmt.Errorf("data_sources must list at least one data source"))
	}
	names := make([]string, 0, len(c.DataSources))
	for index, source := range c.DataSources {
		field := fmt.Sprintf("data_sources[%d]", index)
		if source.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", field))
		} else if slices.Contains(names, source.Name) {
			errs = append(errs, fmt.Errorf("%s.name %q is not unique", field, source.Name))
		}
		names = append(names, source.Name)

		switch source.Kind {
		case KindFixture:
		case KindPyroscope:
			parsed, err := url.Parse(source.URL)
			if source.URL == "" || err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
				errs = append(errs, fmt.Errorf("%s.url must be an http or https URL", field))
			}
			if source.Lookback != "" {
				if _, err := parsePositiveDuration(source.Lookback); err != nil {
					errs = append(errs, fmt.Errorf("%s.lookback: %w", field, err))
				}
			}
		default:
			errs = append(errs, fmt.Errorf("%s.kind must be one of: %v", field, []string{KindFixture, KindPyroscope}))
		}
	}
	if c.DefaultDataSource != "" && !slices.Contains(names, c.DefaultDataSource) {
		errs = append(errs, fmt.Errorf("default_data_source %q is not a configured data source", c.DefaultDataSource))
	}

	switch c.Favorites.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Favorites.Path == "" {
			errs = append(errs, fmt.Errorf("favorites.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("favorites.backend must be one of: %v", []string{BackendMemory, BackendSQLite}))
	}
	if c.Favorites.User == "" {
		errs = append(errs, fmt.Errorf("favorites.user is required"))
	}

	if _, err := parsePositiveDuration(c.TimeRange); err != nil {
		errs = append(errs, fmt.Errorf("time_range: %w", err))
	}
	if c.MaxPoints < 0 {
		errs = append(errs, fmt.Errorf("max_points must not be negative"))
	}

	if !slices.Contains(gridLayouts, c.Grid.Layout) {
		errs = append(errs, fmt.Errorf("grid.layout must be one of: %v", gridLayouts))
	}
	if !slices.Contains(panelTypes, c.Grid.PanelType) {
		errs = append(errs, fmt.Errorf("grid.panel_type must be one of: %v", panelTypes))
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// TimeRangeDuration returns TimeRange parsed. Call after [Config.Validate].
func (c *Config) TimeRangeDuration() time.Duration {
	duration, _ := parsePositiveDuration(c.TimeRange)
	return duration
}

// LookbackDuration returns the source's Lookback parsed, or zero when
// unset.
func (source DataSourceConfig) LookbackDuration() time.Duration {
	duration, _ := parsePositiveDuration(source.Lookback)
	return duration
}

// LogLevel returns the slog level for Log.Level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// EnsurePaths creates the state directory and the favorites database
// directory if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Paths.State}
	if c.Favorites.Backend == BackendSQLite && c.Favorites.Path != "" {
		paths = append(paths, filepath.Dir(c.Favorites.Path))
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}

func parsePositiveDuration(text string) (time.Duration, error) {
	duration, err := time.ParseDuration(text)
	if err != nil {
		return 0, err
	}
	if duration <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", text)
	}
	return duration, nil
}
