// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "explore-profiles.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if len(cfg.DataSources) != 1 || cfg.DataSources[0].Kind != KindFixture {
		t.Errorf("expected one fixture data source, got %+v", cfg.DataSources)
	}
	if cfg.Favorites.Backend != BackendSQLite {
		t.Errorf("expected favorites.backend=sqlite, got %s", cfg.Favorites.Backend)
	}
	if cfg.TimeRange != "1h" {
		t.Errorf("expected time_range=1h, got %s", cfg.TimeRange)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_WithoutConfigUsesDefaults(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataSources[0].Name != "sample" {
		t.Errorf("expected the sample data source, got %+v", cfg.DataSources)
	}
	if strings.Contains(cfg.Favorites.Path, "${") {
		t.Errorf("favorites path not expanded: %s", cfg.Favorites.Path)
	}
	if !strings.HasSuffix(cfg.Favorites.Path, filepath.Join("explore-profiles", "favorites.db")) {
		t.Errorf("unexpected favorites path %s", cfg.Favorites.Path)
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	configPath := writeConfig(t, `
environment: production
data_sources:
  - name: prod
    kind: pyroscope
    url: https://pyroscope.example.com
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Production {
		t.Errorf("expected environment=production, got %s", cfg.Environment)
	}
	if len(cfg.DataSources) != 1 || cfg.DataSources[0].Name != "prod" {
		t.Errorf("file data sources should replace the defaults, got %+v", cfg.DataSources)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected production default log level warn, got %s", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: development

paths:
  state: /custom/state

data_sources:
  - name: local
    kind: fixture
    path: ${EXPLORE_PROFILES_STATE}/dataset.jsonc
  - name: remote
    kind: pyroscope
    url: http://localhost:4040
    lookback: 30m

default_data_source: remote

favorites:
  backend: memory
  user: alice

time_range: 6h
max_points: 200

grid:
  layout: rows
  panel_type: bargauge
  hide_no_data: true
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if got := cfg.DataSources[0].Path; got != "/custom/state/dataset.jsonc" {
		t.Errorf("expected expanded fixture path, got %s", got)
	}
	if got := cfg.DataSources[1].LookbackDuration(); got != 30*time.Minute {
		t.Errorf("expected lookback 30m, got %v", got)
	}
	if cfg.DefaultDataSource != "remote" {
		t.Errorf("expected default_data_source=remote, got %s", cfg.DefaultDataSource)
	}
	if cfg.Favorites.Backend != BackendMemory || cfg.Favorites.User != "alice" {
		t.Errorf("unexpected favorites config %+v", cfg.Favorites)
	}
	if got := cfg.TimeRangeDuration(); got != 6*time.Hour {
		t.Errorf("expected time range 6h, got %v", got)
	}
	if cfg.MaxPoints != 200 {
		t.Errorf("expected max_points=200, got %d", cfg.MaxPoints)
	}
	if cfg.Grid.Layout != "rows" || cfg.Grid.PanelType != "bargauge" || !cfg.Grid.HideNoData {
		t.Errorf("unexpected grid config %+v", cfg.Grid)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	configPath := writeConfig(t, "data_sources: [unterminated\n")
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: production
log:
  level: info
production:
  default_data_source: sample
  time_range: 15m
  favorites:
    user: shared
  grid:
    layout: single
  log:
    level: error
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.DefaultDataSource != "sample" {
		t.Errorf("expected override default_data_source=sample, got %s", cfg.DefaultDataSource)
	}
	if cfg.TimeRange != "15m" {
		t.Errorf("expected override time_range=15m, got %s", cfg.TimeRange)
	}
	if cfg.Favorites.User != "shared" {
		t.Errorf("expected override favorites.user=shared, got %s", cfg.Favorites.User)
	}
	if cfg.Grid.Layout != "single" {
		t.Errorf("expected override grid.layout=single, got %s", cfg.Grid.Layout)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected override log.level=error, got %s", cfg.Log.Level)
	}
	if cfg.LogLevel() != slog.LevelError {
		t.Errorf("expected slog error level, got %v", cfg.LogLevel())
	}
}

func TestDevelopmentOverridesIgnoredInProduction(t *testing.T) {
	configPath := writeConfig(t, `
environment: production
development:
  log:
    level: debug
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected production default log level warn, got %s", cfg.Log.Level)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("EXPLORE_PROFILES_TEST_VAR", "from-env")
	vars := map[string]string{"EXPLORE_PROFILES_STATE": "/state"}

	tests := []struct {
		input string
		want  string
	}{
		{"${EXPLORE_PROFILES_STATE}/favorites.db", "/state/favorites.db"},
		{"${EXPLORE_PROFILES_TEST_VAR}/x", "from-env/x"},
		{"${EXPLORE_PROFILES_UNSET_VAR:-fallback}/x", "fallback/x"},
		{"${EXPLORE_PROFILES_UNSET_VAR}/x", "/x"},
		{"/plain/path", "/plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "staging" },
			wantErr: "invalid environment",
		},
		{
			name:    "no data sources",
			modify:  func(c *Config) { c.DataSources = nil },
			wantErr: "at least one data source",
		},
		{
			name: "duplicate data source",
			modify: func(c *Config) {
				c.DataSources = append(c.DataSources, DataSourceConfig{Name: "sample", Kind: KindFixture})
			},
			wantErr: "not unique",
		},
		{
			name: "unknown kind",
			modify: func(c *Config) {
				c.DataSources[0].Kind = "graphite"
			},
			wantErr: "kind must be one of",
		},
		{
			name: "pyroscope without url",
			modify: func(c *Config) {
				c.DataSources[0] = DataSourceConfig{Name: "remote", Kind: KindPyroscope}
			},
			wantErr: "url must be an http or https URL",
		},
		{
			name: "bad lookback",
			modify: func(c *Config) {
				c.DataSources[0] = DataSourceConfig{Name: "remote", Kind: KindPyroscope, URL: "http://localhost:4040", Lookback: "-1h"}
			},
			wantErr: "lookback",
		},
		{
			name:    "unknown default source",
			modify:  func(c *Config) { c.DefaultDataSource = "missing" },
			wantErr: "default_data_source",
		},
		{
			name:    "sqlite without path",
			modify:  func(c *Config) { c.Favorites.Path = "" },
			wantErr: "favorites.path is required",
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Favorites.Backend = "redis" },
			wantErr: "favorites.backend",
		},
		{
			name:    "no user",
			modify:  func(c *Config) { c.Favorites.User = "" },
			wantErr: "favorites.user is required",
		},
		{
			name:    "bad time range",
			modify:  func(c *Config) { c.TimeRange = "soon" },
			wantErr: "time_range",
		},
		{
			name:    "negative max points",
			modify:  func(c *Config) { c.MaxPoints = -1 },
			wantErr: "max_points",
		},
		{
			name:    "bad layout",
			modify:  func(c *Config) { c.Grid.Layout = "mosaic" },
			wantErr: "grid.layout",
		},
		{
			name:    "bad panel type",
			modify:  func(c *Config) { c.Grid.PanelType = "pie" },
			wantErr: "grid.panel_type",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.State = filepath.Join(root, "state")
	cfg.Favorites.Path = filepath.Join(root, "db", "favorites.db")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}
	for _, directory := range []string{cfg.Paths.State, filepath.Dir(cfg.Favorites.Path)} {
		info, err := os.Stat(directory)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", directory)
		}
	}
}
