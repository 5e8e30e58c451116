// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// explore-profiles is a terminal explorer for continuous profiling
// data. It browses services, profile types, labels and favorites from
// a Pyroscope querier or a local fixture dataset.
//
// The exploration state round-trips through a URL query string: pass
// one with --url to open a specific view, and the final state is
// printed on exit so it can be shared or reopened.
//
// When stdout is not a terminal, the initial view is printed as plain
// text instead of starting the interactive UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/explore-profiles/lib/clock"
	"github.com/bureau-foundation/explore-profiles/lib/config"
	"github.com/bureau-foundation/explore-profiles/lib/datasource/fixture"
	"github.com/bureau-foundation/explore-profiles/lib/datasource/pyroscope"
	"github.com/bureau-foundation/explore-profiles/lib/exploration"
	"github.com/bureau-foundation/explore-profiles/lib/explorer"
	"github.com/bureau-foundation/explore-profiles/lib/favorites"
	"github.com/bureau-foundation/explore-profiles/lib/repeater"
	"github.com/bureau-foundation/explore-profiles/lib/sqlitepool"
	"github.com/bureau-foundation/explore-profiles/lib/urlstate"
	"github.com/bureau-foundation/explore-profiles/lib/version"
)

const binaryName = "explore-profiles"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	initialURL string
	dataSource string
	logOutput  string
	plain      bool
	printURL   bool
}

func run() error {
	var flags options
	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.StringVar(&flags.configPath, "config", "", "path to the YAML config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&flags.initialURL, "url", "", "exploration state to open, as a query string or URL")
	flagSet.StringVar(&flags.dataSource, "data-source", "", "data source selected when the URL names none")
	flagSet.StringVar(&flags.logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolVar(&flags.plain, "plain", false, "print the view as text instead of starting the interactive UI")
	flagSet.BoolVar(&flags.printURL, "print-url", true, "print the final exploration state on exit")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print(os.Stdout, binaryName)
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	initial, err := initialValues(flags.initialURL, cfg.Grid)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := !flags.plain && term.IsTerminal(int(os.Stdout.Fd()))

	var statusHandler *explorer.StatusLogHandler
	if interactive {
		statusHandler = explorer.NewStatusLogHandler(slog.LevelWarn)
	}
	logger, closeLog, err := newLogger(cfg, statusHandler)
	if err != nil {
		return err
	}
	defer closeLog()

	sources, err := buildSources(cfg, logger)
	if err != nil {
		return err
	}

	store, closeFavorites, err := openFavorites(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFavorites()

	var renderer repeater.Renderer
	var interactiveRenderer *explorer.Renderer
	var textRenderer *plainRenderer
	if interactive {
		interactiveRenderer = explorer.NewRenderer()
		renderer = interactiveRenderer
	} else {
		textRenderer = newPlainRenderer()
		renderer = textRenderer
	}

	controller, err := exploration.New(exploration.Config{
		Sources:       sources,
		DefaultSource: cfg.DefaultDataSource,
		Favorites:     store,
		Renderer:      renderer,
		Clock:         clock.Real(),
		TimeRange:     cfg.TimeRangeDuration(),
		MaxPoints:     cfg.MaxPoints,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer controller.Close()
	controller.Activate(ctx, initial)

	if !interactive {
		if err := printView(ctx, os.Stdout, controller, textRenderer); err != nil {
			return err
		}
	} else {
		model := explorer.NewModel(ctx, controller, interactiveRenderer)
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		interactiveRenderer.SetProgram(program)
		statusHandler.SetProgram(program)
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
	}

	if flags.printURL {
		fmt.Fprintf(os.Stdout, "?%s\n", controller.Encode())
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `explore-profiles: browse continuous profiling data in the terminal.

Configuration is read from --config, or the file named by $%s,
or built-in defaults serving a bundled sample dataset.

Usage:
  explore-profiles [flags]

Examples:
  # Explore the bundled sample
  explore-profiles

  # Open the labels of one service, grouped by region
  explore-profiles --url 'explorationType=labels&var-serviceName=api&var-groupBy=region'

  # Print the services view as text
  explore-profiles --plain

Flags:
`, config.EnvironmentVariable)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(flags options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.dataSource != "" {
		cfg.DefaultDataSource = flags.dataSource
	}
	if flags.logOutput != "" {
		cfg.Log.Output = flags.logOutput
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initialValues parses the --url state and fills grid controls it
// leaves unset from the configuration.
func initialValues(raw string, grid config.GridConfig) (url.Values, error) {
	state, err := urlstate.Parse(raw)
	if err != nil {
		return nil, err
	}
	values := state.Values()
	defaults := map[string]string{
		urlstate.KeyLayout:     grid.Layout,
		urlstate.KeyPanelType:  grid.PanelType,
		urlstate.KeyHideNoData: urlstate.FormatBool(grid.HideNoData),
	}
	for key, value := range defaults {
		if _, present := values[key]; !present && value != "" {
			values.Set(key, value)
		}
	}
	return values, nil
}

// newLogger builds the session logger. Records go to the log file when
// one is configured, and at warn and above to the status line when
// status is non-nil. Without either, plain mode logs to stderr, as
// text on a terminal and JSON otherwise.
func newLogger(cfg *config.Config, status *explorer.StatusLogHandler) (*slog.Logger, func(), error) {
	var handlers explorer.FanoutHandler
	closeLog := func() {}

	if cfg.Log.Output != "" {
		file, err := os.OpenFile(cfg.Log.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.Log.Output, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: cfg.LogLevel()}))
		closeLog = func() { file.Close() }
	}
	if status != nil {
		handlers = append(handlers, status)
	} else if len(handlers) == 0 {
		handlerOptions := &slog.HandlerOptions{Level: cfg.LogLevel()}
		if term.IsTerminal(int(os.Stderr.Fd())) {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, handlerOptions))
		} else {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, handlerOptions))
		}
	}

	logger := slog.New(handlers).With("session", uuid.NewString())
	return logger, closeLog, nil
}

// buildSources constructs every configured data source.
func buildSources(cfg *config.Config, logger *slog.Logger) (map[string]exploration.Source, error) {
	sources := make(map[string]exploration.Source, len(cfg.DataSources))
	for _, sourceConfig := range cfg.DataSources {
		sourceLogger := logger.With("data_source", sourceConfig.Name)
		switch sourceConfig.Kind {
		case config.KindFixture:
			if sourceConfig.Path == "" {
				sources[sourceConfig.Name] = fixture.Sample(sourceLogger)
				continue
			}
			source, err := fixture.Load(sourceConfig.Path, sourceLogger)
			if err != nil {
				return nil, err
			}
			sources[sourceConfig.Name] = source

		case config.KindPyroscope:
			client, err := pyroscope.NewClient(pyroscope.Config{
				BaseURL:  sourceConfig.URL,
				Lookback: sourceConfig.LookbackDuration(),
				Logger:   sourceLogger,
			})
			if err != nil {
				return nil, err
			}
			sources[sourceConfig.Name] = client

		default:
			return nil, fmt.Errorf("data source %q: unknown kind %q", sourceConfig.Name, sourceConfig.Kind)
		}
	}
	return sources, nil
}

// openFavorites opens the configured favorites store.
func openFavorites(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*favorites.Store, func(), error) {
	var backend favorites.Backend
	closeBackend := func() {}

	switch cfg.Favorites.Backend {
	case config.BackendSQLite:
		pool, err := sqlitepool.Open(sqlitepool.Config{
			Path:   cfg.Favorites.Path,
			Schema: favorites.Schema,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		backend = favorites.NewSQLiteBackend(pool, clock.Real())
		closeBackend = func() {
			if err := pool.Close(); err != nil {
				logger.Warn("closing favorites database", "error", err)
			}
		}
	default:
		backend = favorites.NewMemoryBackend()
	}

	store, err := favorites.Open(ctx, backend, cfg.Favorites.User, logger)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}
	return store, closeBackend, nil
}
