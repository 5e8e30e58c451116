// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the profiles
// explorer.
//
// Configuration is loaded from a single file named by either the
// EXPLORE_PROFILES_CONFIG environment variable (via [Load]) or a
// --config flag (via [LoadFile]). When neither is given the built-in
// [Default] applies: one fixture data source serving the bundled
// sample dataset, and favorites in a SQLite database under the state
// directory. There is no ~/.config discovery and no automatic file
// search.
//
// The file supports environment-specific sections (development,
// production) that override base values when [Config].Environment
// matches. Production defaults are quieter: the log level rises to
// warn unless the production section says otherwise.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${EXPLORE_PROFILES_STATE} and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with DataSources, Favorites, Grid, Log
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other packages of this module.
package config
