// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variable

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"sync"
)

// Option is one selectable value of a Variable. Values optionally
// carries a label's top values for group-by options.
type Option struct {
	Value  string   `json:"value"`
	Label  string   `json:"label,omitempty"`
	Values []string `json:"values,omitempty"`
}

// DisplayLabel returns Label, or Value when Label is empty.
func (option Option) DisplayLabel() string {
	if option.Label != "" {
		return option.Label
	}
	return option.Value
}

// Contains reports whether options holds an option with value.
func Contains(options []Option, value string) bool {
	return slices.ContainsFunc(options, func(option Option) bool {
		return option.Value == value
	})
}

// OptionFetcher resolves an option query to a list of options.
// Implementations must honor ctx cancellation.
type OptionFetcher interface {
	FetchOptions(ctx context.Context, query string) ([]Option, error)
}

// FetcherFunc adapts a function to [OptionFetcher].
type FetcherFunc func(ctx context.Context, query string) ([]Option, error)

// FetchOptions calls fetch(ctx, query).
func (fetch FetcherFunc) FetchOptions(ctx context.Context, query string) ([]Option, error) {
	return fetch(ctx, query)
}

// Definition declares a Variable.
type Definition struct {
	Name string
	// DependsOn names the Variables whose values Query references.
	DependsOn []string
	// Query is the option query template. See the package
	// documentation for interpolation.
	Query string
	// Fetcher resolves Query. When nil, StaticOptions are used.
	Fetcher       OptionFetcher
	StaticOptions []Option
	Default       string
	// URLSyncKey is the query parameter the value is synced to. Empty
	// disables URL sync.
	URLSyncKey string
	// Codec maps the value to URL parameter values. Nil means
	// [SingleCodec].
	Codec Codec
	// Normalize validates and canonicalizes values read from a URL.
	Normalize func(value string) (string, error)
	// ValueFromOptions reconciles the value to an option after each
	// successful fetch: the current value if present, otherwise the
	// default if present, otherwise the first option.
	ValueFromOptions bool
	// AllValue, when set, is prepended to the fetched options.
	AllValue string
}

// observer receives a Variable's state transitions. Calls are made
// without the Variable's lock held.
type observer interface {
	variableLoading(variable *Variable)
	variableSettled(variable *Variable, previous string, changed bool)
	variableChanged(variable *Variable, previous string, fromURL bool)
}

// Variable is a named value with fetched options. Safe for concurrent
// use.
type Variable struct {
	definition Definition
	logger     *slog.Logger

	// resolve interpolates the query template. Set by the owning Set;
	// nil means the template is used verbatim.
	resolve  func(query string) string
	observer observer

	mutex      sync.Mutex
	value      string
	options    []Option
	loading    bool
	err        error
	generation uint64
	cancel     context.CancelFunc
}

// New creates a standalone Variable holding definition.Default. A nil
// logger discards output.
func New(definition Definition, logger *slog.Logger) *Variable {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Variable{
		definition: definition,
		logger:     logger.With("variable", definition.Name),
		value:      definition.Default,
	}
}

// Name returns the Variable's name.
func (variable *Variable) Name() string { return variable.definition.Name }

// Value returns the current value.
func (variable *Variable) Value() string {
	variable.mutex.Lock()
	defer variable.mutex.Unlock()
	return variable.value
}

// Options returns a copy of the current options. Nil while loading or
// after a failed fetch.
func (variable *Variable) Options() []Option {
	variable.mutex.Lock()
	defer variable.mutex.Unlock()
	return slices.Clone(variable.options)
}

// Loading reports whether a fetch is in flight.
func (variable *Variable) Loading() bool {
	variable.mutex.Lock()
	defer variable.mutex.Unlock()
	return variable.loading
}

// Err returns the error of the last completed fetch.
func (variable *Variable) Err() error {
	variable.mutex.Lock()
	defer variable.mutex.Unlock()
	return variable.err
}

// Query returns the option query with dependency values interpolated.
func (variable *Variable) Query() string {
	if variable.resolve == nil {
		return variable.definition.Query
	}
	return variable.resolve(variable.definition.Query)
}

// Update fetches the Variable's options and blocks until the fetch
// completes or is superseded.
//
// A non-forced Update while a fetch is in flight does nothing. A forced
// Update cancels the in-flight fetch; that fetch's result is discarded
// when it returns. Fetch failures are stored and reported by [Err].
func (variable *Variable) Update(ctx context.Context, force bool) {
	query := variable.Query()

	variable.mutex.Lock()
	if variable.loading && !force {
		variable.mutex.Unlock()
		variable.logger.Debug("update skipped, fetch already in flight")
		return
	}
	if variable.cancel != nil {
		variable.cancel()
	}
	variable.generation++
	generation := variable.generation
	fetchContext, cancel := context.WithCancel(ctx)
	variable.cancel = cancel
	variable.loading = true
	variable.options = nil
	variable.err = nil
	variable.mutex.Unlock()
	defer cancel()

	if variable.observer != nil {
		variable.observer.variableLoading(variable)
	}

	options, err := variable.fetch(fetchContext, query)

	variable.mutex.Lock()
	if generation != variable.generation {
		variable.mutex.Unlock()
		variable.logger.Debug("discarding superseded fetch result", "query", query)
		return
	}
	variable.loading = false
	variable.cancel = nil
	previous := variable.value
	if err != nil {
		variable.err = err
	} else {
		variable.options = options
		if variable.definition.ValueFromOptions {
			variable.value = reconcile(options, variable.value, variable.definition.Default)
		}
	}
	current := variable.value
	variable.mutex.Unlock()

	if err != nil {
		variable.logger.Warn("option fetch failed", "query", query, "error", err)
	}
	if variable.observer != nil {
		variable.observer.variableSettled(variable, previous, previous != current)
	}
}

func (variable *Variable) fetch(ctx context.Context, query string) ([]Option, error) {
	var options []Option
	if variable.definition.Fetcher == nil {
		options = slices.Clone(variable.definition.StaticOptions)
	} else {
		fetched, err := variable.definition.Fetcher.FetchOptions(ctx, query)
		if err != nil {
			return nil, err
		}
		options = fetched
	}
	if all := variable.definition.AllValue; all != "" && !Contains(options, all) {
		options = append([]Option{{Value: all, Label: all}}, options...)
	}
	return options, nil
}

func reconcile(options []Option, value, fallback string) string {
	if len(options) == 0 || Contains(options, value) {
		return value
	}
	if Contains(options, fallback) {
		return fallback
	}
	return options[0].Value
}

// ChangeValueTo sets the value. It reports whether the value changed;
// an owning Set is notified only on change.
func (variable *Variable) ChangeValueTo(value string) bool {
	return variable.setValue(value, false)
}

func (variable *Variable) setValue(value string, fromURL bool) bool {
	variable.mutex.Lock()
	previous := variable.value
	variable.value = value
	variable.mutex.Unlock()

	if previous == value {
		return false
	}
	if variable.observer != nil {
		variable.observer.variableChanged(variable, previous, fromURL)
	}
	return true
}

// URLState returns the Variable's URL parameters, or nil when URL sync
// is disabled.
func (variable *Variable) URLState() url.Values {
	key := variable.definition.URLSyncKey
	if key == "" {
		return nil
	}
	return url.Values{key: variable.codec().Encode(variable.Value())}
}

// UpdateFromURL applies the Variable's parameter from values. A missing
// parameter leaves the value unchanged. Invalid values are replaced by
// the default and logged. It reports whether the value changed.
func (variable *Variable) UpdateFromURL(values url.Values) bool {
	key := variable.definition.URLSyncKey
	if key == "" {
		return false
	}
	raw, present := values[key]
	if !present {
		return false
	}

	value, err := variable.codec().Decode(raw)
	if err != nil {
		variable.logger.Warn("dropping malformed URL parameter values", "key", key, "error", err)
	}
	if normalize := variable.definition.Normalize; normalize != nil {
		normalized, err := normalize(value)
		if err != nil {
			variable.logger.Warn("invalid URL value, using default",
				"key", key,
				"value", value,
				"default", variable.definition.Default,
				"error", err,
			)
			normalized = variable.definition.Default
		}
		value = normalized
	}
	return variable.setValue(value, true)
}

func (variable *Variable) codec() Codec {
	if variable.definition.Codec == nil {
		return SingleCodec{}
	}
	return variable.definition.Codec
}
