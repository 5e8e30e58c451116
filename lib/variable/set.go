// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"sync"

	"github.com/bureau-foundation/explore-profiles/lib/eventbus"
	"github.com/bureau-foundation/explore-profiles/lib/events"
)

var (
	// ErrUnknownVariable is returned for names not declared in a Set,
	// including dependencies on undeclared names.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrDependencyCycle is returned when declared dependencies form a
	// cycle.
	ErrDependencyCycle = errors.New("variable dependency cycle")
)

// Set owns a group of Variables and refreshes them as their
// dependencies change. Safe for concurrent use.
type Set struct {
	bus    *eventbus.Bus
	logger *slog.Logger

	variables  map[string]*Variable
	order      []string
	dependents map[string][]string

	mutex    sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	stale    map[string]bool
	running  map[string]int
	inflight int
	idle     chan struct{}
	// deferred collects changes made during a batch update;
	// nil outside a batch.
	deferred []string
	batching bool
}

// NewSet validates definitions and builds their Variables. Every
// dependency must name a declared Variable and the dependency graph
// must be acyclic. Refreshes do not start until [Set.Start].
func NewSet(definitions []Definition, bus *eventbus.Bus, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if bus == nil {
		bus = eventbus.New(logger)
	}

	set := &Set{
		bus:        bus,
		logger:     logger,
		variables:  make(map[string]*Variable, len(definitions)),
		dependents: make(map[string][]string),
		stale:      make(map[string]bool),
		running:    make(map[string]int),
		idle:       closedChannel(),
	}

	for _, definition := range definitions {
		if definition.Name == "" {
			return nil, fmt.Errorf("variable: definition without a name")
		}
		if _, exists := set.variables[definition.Name]; exists {
			return nil, fmt.Errorf("variable: %q declared twice", definition.Name)
		}
		variable := New(definition, logger)
		variable.observer = set
		variable.resolve = set.resolver(definition.DependsOn)
		set.variables[definition.Name] = variable
	}

	for _, definition := range definitions {
		for _, dependency := range definition.DependsOn {
			if _, known := set.variables[dependency]; !known {
				return nil, fmt.Errorf("variable: %q depends on %q: %w", definition.Name, dependency, ErrUnknownVariable)
			}
			set.dependents[dependency] = append(set.dependents[dependency], definition.Name)
		}
	}

	order, err := topologicalOrder(definitions)
	if err != nil {
		return nil, err
	}
	set.order = order
	return set, nil
}

// topologicalOrder sorts definitions so every Variable follows its
// dependencies, keeping declaration order among independent ones.
func topologicalOrder(definitions []Definition) ([]string, error) {
	remaining := make(map[string]int, len(definitions))
	for _, definition := range definitions {
		remaining[definition.Name] = len(definition.DependsOn)
	}

	order := make([]string, 0, len(definitions))
	placed := make(map[string]bool, len(definitions))
	for len(order) < len(definitions) {
		progressed := false
		for _, definition := range definitions {
			if placed[definition.Name] {
				continue
			}
			ready := true
			for _, dependency := range definition.DependsOn {
				if !placed[dependency] {
					ready = false
					break
				}
			}
			if ready {
				placed[definition.Name] = true
				order = append(order, definition.Name)
				progressed = true
			}
		}
		if !progressed {
			var cyclic []string
			for _, definition := range definitions {
				if !placed[definition.Name] {
					cyclic = append(cyclic, definition.Name)
				}
			}
			return nil, fmt.Errorf("variable: %v: %w", cyclic, ErrDependencyCycle)
		}
	}
	return order, nil
}

func (set *Set) resolver(dependsOn []string) func(string) string {
	return func(query string) string {
		values := make(map[string]string, len(dependsOn))
		for _, name := range dependsOn {
			values[name] = set.variables[name].Value()
		}
		return Interpolate(query, values)
	}
}

// Start begins refreshing: every Variable is marked stale and refreshed
// in dependency order. Refreshes run under ctx until it is cancelled or
// [Set.Close] is called.
func (set *Set) Start(ctx context.Context) {
	set.mutex.Lock()
	set.ctx, set.cancel = context.WithCancel(ctx)
	for _, name := range set.order {
		set.stale[name] = true
	}
	set.mutex.Unlock()
	set.schedule()
}

// Close cancels in-flight refreshes. Pending refreshes are not started.
func (set *Set) Close() {
	set.mutex.Lock()
	defer set.mutex.Unlock()
	if set.cancel != nil {
		set.cancel()
	}
	clear(set.stale)
}

// Get returns the named Variable.
func (set *Set) Get(name string) (*Variable, bool) {
	variable, found := set.variables[name]
	return variable, found
}

// Variables returns every Variable in dependency order.
func (set *Set) Variables() []*Variable {
	variables := make([]*Variable, 0, len(set.order))
	for _, name := range set.order {
		variables = append(variables, set.variables[name])
	}
	return variables
}

// Value returns the named Variable's value, or "" if it is unknown.
func (set *Set) Value(name string) string {
	variable, found := set.variables[name]
	if !found {
		return ""
	}
	return variable.Value()
}

// Values returns every Variable's current value.
func (set *Set) Values() map[string]string {
	values := make(map[string]string, len(set.variables))
	for name, variable := range set.variables {
		values[name] = variable.Value()
	}
	return values
}

// ChangeValueTo sets the named Variable's value and refreshes its
// dependents.
func (set *Set) ChangeValueTo(name, value string) error {
	variable, found := set.variables[name]
	if !found {
		return fmt.Errorf("variable: %q: %w", name, ErrUnknownVariable)
	}
	variable.ChangeValueTo(value)
	return nil
}

// Refresh force-refreshes the named Variable.
func (set *Set) Refresh(name string) error {
	if _, found := set.variables[name]; !found {
		return fmt.Errorf("variable: %q: %w", name, ErrUnknownVariable)
	}
	set.mutex.Lock()
	set.stale[name] = true
	set.mutex.Unlock()
	set.schedule()
	return nil
}

// Idle returns a channel that is closed when no refresh is running. A
// new channel is issued each time work starts after a quiet period.
func (set *Set) Idle() <-chan struct{} {
	set.mutex.Lock()
	defer set.mutex.Unlock()
	return set.idle
}

// Settled reports whether no refresh is running or pending.
func (set *Set) Settled() bool {
	set.mutex.Lock()
	defer set.mutex.Unlock()
	return set.inflight == 0 && len(set.stale) == 0
}

// URLState returns the URL parameters of every synced Variable.
func (set *Set) URLState() url.Values {
	state := url.Values{}
	for _, name := range set.order {
		maps.Copy(state, set.variables[name].URLState())
	}
	return state
}

// UpdateFromURL applies URL parameters to every synced Variable, then
// refreshes the dependents of everything that changed once. Changes
// are published with FromURL set.
func (set *Set) UpdateFromURL(values url.Values) {
	set.batch(func() {
		for _, name := range set.order {
			set.variables[name].UpdateFromURL(values)
		}
	})
}

// ChangeValues sets several values together. Dependents of everything
// that changed refresh once, after all values are applied.
func (set *Set) ChangeValues(values map[string]string) error {
	for name := range values {
		if _, found := set.variables[name]; !found {
			return fmt.Errorf("variable: %q: %w", name, ErrUnknownVariable)
		}
	}
	set.batch(func() {
		for _, name := range set.order {
			if value, present := values[name]; present {
				set.variables[name].ChangeValueTo(value)
			}
		}
	})
	return nil
}

// batch runs apply with stale marking deferred until it returns.
func (set *Set) batch(apply func()) {
	set.mutex.Lock()
	set.batching = true
	set.mutex.Unlock()

	apply()

	set.mutex.Lock()
	changed := set.deferred
	set.deferred = nil
	set.batching = false
	for _, name := range changed {
		set.markDependentsStale(name)
	}
	set.mutex.Unlock()

	set.schedule()
}

// markDependentsStale marks every transitive dependent of name. The
// caller holds set.mutex.
func (set *Set) markDependentsStale(name string) {
	pending := append([]string(nil), set.dependents[name]...)
	for len(pending) > 0 {
		dependent := pending[0]
		pending = pending[1:]
		if set.stale[dependent] {
			continue
		}
		set.stale[dependent] = true
		pending = append(pending, set.dependents[dependent]...)
	}
}

// schedule starts a refresh for every stale Variable whose
// dependencies are neither stale nor loading.
func (set *Set) schedule() {
	set.mutex.Lock()
	defer set.mutex.Unlock()
	if set.ctx == nil || set.ctx.Err() != nil {
		return
	}

	for _, name := range set.order {
		if !set.stale[name] {
			continue
		}
		variable := set.variables[name]
		if !set.dependenciesSettled(variable) {
			continue
		}
		delete(set.stale, name)
		set.running[name]++
		if set.inflight == 0 {
			set.idle = make(chan struct{})
		}
		set.inflight++
		go set.refresh(set.ctx, variable)
	}
}

func (set *Set) dependenciesSettled(variable *Variable) bool {
	for _, dependency := range variable.definition.DependsOn {
		if set.stale[dependency] || set.running[dependency] > 0 || set.variables[dependency].Loading() {
			return false
		}
	}
	return true
}

func (set *Set) refresh(ctx context.Context, variable *Variable) {
	// Scheduled refreshes always supersede: a dependency changed, so any
	// fetch still in flight was issued with an outdated query.
	variable.Update(ctx, true)

	set.mutex.Lock()
	set.running[variable.Name()]--
	if set.running[variable.Name()] == 0 {
		delete(set.running, variable.Name())
	}
	set.mutex.Unlock()

	// Dependents held back while this refresh ran start before the
	// in-flight count drops, so Idle never closes between the two.
	set.schedule()

	set.mutex.Lock()
	set.inflight--
	if set.inflight == 0 {
		close(set.idle)
	}
	set.mutex.Unlock()
}

func (set *Set) variableLoading(variable *Variable) {
	eventbus.Publish(set.bus, events.VariableLoading{Name: variable.Name()})
}

func (set *Set) variableSettled(variable *Variable, previous string, changed bool) {
	if changed {
		set.mutex.Lock()
		set.markDependentsStale(variable.Name())
		set.mutex.Unlock()
		eventbus.Publish(set.bus, events.VariableChanged{
			Name:     variable.Name(),
			Value:    variable.Value(),
			Previous: previous,
		})
	}

	message := events.VariableSettled{Name: variable.Name()}
	if err := variable.Err(); err != nil {
		message.Error = err.Error()
	}
	eventbus.Publish(set.bus, message)
	set.schedule()
}

func (set *Set) variableChanged(variable *Variable, previous string, fromURL bool) {
	set.mutex.Lock()
	if set.batching {
		set.deferred = append(set.deferred, variable.Name())
	} else {
		set.markDependentsStale(variable.Name())
	}
	set.mutex.Unlock()

	eventbus.Publish(set.bus, events.VariableChanged{
		Name:     variable.Name(),
		Value:    variable.Value(),
		Previous: previous,
		FromURL:  fromURL,
	})
	set.schedule()
}

func closedChannel() chan struct{} {
	channel := make(chan struct{})
	close(channel)
	return channel
}
