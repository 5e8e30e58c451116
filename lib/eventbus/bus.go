// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventbus

import (
	"log/slog"
	"reflect"
	"sync"
)

// Bus routes messages from publishers to the handlers subscribed to
// the message's type. The zero value is not usable; call [New].
type Bus struct {
	mutex    sync.Mutex
	nextID   uint64
	handlers map[reflect.Type][]subscription
	logger   *slog.Logger
}

type subscription struct {
	id      uint64
	handler func(any)
}

// New creates an empty bus. A nil logger discards output.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		handlers: make(map[reflect.Type][]subscription),
		logger:   logger,
	}
}

// Subscribe registers handler for every message of type T published on
// bus. The returned function removes the subscription; calling it more
// than once is harmless.
func Subscribe[T any](bus *Bus, handler func(T)) (unsubscribe func()) {
	messageType := reflect.TypeFor[T]()

	bus.mutex.Lock()
	bus.nextID++
	id := bus.nextID
	bus.handlers[messageType] = append(bus.handlers[messageType], subscription{
		id: id,
		handler: func(message any) {
			handler(message.(T))
		},
	})
	bus.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			bus.remove(messageType, id)
		})
	}
}

// Publish delivers message to every handler subscribed to type T, in
// subscription order. Handlers added or removed while a publish is in
// progress take effect on the next publish.
func Publish[T any](bus *Bus, message T) {
	messageType := reflect.TypeFor[T]()

	bus.mutex.Lock()
	current := bus.handlers[messageType]
	snapshot := make([]subscription, len(current))
	copy(snapshot, current)
	bus.mutex.Unlock()

	if len(snapshot) == 0 {
		bus.logger.Debug("event published without subscribers", "type", messageType.String())
		return
	}
	for _, entry := range snapshot {
		entry.handler(message)
	}
}

// SubscriberCount returns the number of live subscriptions for type T.
func SubscriberCount[T any](bus *Bus) int {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	return len(bus.handlers[reflect.TypeFor[T]()])
}

func (bus *Bus) remove(messageType reflect.Type, id uint64) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	current := bus.handlers[messageType]
	for index, entry := range current {
		if entry.id != id {
			continue
		}
		// Copy rather than splice in place: an in-flight Publish may
		// still be iterating a snapshot that shares the backing array.
		remaining := make([]subscription, 0, len(current)-1)
		remaining = append(remaining, current[:index]...)
		remaining = append(remaining, current[index+1:]...)
		if len(remaining) == 0 {
			delete(bus.handlers, messageType)
		} else {
			bus.handlers[messageType] = remaining
		}
		return
	}
}
