// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by time.Now.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// FixedClock reports a time that changes only through Set and Advance.
// Safe for concurrent use.
type FixedClock struct {
	mutex   sync.Mutex
	current time.Time
}

// Fixed returns a FixedClock reading initial.
func Fixed(initial time.Time) *FixedClock {
	return &FixedClock{current: initial}
}

// Now returns the clock's current time.
func (clock *FixedClock) Now() time.Time {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	return clock.current
}

// Set moves the clock to now.
func (clock *FixedClock) Set(now time.Time) {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	clock.current = now
}

// Advance moves the clock forward by duration.
func (clock *FixedClock) Advance(duration time.Duration) {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	clock.current = clock.current.Add(duration)
}
