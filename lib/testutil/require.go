// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// DefaultTimeout bounds every wait in this package when the caller has
// no better estimate.
const DefaultTimeout = 5 * time.Second

// RequireReceive returns the next value from channel, failing the test
// if none arrives within timeout or the channel is closed.
//
//	message := testutil.RequireReceive(t, received, testutil.DefaultTimeout, "settle event")
func RequireReceive[T any](t testing.TB, channel <-chan T, timeout time.Duration, what string, args ...any) T {
	t.Helper()
	select {
	case value, ok := <-channel:
		if !ok {
			t.Fatalf("channel closed while waiting for %s", fmt.Sprintf(what, args...))
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for %s", timeout, fmt.Sprintf(what, args...))
	}
	panic("unreachable")
}

// RequireClosed fails the test unless channel is closed (or yields a
// value) within timeout.
//
//	testutil.RequireClosed(t, set.Idle(), testutil.DefaultTimeout, "variables idle")
func RequireClosed(t testing.TB, channel <-chan struct{}, timeout time.Duration, what string, args ...any) {
	t.Helper()
	select {
	case <-channel:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for %s", timeout, fmt.Sprintf(what, args...))
	}
}

// RequireNoReceive fails the test if channel yields a value within
// window.
func RequireNoReceive[T any](t testing.TB, channel <-chan T, window time.Duration, what string, args ...any) {
	t.Helper()
	select {
	case value := <-channel:
		t.Fatalf("unexpected %s: %v", fmt.Sprintf(what, args...), value)
	case <-time.After(window):
	}
}
