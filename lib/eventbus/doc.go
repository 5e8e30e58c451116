// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventbus provides a typed publish/subscribe primitive that
// decouples the components of an exploration session: grid panels,
// drawers, action buttons and the exploration state machine never hold
// references to each other, they exchange plain-data messages through
// a shared [Bus].
//
// Subscriptions are keyed by the Go type of the message:
//
//	unsubscribe := eventbus.Subscribe(bus, func(event events.ViewLabels) {
//	    // react
//	})
//	defer unsubscribe()
//
//	eventbus.Publish(bus, events.ViewLabels{Item: item})
//
// Delivery is synchronous on the publishing goroutine. Handlers for a
// given type run in subscription order; there is no ordering guarantee
// across types. The handler list is snapshotted under the bus lock and
// dispatched after the lock is released, so a handler may publish,
// subscribe or unsubscribe without deadlocking.
//
// This package depends on no other packages of this module.
package eventbus
