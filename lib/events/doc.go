// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package events defines the messages carried on the exploration's
// event bus. Every message is plain data: values and copies, never
// references to components or their mutable state.
package events
