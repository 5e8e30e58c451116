// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compare tracks the two panels selected for a side-by-side
// profile comparison and builds the link that opens it.
package compare
