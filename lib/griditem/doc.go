// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package griditem describes the items a repeater grid renders: one
// panel per item, each carrying the query parameters its panel fetches
// with and the visualization it uses.
//
// Items are plain values. A grid produces a fresh list on every
// recompute and decides whether to re-render by comparing lists with
// [ListEqual]; [Item.Key] gives a deterministic identity used for
// data-received routing, compare selection and favorites.
package griditem
