// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package favorites stores the panels a user has pinned.
//
// A [Favorite] is the persistable projection of a grid item: its query
// parameters (group-by keeps the label but drops the sampled values)
// and its panel type. Two favorites are the same favorite when those
// match; the index a favorite was created at is not part of its
// identity.
//
// A [Store] holds one user's deduplicated favorites and writes them
// through a [Backend] after every change. Blobs are deterministic CBOR.
// Reading also accepts JSON or JSON-with-comments, either a document
// or a bare list, including entries written with the older
// "queryRunnerParams" field name. Entries without a service are
// dropped, unknown panel types read as timeseries, and a blob that
// cannot be decoded at all is left in place while the store starts
// empty.
//
// [Store.Fetcher] exposes the favorites as Variable options so a
// repeater grid can render them like any other option list.
package favorites
