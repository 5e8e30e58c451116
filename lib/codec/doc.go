// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration used for persisted
// exploration state (favorites blobs).
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. The same
// favorites list therefore always produces the same bytes, which lets
// the favorites backend skip writes that would not change anything.
//
// Types carry `json` tags only. fxamacker/cbor falls back to them when
// a `cbor` tag is absent, so one tag set names fields in both the CBOR
// blob and the JSON import format.
//
//	data, err := codec.Marshal(document)
//	err = codec.Unmarshal(data, &document)
//
// [IsCBOR] distinguishes a CBOR blob from JSON text so readers can
// accept both.
package codec
