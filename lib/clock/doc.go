// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of the current time.
//
// Components that stamp or derive values from the wall clock (panel
// time ranges, favorites update times) take a [Clock]. Production code
// passes [Real]; tests pass a [Fixed] clock and move it explicitly.
package clock
