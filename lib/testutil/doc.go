// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern for asynchronous results (a Variable settling, an idle
// channel closing) so tests never hang on a missed signal.
// [RequireNoReceive] checks the opposite: that nothing arrives within a
// short window.
//
// [Logger] routes slog output to t.Log so failing tests show the
// component logs that led up to the failure.
package testutil
