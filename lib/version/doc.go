// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports what build of explore-profiles is running.
//
// Release builds set [Version] and [Commit] with -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/explore-profiles/lib/version.Commit=$(git rev-parse --short HEAD)"
//
// Other builds fall back to the VCS stamp the go command embeds.
package version
