// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Version and Commit may be set with -ldflags -X. When Commit is left
// empty, the VCS revision stamped by the go command is used instead.
var (
	Version = "0.1.0-dev"
	Commit  = ""
)

// revision reports the commit the binary was built from and whether
// the working tree had local modifications.
func revision(read func() (*debug.BuildInfo, bool)) (commit string, modified bool) {
	if Commit != "" {
		return Commit, false
	}
	info, ok := read()
	if !ok {
		return "unknown", false
	}
	commit = "unknown"
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return commit, modified
}

// Print writes a one-line --version report for binary to output.
func Print(output io.Writer, binary string) {
	write(output, binary, debug.ReadBuildInfo)
}

func write(output io.Writer, binary string, read func() (*debug.BuildInfo, bool)) {
	commit, modified := revision(read)
	if modified {
		commit += "-dirty"
	}
	fmt.Fprintf(output, "%s %s (%s) %s %s/%s\n",
		binary, Version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
