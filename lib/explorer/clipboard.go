// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package explorer

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// osc52 wraps text in the OSC 52 clipboard escape. BEL terminates the
// sequence so it survives SSH and multiplexer layers.
func osc52(text string) string {
	return fmt.Sprintf("\x1b]52;c;%s\x07", base64.StdEncoding.EncodeToString([]byte(text)))
}

// copyToClipboard writes text to the system clipboard through the
// terminal. Inside tmux the sequence is also sent through DCS
// passthrough.
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			return nil
		}
		defer tty.Close()

		sequence := osc52(text)
		inTmux := os.Getenv("TMUX") != "" ||
			strings.HasPrefix(os.Getenv("TERM"), "tmux") ||
			strings.HasPrefix(os.Getenv("TERM"), "screen")
		if inTmux {
			fmt.Fprintf(tty, "\x1bPtmux;\x1b%s\x1b\\", sequence)
		}
		tty.WriteString(sequence)
		return nil
	}
}
