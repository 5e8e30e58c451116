// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package explorer

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestStatusLogHandlerSummary(t *testing.T) {
	handler := NewStatusLogHandler(slog.LevelWarn)
	derived := handler.WithAttrs([]slog.Attr{slog.String("source", "pyroscope")}).WithGroup("fetch").(*StatusLogHandler)

	record := slog.NewRecord(time.Now(), slog.LevelWarn, "panel fetch failed", 0)
	record.AddAttrs(slog.String("panel", "api"))

	if got, want := derived.summarize(record), "panel fetch failed (source=pyroscope, fetch.panel=api)"; got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
	plain := slog.NewRecord(time.Now(), slog.LevelWarn, "no attributes", 0)
	if got := handler.summarize(plain); got != "no attributes" {
		t.Errorf("summary = %q", got)
	}
}

func TestStatusLogHandlerLevels(t *testing.T) {
	handler := NewStatusLogHandler(slog.LevelWarn)
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error not enabled at warn level")
	}
	// No program yet: the record is dropped.
	record := slog.NewRecord(time.Now(), slog.LevelError, "dropped", 0)
	if err := handler.Handle(context.Background(), record); err != nil {
		t.Errorf("Handle without a program: %v", err)
	}
}

func TestFanoutHandlerEnabled(t *testing.T) {
	fanout := FanoutHandler{
		NewStatusLogHandler(slog.LevelError),
		slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}
	if !fanout.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info not enabled although one handler accepts it")
	}
	if fanout.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled although no handler accepts it")
	}
	logger := slog.New(fanout).With("session", "test")
	logger.Error("goes to both handlers")
}

type discard struct{}

func (discard) Write(data []byte) (int, error) { return len(data), nil }
