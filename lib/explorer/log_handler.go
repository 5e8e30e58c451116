// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries a log record to the status line.
type logRecordMsg struct {
	summary string
	level   slog.Level
}

// StatusLogHandler is a slog.Handler that routes records at or above
// its level to the explorer's status line. Records arriving before
// [StatusLogHandler.SetProgram] are dropped. Handlers derived with
// WithAttrs and WithGroup share the program pointer.
type StatusLogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	group   string
}

// NewStatusLogHandler returns a handler delivering records at or
// above level.
func NewStatusLogHandler(level slog.Level) *StatusLogHandler {
	return &StatusLogHandler{level: level, program: &atomic.Pointer[tea.Program]{}}
}

// SetProgram sets the program that receives records.
func (handler *StatusLogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

func (handler *StatusLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

func (handler *StatusLogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	go program.Send(logRecordMsg{summary: handler.summarize(record), level: record.Level})
	return nil
}

// summarize formats a record as "message (key=value, ...)".
func (handler *StatusLogHandler) summarize(record slog.Record) string {
	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", handler.qualify(attr.Key), attr.Value))
		return true
	})
	if len(parts) == 0 {
		return record.Message
	}
	return record.Message + " (" + strings.Join(parts, ", ") + ")"
}

// qualify prefixes key with the handler's group path.
func (handler *StatusLogHandler) qualify(key string) string {
	if handler.group == "" {
		return key
	}
	return handler.group + "." + key
}

// WithAttrs stores attrs with keys qualified by the current group.
func (handler *StatusLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := slices.Clone(handler.attrs)
	for _, attr := range attrs {
		combined = append(combined, slog.Attr{Key: handler.qualify(attr.Key), Value: attr.Value})
	}
	return &StatusLogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   combined,
		group:   handler.group,
	}
}

func (handler *StatusLogHandler) WithGroup(name string) slog.Handler {
	group := name
	if handler.group != "" {
		group = handler.group + "." + name
	}
	return &StatusLogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   slices.Clone(handler.attrs),
		group:   group,
	}
}

// FanoutHandler sends each record to every handler enabled for its
// level.
type FanoutHandler []slog.Handler

func (handlers FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(FanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers FanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(FanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
