// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package explorer

import (
	"slices"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/explore-profiles/lib/repeater"
)

// FrameMode is what the active grid last asked to show.
type FrameMode int

const (
	FrameNone FrameMode = iota
	FrameLoading
	FrameEmpty
	FrameError
	FrameItems
)

// Frame is the latest grid render.
type Frame struct {
	Mode FrameMode
	// Message is set for FrameError.
	Message string
	// Panels and Layout are from the last FrameItems render. An error
	// frame keeps them.
	Panels []repeater.Panel
	Layout repeater.Layout
	// Generation increases with every render.
	Generation uint64
}

// frameMsg wakes the program after a render.
type frameMsg struct {
	generation uint64
}

// Renderer implements [repeater.Renderer] for the explorer. Safe for
// concurrent use; render calls never block.
type Renderer struct {
	mutex   sync.Mutex
	frame   Frame
	program atomic.Pointer[tea.Program]
}

// NewRenderer returns a renderer with an empty frame.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// SetProgram sets the program woken after each render. Renders before
// this call are recorded but wake nothing.
func (renderer *Renderer) SetProgram(program *tea.Program) {
	renderer.program.Store(program)
}

// Frame returns a copy of the latest frame.
func (renderer *Renderer) Frame() Frame {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	frame := renderer.frame
	frame.Panels = slices.Clone(frame.Panels)
	return frame
}

func (renderer *Renderer) RenderLoading() {
	renderer.update(func(frame *Frame) {
		frame.Mode = FrameLoading
		frame.Message = ""
	})
}

func (renderer *Renderer) RenderEmpty() {
	renderer.update(func(frame *Frame) {
		frame.Mode = FrameEmpty
		frame.Message = ""
		frame.Panels = nil
	})
}

func (renderer *Renderer) RenderError(message string) {
	renderer.update(func(frame *Frame) {
		frame.Mode = FrameError
		frame.Message = message
	})
}

func (renderer *Renderer) RenderItems(panels []repeater.Panel, layout repeater.Layout) {
	renderer.update(func(frame *Frame) {
		frame.Mode = FrameItems
		frame.Message = ""
		frame.Panels = slices.Clone(panels)
		frame.Layout = layout
	})
}

func (renderer *Renderer) update(change func(*Frame)) {
	renderer.mutex.Lock()
	change(&renderer.frame)
	renderer.frame.Generation++
	generation := renderer.frame.Generation
	renderer.mutex.Unlock()

	if program := renderer.program.Load(); program != nil {
		// Send blocks until the event loop reads; renders can arrive
		// from inside Update.
		go program.Send(frameMsg{generation: generation})
	}
}
