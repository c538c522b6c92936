// Package focus tracks whether the host has input focus and runs periodic
// work only while it does.
package focus

import "sync/atomic"

// Source reports whether the host process currently has user focus.
type Source interface {
	Focused() bool
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() bool

func (f SourceFunc) Focused() bool {
	return f()
}

// State is a focus flag updated by whatever owns the window or terminal.
type State struct {
	focused atomic.Bool
}

// NewState returns a State starting at the given focus value.
func NewState(focused bool) *State {
	s := &State{}
	s.focused.Store(focused)
	return s
}

// Set records a focus or blur report.
func (s *State) Set(focused bool) {
	s.focused.Store(focused)
}

func (s *State) Focused() bool {
	return s.focused.Load()
}
