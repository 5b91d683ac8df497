// Package present tracks the size negotiation of a layer surface: the size
// the compositor asked for and the size the drawable currently has.
package present

import "sync"

type State struct {
	mu         sync.Mutex
	configured bool
	closed     bool
	serial     uint32
	pendingW   uint32
	pendingH   uint32
	appliedW   uint32
	appliedH   uint32
}

// NewState starts with the drawable already at width x height.
func NewState(width, height uint32) *State {
	return &State{
		pendingW: width,
		pendingH: height,
		appliedW: width,
		appliedH: height,
	}
}

// Configure records a configure event. A zero dimension leaves that axis at
// its previous size. The surface counts as configured either way.
func (s *State) Configure(serial, width, height uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.serial = serial
	if width > 0 {
		s.pendingW = width
	}
	if height > 0 {
		s.pendingH = height
	}
	s.configured = true
}

func (s *State) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configured
}

func (s *State) Serial() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serial
}

func (s *State) Pending() (uint32, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingW, s.pendingH
}

func (s *State) Applied() (uint32, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appliedW, s.appliedH
}

// ResizeIfNeeded promotes the pending size and reports whether it differed
// from the applied one. The caller resizes the drawable when changed is true.
func (s *State) ResizeIfNeeded() (width, height uint32, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingW == s.appliedW && s.pendingH == s.appliedH {
		return s.appliedW, s.appliedH, false
	}
	s.appliedW = s.pendingW
	s.appliedH = s.pendingH
	return s.appliedW, s.appliedH, true
}

// Close marks the surface as closed by the compositor.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *State) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
