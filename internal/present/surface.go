package present

import (
	"context"

	"github.com/pescheckit/sway-mirror/internal/log"
)

// Drawable is the GPU window attached to a surface.
type Drawable interface {
	Resize(width, height int)
	Destroy()
}

// Role is the shell object placing the surface on an output.
type Role interface {
	AckConfigure(serial uint32)
	Destroy()
}

// Base is the wl_surface everything else hangs off.
type Base interface {
	Commit()
	Destroy()
}

// Surface is one mirror destination: a base surface, its layer role and the
// drawable rendered into it.
type Surface[W Drawable] struct {
	name   string
	state  *State
	base   Base
	role   Role
	window W

	attached  bool
	destroyed bool
}

func NewSurface[W Drawable](name string, state *State, base Base, role Role) *Surface[W] {
	return &Surface[W]{name: name, state: state, base: base, role: role}
}

// Attach sets the drawable once it exists. It is destroyed with the surface.
func (s *Surface[W]) Attach(window W) {
	s.window = window
	s.attached = true
}

func (s *Surface[W]) Window() W {
	return s.window
}

// HandleConfigure acks serial before recording the new size.
func (s *Surface[W]) HandleConfigure(serial, width, height uint32) {
	s.role.AckConfigure(serial)
	s.state.Configure(serial, width, height)
	log.Debug("Layer surface configured", "output", s.name, "width", width, "height", height)
}

func (s *Surface[W]) HandleClosed() {
	log.Warn("Layer surface closed by compositor", "output", s.name)
	s.state.Close()
}

func (s *Surface[W]) Name() string {
	return s.name
}

func (s *Surface[W]) Active() bool {
	return !s.destroyed && !s.state.Closed()
}

// settled is true once the compositor configured or closed the surface.
func (s *Surface[W]) settled() bool {
	return s.state.Configured() || s.state.Closed()
}

func (s *Surface[W]) ResizeIfNeeded() bool {
	w, h, changed := s.state.ResizeIfNeeded()
	if changed && s.attached {
		s.window.Resize(int(w), int(h))
	}
	return changed
}

func (s *Surface[W]) Commit() {
	if !s.destroyed {
		s.base.Commit()
	}
}

// Destroy tears down the drawable, then the role, then the base surface. The
// caller flushes the requests to the compositor afterwards.
func (s *Surface[W]) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	if s.attached {
		s.window.Destroy()
		s.attached = false
	}
	s.role.Destroy()
	s.base.Destroy()
}

// WaitConfigured calls roundtrip until every surface was configured or
// closed, then commits each surface once.
func WaitConfigured[W Drawable](ctx context.Context, surfaces []*Surface[W], roundtrip func() error) error {
	for !allSettled(surfaces) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := roundtrip(); err != nil {
			return err
		}
	}
	for _, s := range surfaces {
		s.Commit()
	}
	return nil
}

func allSettled[W Drawable](surfaces []*Surface[W]) bool {
	for _, s := range surfaces {
		if !s.settled() {
			return false
		}
	}
	return true
}
