package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pescheckit/sway-mirror/internal/errdefs"
	"github.com/pescheckit/sway-mirror/internal/present"
	"github.com/pescheckit/sway-mirror/internal/render"
	"github.com/pescheckit/sway-mirror/internal/wayland"
)

const layerNamespace = "sway-mirror"

// Surface is a fullscreen overlay on one destination output with an EGL
// window attached.
type Surface = present.Surface[*render.Window]

func (s *Session) newSurface(o Output) (*Surface, error) {
	if s.compositor == nil {
		return nil, &errdefs.MissingGlobalError{Interface: wayland.CompositorInterface}
	}
	if s.layerShell == nil {
		return nil, &errdefs.MissingGlobalError{Interface: wayland.LayerShellInterface}
	}
	if s.gpu == nil {
		return nil, errors.New("GPU context not initialized")
	}

	wlSurface, err := s.compositor.CreateSurface()
	if err != nil {
		return nil, err
	}

	layer, err := s.layerShell.GetLayerSurface(wlSurface, o.Handle, wayland.LayerOverlay, layerNamespace)
	if err != nil {
		wlSurface.Destroy()
		return nil, err
	}

	width, height := uint32(max(o.Width, 1)), uint32(max(o.Height, 1))
	surf := present.NewSurface[*render.Window](o.Name, present.NewState(width, height), wlSurface, layer)

	layer.SetConfigureHandler(func(e wayland.LayerSurfaceConfigureEvent) {
		surf.HandleConfigure(e.Serial, e.Width, e.Height)
	})
	layer.SetClosedHandler(surf.HandleClosed)

	layer.SetAnchor(wayland.AnchorAll)
	layer.SetExclusiveZone(-1)
	layer.SetKeyboardInteractivity(wayland.KeyboardInteractivityNone)
	wlSurface.Commit()

	window, err := s.gpu.NewWindow(wlSurface.Native(), int(width), int(height))
	if err != nil {
		surf.Destroy()
		return nil, err
	}
	surf.Attach(window)

	return surf, nil
}

// CreateSurfaces puts an overlay on every target. Any failure tears down the
// surfaces created so far.
func (s *Session) CreateSurfaces(targets []Output) error {
	for _, o := range targets {
		surf, err := s.newSurface(o)
		if err != nil {
			s.DestroySurfaces()
			return fmt.Errorf("create surface on %s: %w", o.Name, err)
		}
		s.surfaces = append(s.surfaces, surf)
	}
	return nil
}

// WaitConfigured roundtrips until every surface received its first configure
// or was closed, then commits each surface once.
func (s *Session) WaitConfigured(ctx context.Context) error {
	return present.WaitConfigured(ctx, s.surfaces, s.Roundtrip)
}

// DestroySurfaces removes every overlay. The caller roundtrips afterwards so
// the compositor drops them before anything else happens.
func (s *Session) DestroySurfaces() {
	for _, surf := range s.surfaces {
		surf.Destroy()
	}
	s.surfaces = nil
}
