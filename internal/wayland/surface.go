package wayland

// #include <stdlib.h>
// #include <wayland-client.h>
// #include "protocols.h"
import "C"

import (
	"errors"
	"unsafe"
)

type Compositor struct {
	proxy
}

func (c *Compositor) CreateSurface() (*Surface, error) {
	hnd := C.wl_compositor_create_surface((*C.struct_wl_compositor)(unsafe.Pointer(c.hnd)))
	if hnd == nil {
		return nil, errors.New("wl_compositor.create_surface failed")
	}
	s := &Surface{}
	s.init(c.d, (*C.struct_wl_proxy)(unsafe.Pointer(hnd)))
	return s, nil
}

func (c *Compositor) Destroy() {
	c.release()
}

// Surface events (enter, leave, preferred scale) are not subscribed to.
type Surface struct {
	proxy
}

// Native returns the wl_surface pointer for wl_egl_window_create.
func (s *Surface) Native() unsafe.Pointer {
	return unsafe.Pointer(s.hnd)
}

func (s *Surface) Commit() {
	C.wl_surface_commit((*C.struct_wl_surface)(unsafe.Pointer(s.hnd)))
}

func (s *Surface) Destroy() {
	s.destroy(0)
}

type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

const (
	AnchorTop    uint32 = 1
	AnchorBottom uint32 = 2
	AnchorLeft   uint32 = 4
	AnchorRight  uint32 = 8

	AnchorAll = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight
)

const (
	KeyboardInteractivityNone      uint32 = 0
	KeyboardInteractivityExclusive uint32 = 1
	KeyboardInteractivityOnDemand  uint32 = 2
)

type LayerShell struct {
	proxy
}

// GetLayerSurface assigns the layer surface role to surface on output.
func (l *LayerShell) GetLayerSurface(surface *Surface, output *Output, layer Layer, namespace string) (*LayerSurface, error) {
	cns := C.CString(namespace)
	defer C.free(unsafe.Pointer(cns))

	var out *proxy
	if output != nil {
		out = &output.proxy
	}

	hnd := l.marshal(0, &C.zwlr_layer_surface_v1_interface, 0,
		argument{},
		argObject(&surface.proxy),
		argObject(out),
		argUint(uint32(layer)),
		argString(cns),
	)
	if hnd == nil {
		return nil, errors.New("zwlr_layer_shell_v1.get_layer_surface failed")
	}

	ls := &LayerSurface{}
	ls.init(l.d, hnd)
	l.d.add(ls.hnd, ls)
	return ls, nil
}

func (l *LayerShell) Destroy() {
	if l.hnd != nil && l.Version() >= 3 {
		l.destroy(1)
		return
	}
	l.release()
}

type LayerSurfaceConfigureEvent struct {
	Serial uint32
	Width  uint32
	Height uint32
}

type LayerSurface struct {
	proxy
	configureHandler func(LayerSurfaceConfigureEvent)
	closedHandler    func()
}

func (ls *LayerSurface) SetConfigureHandler(f func(LayerSurfaceConfigureEvent)) {
	ls.configureHandler = f
}

func (ls *LayerSurface) SetClosedHandler(f func()) {
	ls.closedHandler = f
}

func (ls *LayerSurface) dispatch(opcode uint32, args eventArgs) {
	switch opcode {
	case 0:
		if ls.configureHandler != nil {
			ls.configureHandler(LayerSurfaceConfigureEvent{
				Serial: args.Uint(0),
				Width:  args.Uint(1),
				Height: args.Uint(2),
			})
		}
	case 1:
		if ls.closedHandler != nil {
			ls.closedHandler()
		}
	}
}

func (ls *LayerSurface) SetAnchor(anchor uint32) {
	ls.marshal(1, nil, 0, argUint(anchor))
}

func (ls *LayerSurface) SetExclusiveZone(zone int32) {
	ls.marshal(2, nil, 0, argInt(zone))
}

func (ls *LayerSurface) SetKeyboardInteractivity(mode uint32) {
	ls.marshal(4, nil, 0, argUint(mode))
}

func (ls *LayerSurface) AckConfigure(serial uint32) {
	ls.marshal(6, nil, 0, argUint(serial))
}

func (ls *LayerSurface) Destroy() {
	ls.destroy(7)
}
