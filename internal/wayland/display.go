// Package wayland binds the part of libwayland-client the mirror needs: the
// core display objects plus the xdg-output, layer-shell and export-dmabuf
// extensions. Native pointers stay reachable so EGL can draw on the surfaces.
package wayland

// #cgo pkg-config: wayland-client
// #include <stdlib.h>
// #include <wayland-client.h>
// #include "protocols.h"
//
// int dispatcher(void *impl, void *target, uint32_t opcode, struct wl_message *msg, union wl_argument *args);
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/pescheckit/sway-mirror/internal/log"
	"golang.org/x/sys/unix"
)

// handler decodes the events of one proxy.
type handler interface {
	dispatch(opcode uint32, args eventArgs)
}

type Display struct {
	hnd *C.struct_wl_display

	mu      sync.Mutex
	proxies map[*C.struct_wl_proxy]handler
}

var (
	displaysMu sync.Mutex
	displays   = map[*C.struct_wl_display]*Display{}
)

// Connect opens the display named by name, or $WAYLAND_DISPLAY when empty.
func Connect(name string) (*Display, error) {
	var cname *C.char
	if name != "" {
		cname = C.CString(name)
		defer C.free(unsafe.Pointer(cname))
	}

	hnd, err := C.wl_display_connect(cname)
	if hnd == nil {
		if err == nil {
			err = errors.New("no compositor socket")
		}
		return nil, fmt.Errorf("failed to connect to wayland display: %w", err)
	}

	d := &Display{
		hnd:     hnd,
		proxies: make(map[*C.struct_wl_proxy]handler),
	}

	displaysMu.Lock()
	displays[hnd] = d
	displaysMu.Unlock()

	return d, nil
}

// Native returns the wl_display pointer for EGL.
func (d *Display) Native() unsafe.Pointer {
	return unsafe.Pointer(d.hnd)
}

func (d *Display) Registry() *Registry {
	r := &Registry{}
	r.init(d, (*C.struct_wl_proxy)(unsafe.Pointer(C.wl_display_get_registry(d.hnd))))
	d.add(r.hnd, r)
	return r
}

// Roundtrip blocks until the compositor processed every request sent so far
// and all resulting events were dispatched.
func (d *Display) Roundtrip() error {
	if C.wl_display_roundtrip(d.hnd) < 0 {
		return d.protocolError("roundtrip")
	}
	return nil
}

// DispatchPending handles events already read from the socket without
// blocking, then flushes outgoing requests.
func (d *Display) DispatchPending() error {
	if C.wl_display_dispatch_pending(d.hnd) < 0 {
		return d.protocolError("dispatch")
	}
	return d.Flush()
}

func (d *Display) Flush() error {
	n, err := C.wl_display_flush(d.hnd)
	if n < 0 && !errors.Is(err, unix.EAGAIN) {
		return d.protocolError("flush")
	}
	return nil
}

func (d *Display) protocolError(op string) error {
	code := C.wl_display_get_error(d.hnd)
	if code == 0 {
		return fmt.Errorf("wayland %s failed", op)
	}
	return fmt.Errorf("wayland %s failed: %w", op, unix.Errno(code))
}

func (d *Display) Disconnect() {
	if d.hnd == nil {
		return
	}
	displaysMu.Lock()
	delete(displays, d.hnd)
	displaysMu.Unlock()

	C.wl_display_disconnect(d.hnd)
	d.hnd = nil
}

func (d *Display) add(p *C.struct_wl_proxy, h handler) {
	d.mu.Lock()
	d.proxies[p] = h
	d.mu.Unlock()
	C.wl_proxy_add_dispatcher(p, (*[0]byte)(C.dispatcher), unsafe.Pointer(d.hnd), nil)
}

func (d *Display) forget(p *C.struct_wl_proxy) {
	d.mu.Lock()
	delete(d.proxies, p)
	d.mu.Unlock()
}

func (d *Display) lookup(p *C.struct_wl_proxy) handler {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.proxies[p]
}

//export dispatcher
func dispatcher(
	impl unsafe.Pointer,
	target unsafe.Pointer,
	opcode uint32,
	msg *C.struct_wl_message,
	args *C.union_wl_argument,
) C.int {
	displaysMu.Lock()
	d := displays[(*C.struct_wl_display)(impl)]
	displaysMu.Unlock()
	if d == nil {
		return 0
	}

	h := d.lookup((*C.struct_wl_proxy)(target))
	if h == nil {
		log.Debugf("Event %s for unknown proxy dropped", C.GoString(msg.name))
		return 0
	}
	h.dispatch(opcode, eventArgs{base: unsafe.Pointer(args)})
	return 0
}

// eventArgs indexes the wl_argument array of one event.
type eventArgs struct {
	base unsafe.Pointer
}

func (a eventArgs) at(i int) unsafe.Pointer {
	return unsafe.Add(a.base, i*int(unsafe.Sizeof(C.union_wl_argument{})))
}

func (a eventArgs) Uint(i int) uint32 { return *(*uint32)(a.at(i)) }
func (a eventArgs) Int(i int) int32   { return *(*int32)(a.at(i)) }
func (a eventArgs) FD(i int) int      { return int(*(*int32)(a.at(i))) }

func (a eventArgs) String(i int) string {
	s := *(**C.char)(a.at(i))
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

// proxy is the part shared by every bound object.
type proxy struct {
	d   *Display
	hnd *C.struct_wl_proxy
}

func (p *proxy) init(d *Display, hnd *C.struct_wl_proxy) {
	p.d = d
	p.hnd = hnd
}

func (p *proxy) Version() uint32 {
	return uint32(C.wl_proxy_get_version(p.hnd))
}

type argument = C.union_wl_argument

func argUint(v uint32) argument {
	var a argument
	*(*uint32)(unsafe.Pointer(&a)) = v
	return a
}

func argInt(v int32) argument {
	var a argument
	*(*int32)(unsafe.Pointer(&a)) = v
	return a
}

func argObject(p *proxy) argument {
	var a argument
	if p != nil {
		*(**C.struct_wl_proxy)(unsafe.Pointer(&a)) = p.hnd
	}
	return a
}

func argString(s *C.char) argument {
	var a argument
	*(**C.char)(unsafe.Pointer(&a)) = s
	return a
}

// marshal sends a request. iface is the interface of the new object for
// constructor requests and nil otherwise.
func (p *proxy) marshal(opcode uint32, iface *C.struct_wl_interface, flags uint32, args ...argument) *C.struct_wl_proxy {
	var ap *argument
	if len(args) > 0 {
		ap = &args[0]
	}
	return C.wl_proxy_marshal_array_flags(p.hnd, C.uint32_t(opcode), iface, C.wl_proxy_get_version(p.hnd), C.uint32_t(flags), ap)
}

// destroy sends a destructor request and forgets the proxy.
func (p *proxy) destroy(opcode uint32) {
	if p.hnd == nil {
		return
	}
	p.d.forget(p.hnd)
	p.marshal(opcode, nil, C.WL_MARSHAL_FLAG_DESTROY)
	p.hnd = nil
}

// release destroys the client side only, for objects without a destructor request.
func (p *proxy) release() {
	if p.hnd == nil {
		return
	}
	p.d.forget(p.hnd)
	C.wl_proxy_destroy(p.hnd)
	p.hnd = nil
}

func closeFD(fd int) {
	if fd >= 0 {
		unix.Close(fd)
	}
}
