package wayland

// #include <stdlib.h>
// #include <wayland-client.h>
// #include "protocols.h"
import "C"

import "unsafe"

const (
	CompositorInterface          = "wl_compositor"
	OutputInterface              = "wl_output"
	XdgOutputManagerInterface    = "zxdg_output_manager_v1"
	LayerShellInterface          = "zwlr_layer_shell_v1"
	ExportDmabufManagerInterface = "zwlr_export_dmabuf_manager_v1"
)

type RegistryGlobalEvent struct {
	Name      uint32
	Interface string
	Version   uint32
}

type RegistryGlobalRemoveEvent struct {
	Name uint32
}

type Registry struct {
	proxy
	globalHandler       func(RegistryGlobalEvent)
	globalRemoveHandler func(RegistryGlobalRemoveEvent)
}

func (r *Registry) SetGlobalHandler(f func(RegistryGlobalEvent)) {
	r.globalHandler = f
}

func (r *Registry) SetGlobalRemoveHandler(f func(RegistryGlobalRemoveEvent)) {
	r.globalRemoveHandler = f
}

func (r *Registry) dispatch(opcode uint32, args eventArgs) {
	switch opcode {
	case 0:
		if r.globalHandler != nil {
			r.globalHandler(RegistryGlobalEvent{
				Name:      args.Uint(0),
				Interface: args.String(1),
				Version:   args.Uint(2),
			})
		}
	case 1:
		if r.globalRemoveHandler != nil {
			r.globalRemoveHandler(RegistryGlobalRemoveEvent{Name: args.Uint(0)})
		}
	}
}

func (r *Registry) bind(name uint32, iface *C.struct_wl_interface, version uint32) *C.struct_wl_proxy {
	return (*C.struct_wl_proxy)(C.wl_registry_bind(
		(*C.struct_wl_registry)(unsafe.Pointer(r.hnd)),
		C.uint32_t(name), iface, C.uint32_t(version)))
}

func (r *Registry) BindCompositor(name, version uint32) *Compositor {
	c := &Compositor{}
	c.init(r.d, r.bind(name, &C.wl_compositor_interface, version))
	return c
}

func (r *Registry) BindOutput(name, version uint32) *Output {
	o := &Output{}
	o.init(r.d, r.bind(name, &C.wl_output_interface, version))
	r.d.add(o.hnd, o)
	return o
}

func (r *Registry) BindXdgOutputManager(name, version uint32) *XdgOutputManager {
	m := &XdgOutputManager{}
	m.init(r.d, r.bind(name, &C.zxdg_output_manager_v1_interface, version))
	return m
}

func (r *Registry) BindLayerShell(name, version uint32) *LayerShell {
	s := &LayerShell{}
	s.init(r.d, r.bind(name, &C.zwlr_layer_shell_v1_interface, version))
	return s
}

func (r *Registry) BindExportDmabufManager(name, version uint32) *ExportDmabufManager {
	m := &ExportDmabufManager{}
	m.init(r.d, r.bind(name, &C.zwlr_export_dmabuf_manager_v1_interface, version))
	return m
}

func (r *Registry) Destroy() {
	r.release()
}
