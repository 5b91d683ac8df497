package wayland

// #include <wayland-client.h>
// #include "protocols.h"
import "C"

import "errors"

type ExportDmabufManager struct {
	proxy
}

// CaptureOutput requests a single frame of output. The returned frame object
// receives the frame, object and then ready or cancel events.
func (m *ExportDmabufManager) CaptureOutput(overlayCursor bool, output *Output) (*ExportDmabufFrame, error) {
	var cursor int32
	if overlayCursor {
		cursor = 1
	}

	hnd := m.marshal(0, &C.zwlr_export_dmabuf_frame_v1_interface, 0,
		argument{},
		argInt(cursor),
		argObject(&output.proxy),
	)
	if hnd == nil {
		return nil, errors.New("zwlr_export_dmabuf_manager_v1.capture_output failed")
	}

	f := &ExportDmabufFrame{}
	f.init(m.d, hnd)
	m.d.add(f.hnd, f)
	return f, nil
}

func (m *ExportDmabufManager) Destroy() {
	m.destroy(1)
}

type ExportDmabufFrameFrameEvent struct {
	Width       uint32
	Height      uint32
	OffsetX     uint32
	OffsetY     uint32
	BufferFlags uint32
	Flags       uint32
	Format      uint32
	ModHigh     uint32
	ModLow      uint32
	NumObjects  uint32
}

func (e ExportDmabufFrameFrameEvent) Modifier() uint64 {
	return uint64(e.ModHigh)<<32 | uint64(e.ModLow)
}

// ExportDmabufFrameObjectEvent carries a descriptor the handler owns.
type ExportDmabufFrameObjectEvent struct {
	Index      uint32
	FD         int
	Size       uint32
	Offset     uint32
	Stride     uint32
	PlaneIndex uint32
}

type ExportDmabufFrameReadyEvent struct {
	TvSecHi uint32
	TvSecLo uint32
	TvNsec  uint32
}

type ExportDmabufFrameCancelEvent struct {
	Reason uint32
}

type ExportDmabufFrame struct {
	proxy
	frameHandler  func(ExportDmabufFrameFrameEvent)
	objectHandler func(ExportDmabufFrameObjectEvent)
	readyHandler  func(ExportDmabufFrameReadyEvent)
	cancelHandler func(ExportDmabufFrameCancelEvent)
}

func (f *ExportDmabufFrame) SetFrameHandler(h func(ExportDmabufFrameFrameEvent)) {
	f.frameHandler = h
}

func (f *ExportDmabufFrame) SetObjectHandler(h func(ExportDmabufFrameObjectEvent)) {
	f.objectHandler = h
}

func (f *ExportDmabufFrame) SetReadyHandler(h func(ExportDmabufFrameReadyEvent)) {
	f.readyHandler = h
}

func (f *ExportDmabufFrame) SetCancelHandler(h func(ExportDmabufFrameCancelEvent)) {
	f.cancelHandler = h
}

func (f *ExportDmabufFrame) dispatch(opcode uint32, args eventArgs) {
	switch opcode {
	case 0:
		if f.frameHandler != nil {
			f.frameHandler(ExportDmabufFrameFrameEvent{
				Width:       args.Uint(0),
				Height:      args.Uint(1),
				OffsetX:     args.Uint(2),
				OffsetY:     args.Uint(3),
				BufferFlags: args.Uint(4),
				Flags:       args.Uint(5),
				Format:      args.Uint(6),
				ModHigh:     args.Uint(7),
				ModLow:      args.Uint(8),
				NumObjects:  args.Uint(9),
			})
		}
	case 1:
		ev := ExportDmabufFrameObjectEvent{
			Index:      args.Uint(0),
			FD:         args.FD(1),
			Size:       args.Uint(2),
			Offset:     args.Uint(3),
			Stride:     args.Uint(4),
			PlaneIndex: args.Uint(5),
		}
		if f.objectHandler != nil {
			f.objectHandler(ev)
		} else {
			closeFD(ev.FD)
		}
	case 2:
		if f.readyHandler != nil {
			f.readyHandler(ExportDmabufFrameReadyEvent{
				TvSecHi: args.Uint(0),
				TvSecLo: args.Uint(1),
				TvNsec:  args.Uint(2),
			})
		}
	case 3:
		if f.cancelHandler != nil {
			f.cancelHandler(ExportDmabufFrameCancelEvent{Reason: args.Uint(0)})
		}
	}
}

func (f *ExportDmabufFrame) Destroy() {
	f.destroy(0)
}
