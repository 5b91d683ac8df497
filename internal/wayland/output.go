package wayland

// #include <wayland-client.h>
// #include "protocols.h"
import "C"

type OutputModeEvent struct {
	Flags   uint32
	Width   int32
	Height  int32
	Refresh int32
}

type OutputScaleEvent struct {
	Factor int32
}

type OutputNameEvent struct {
	Name string
}

type OutputDescriptionEvent struct {
	Description string
}

type Output struct {
	proxy
	modeHandler        func(OutputModeEvent)
	scaleHandler       func(OutputScaleEvent)
	nameHandler        func(OutputNameEvent)
	descriptionHandler func(OutputDescriptionEvent)
}

func (o *Output) SetModeHandler(f func(OutputModeEvent))               { o.modeHandler = f }
func (o *Output) SetScaleHandler(f func(OutputScaleEvent))             { o.scaleHandler = f }
func (o *Output) SetNameHandler(f func(OutputNameEvent))               { o.nameHandler = f }
func (o *Output) SetDescriptionHandler(f func(OutputDescriptionEvent)) { o.descriptionHandler = f }

// geometry (0) and done (2) are not needed and fall through.
func (o *Output) dispatch(opcode uint32, args eventArgs) {
	switch opcode {
	case 1:
		if o.modeHandler != nil {
			o.modeHandler(OutputModeEvent{
				Flags:   args.Uint(0),
				Width:   args.Int(1),
				Height:  args.Int(2),
				Refresh: args.Int(3),
			})
		}
	case 3:
		if o.scaleHandler != nil {
			o.scaleHandler(OutputScaleEvent{Factor: args.Int(0)})
		}
	case 4:
		if o.nameHandler != nil {
			o.nameHandler(OutputNameEvent{Name: args.String(0)})
		}
	case 5:
		if o.descriptionHandler != nil {
			o.descriptionHandler(OutputDescriptionEvent{Description: args.String(0)})
		}
	}
}

// Release uses the release request on v3+ outputs and drops the proxy otherwise.
func (o *Output) Release() {
	if o.hnd == nil {
		return
	}
	if o.Version() >= 3 {
		o.destroy(0)
		return
	}
	o.release()
}

type XdgOutputManager struct {
	proxy
}

func (m *XdgOutputManager) GetXdgOutput(output *Output) *XdgOutput {
	x := &XdgOutput{}
	x.init(m.d, m.marshal(1, &C.zxdg_output_v1_interface, 0, argument{}, argObject(&output.proxy)))
	m.d.add(x.hnd, x)
	return x
}

func (m *XdgOutputManager) Destroy() {
	m.destroy(0)
}

type XdgOutputLogicalPositionEvent struct {
	X, Y int32
}

type XdgOutputLogicalSizeEvent struct {
	Width, Height int32
}

type XdgOutputNameEvent struct {
	Name string
}

type XdgOutputDescriptionEvent struct {
	Description string
}

type XdgOutput struct {
	proxy
	logicalPositionHandler func(XdgOutputLogicalPositionEvent)
	logicalSizeHandler     func(XdgOutputLogicalSizeEvent)
	nameHandler            func(XdgOutputNameEvent)
	descriptionHandler     func(XdgOutputDescriptionEvent)
}

func (x *XdgOutput) SetLogicalPositionHandler(f func(XdgOutputLogicalPositionEvent)) {
	x.logicalPositionHandler = f
}

func (x *XdgOutput) SetLogicalSizeHandler(f func(XdgOutputLogicalSizeEvent)) {
	x.logicalSizeHandler = f
}

func (x *XdgOutput) SetNameHandler(f func(XdgOutputNameEvent)) {
	x.nameHandler = f
}

func (x *XdgOutput) SetDescriptionHandler(f func(XdgOutputDescriptionEvent)) {
	x.descriptionHandler = f
}

func (x *XdgOutput) dispatch(opcode uint32, args eventArgs) {
	switch opcode {
	case 0:
		if x.logicalPositionHandler != nil {
			x.logicalPositionHandler(XdgOutputLogicalPositionEvent{X: args.Int(0), Y: args.Int(1)})
		}
	case 1:
		if x.logicalSizeHandler != nil {
			x.logicalSizeHandler(XdgOutputLogicalSizeEvent{Width: args.Int(0), Height: args.Int(1)})
		}
	case 3:
		if x.nameHandler != nil {
			x.nameHandler(XdgOutputNameEvent{Name: args.String(0)})
		}
	case 4:
		if x.descriptionHandler != nil {
			x.descriptionHandler(XdgOutputDescriptionEvent{Description: args.String(0)})
		}
	}
}

func (x *XdgOutput) Destroy() {
	x.destroy(0)
}
