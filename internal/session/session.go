// Package session owns the Wayland connection, the bound globals, the output
// registry, the GPU context and the mirror surfaces, and wires them into the
// capture and present loop.
package session

import (
	"fmt"
	"sync"

	"github.com/pescheckit/sway-mirror/internal/capture"
	"github.com/pescheckit/sway-mirror/internal/errdefs"
	"github.com/pescheckit/sway-mirror/internal/log"
	"github.com/pescheckit/sway-mirror/internal/mirror"
	"github.com/pescheckit/sway-mirror/internal/outputs"
	"github.com/pescheckit/sway-mirror/internal/render"
	"github.com/pescheckit/sway-mirror/internal/scaling"
	"github.com/pescheckit/sway-mirror/internal/wayland"
)

const (
	compositorVersion       = 5
	layerShellVersion       = 4
	exportDmabufVersion     = 1
	xdgOutputManagerVersion = 3
	outputVersion           = 4
)

type Output = outputs.Output[*wayland.Output]

var (
	_ mirror.Pipeline = (*Session)(nil)
	_ mirror.Target   = (*Surface)(nil)
)

type Session struct {
	display  *wayland.Display
	registry *wayland.Registry

	compositor       *wayland.Compositor
	layerShell       *wayland.LayerShell
	exportManager    *wayland.ExportDmabufManager
	xdgOutputManager *wayland.XdgOutputManager

	outputs      *outputs.Registry[*wayland.Output]
	xdgOutputsMu sync.Mutex
	xdgOutputs   map[uint32]*wayland.XdgOutput

	capture    *capture.Session
	requester  *capture.Requester
	source     *Output
	sourceLost bool

	gpu      *render.Context
	surfaces []*Surface
}

// Connect opens the display, binds the globals and collects the initial
// state of every output, including the xdg-output properties.
func Connect() (*Session, error) {
	display, err := wayland.Connect("")
	if err != nil {
		return nil, err
	}

	s := &Session{
		display:    display,
		outputs:    outputs.NewRegistry[*wayland.Output](),
		xdgOutputs: make(map[uint32]*wayland.XdgOutput),
	}
	s.capture = capture.NewSession()
	s.requester = capture.NewRequester(s.capture)
	s.setupRegistry()

	if err := s.Roundtrip(); err != nil {
		s.Close()
		return nil, err
	}
	s.RequestXdgOutputs()
	if err := s.Roundtrip(); err != nil {
		s.Close()
		return nil, err
	}

	log.Debug("Connected", "outputs", s.outputs.Len(),
		"layer_shell", s.layerShell != nil,
		"export_dmabuf", s.exportManager != nil,
		"xdg_output", s.xdgOutputManager != nil)
	return s, nil
}

func (s *Session) setupRegistry() {
	s.registry = s.display.Registry()

	s.registry.SetGlobalHandler(func(e wayland.RegistryGlobalEvent) {
		s.handleGlobal(e)
	})

	s.registry.SetGlobalRemoveHandler(func(e wayland.RegistryGlobalRemoveEvent) {
		if s.source != nil && s.source.ID == e.Name {
			log.Warn("Source output removed", "output", s.source.Name)
			s.sourceLost = true
		}
		if s.outputs.Remove(e.Name) {
			log.Debug("Output removed", "id", e.Name)
		}
	})
}

func (s *Session) handleGlobal(e wayland.RegistryGlobalEvent) {
	switch e.Interface {
	case wayland.CompositorInterface:
		s.compositor = s.registry.BindCompositor(e.Name, min(e.Version, compositorVersion))

	case wayland.LayerShellInterface:
		s.layerShell = s.registry.BindLayerShell(e.Name, min(e.Version, layerShellVersion))

	case wayland.ExportDmabufManagerInterface:
		s.exportManager = s.registry.BindExportDmabufManager(e.Name, min(e.Version, exportDmabufVersion))

	case wayland.XdgOutputManagerInterface:
		s.xdgOutputManager = s.registry.BindXdgOutputManager(e.Name, min(e.Version, xdgOutputManagerVersion))

	case wayland.OutputInterface:
		output := s.registry.BindOutput(e.Name, min(e.Version, outputVersion))
		s.outputs.Add(e.Name, output)
		s.setupOutputHandlers(e.Name, output)
		if s.xdgOutputManager != nil {
			s.requestXdgOutput(e.Name, output)
		}
	}
}

func (s *Session) setupOutputHandlers(id uint32, output *wayland.Output) {
	output.SetModeHandler(func(e wayland.OutputModeEvent) {
		s.outputs.HandleMode(id, e.Flags, e.Width, e.Height, e.Refresh)
	})

	output.SetScaleHandler(func(e wayland.OutputScaleEvent) {
		s.outputs.HandleScale(id, e.Factor)
	})

	output.SetNameHandler(func(e wayland.OutputNameEvent) {
		s.outputs.HandleName(id, e.Name)
	})

	output.SetDescriptionHandler(func(e wayland.OutputDescriptionEvent) {
		s.outputs.HandleDescription(id, e.Description)
	})
}

// RequestXdgOutputs creates an xdg-output object for every known output that
// does not have one yet. The properties arrive with the next roundtrip.
func (s *Session) RequestXdgOutputs() {
	if s.xdgOutputManager == nil {
		log.Debug("xdg-output manager not available, using wl_output names")
		return
	}
	for _, o := range s.outputs.List() {
		s.requestXdgOutput(o.ID, o.Handle)
	}
}

func (s *Session) requestXdgOutput(id uint32, output *wayland.Output) {
	s.xdgOutputsMu.Lock()
	defer s.xdgOutputsMu.Unlock()

	if _, ok := s.xdgOutputs[id]; ok {
		return
	}

	xdg := s.xdgOutputManager.GetXdgOutput(output)
	xdg.SetLogicalPositionHandler(func(e wayland.XdgOutputLogicalPositionEvent) {
		s.outputs.HandleLogicalPosition(id, e.X, e.Y)
	})
	xdg.SetLogicalSizeHandler(func(e wayland.XdgOutputLogicalSizeEvent) {
		s.outputs.HandleLogicalSize(id, e.Width, e.Height)
	})
	xdg.SetNameHandler(func(e wayland.XdgOutputNameEvent) {
		s.outputs.HandleXdgName(id, e.Name)
	})
	xdg.SetDescriptionHandler(func(e wayland.XdgOutputDescriptionEvent) {
		s.outputs.HandleXdgDescription(id, e.Description)
	})
	s.xdgOutputs[id] = xdg
}

func (s *Session) Outputs() *outputs.Registry[*wayland.Output] {
	return s.outputs
}

func (s *Session) Roundtrip() error {
	return s.display.Roundtrip()
}

func (s *Session) Dispatch() error {
	return s.display.DispatchPending()
}

// SetSource selects the output to capture.
func (s *Session) SetSource(o Output) {
	s.source = &o
	s.sourceLost = false
}

// RequestCapture starts capturing the next frame of the source output.
func (s *Session) RequestCapture(includeCursor bool) error {
	if s.exportManager == nil {
		return &errdefs.MissingGlobalError{Interface: wayland.ExportDmabufManagerInterface}
	}
	if s.source == nil {
		return errdefs.ErrOutputNotFound
	}
	if s.sourceLost {
		return errdefs.ErrSourceLost
	}

	return s.requester.Request(func() (capture.Source, error) {
		frame, err := s.exportManager.CaptureOutput(includeCursor, s.source.Handle)
		if err != nil {
			return nil, err
		}
		return exportFrame{frame}, nil
	})
}

// exportFrame presents a zwlr_export_dmabuf_frame_v1 as a capture source.
type exportFrame struct {
	frame *wayland.ExportDmabufFrame
}

func (f exportFrame) SetFrameHandler(h func(capture.FrameInfo)) {
	f.frame.SetFrameHandler(func(e wayland.ExportDmabufFrameFrameEvent) {
		h(capture.FrameInfo{
			Width:      e.Width,
			Height:     e.Height,
			Format:     e.Format,
			Modifier:   e.Modifier(),
			NumObjects: e.NumObjects,
			Flags:      e.Flags,
		})
	})
}

func (f exportFrame) SetObjectHandler(h func(capture.Object)) {
	f.frame.SetObjectHandler(func(e wayland.ExportDmabufFrameObjectEvent) {
		h(capture.Object{
			Index:      e.Index,
			FD:         e.FD,
			Size:       e.Size,
			Offset:     e.Offset,
			Stride:     e.Stride,
			PlaneIndex: e.PlaneIndex,
		})
	})
}

func (f exportFrame) SetReadyHandler(h func()) {
	f.frame.SetReadyHandler(func(wayland.ExportDmabufFrameReadyEvent) { h() })
}

func (f exportFrame) SetCancelHandler(h func(capture.CancelReason)) {
	f.frame.SetCancelHandler(func(e wayland.ExportDmabufFrameCancelEvent) {
		h(capture.CancelReason(e.Reason))
	})
}

func (f exportFrame) Destroy() {
	f.frame.Destroy()
}

func (s *Session) CaptureDone() bool {
	return s.capture.IsDone()
}

func (s *Session) TakeFrame() *capture.Frame {
	return s.capture.TakeFrame()
}

// InitGPU creates the EGL context on this connection and compiles the
// shaders. It must run before CreateSurfaces.
func (s *Session) InitGPU() error {
	gpu, err := render.NewContext(s.display.Native())
	if err != nil {
		return fmt.Errorf("initialize EGL: %w", err)
	}
	if err := gpu.InitGL(); err != nil {
		gpu.Close()
		return fmt.Errorf("initialize GLES: %w", err)
	}
	s.gpu = gpu
	return nil
}

func (s *Session) Surfaces() []mirror.Target {
	targets := make([]mirror.Target, 0, len(s.surfaces))
	for _, surf := range s.surfaces {
		targets = append(targets, surf)
	}
	return targets
}

func (s *Session) Render(frame *capture.Frame, target mirror.Target, mode scaling.Mode) error {
	surf, ok := target.(*Surface)
	if !ok {
		return fmt.Errorf("unknown target type %T", target)
	}
	return s.gpu.Render(frame, surf.Window(), mode)
}

// Close releases everything in reverse order of creation.
func (s *Session) Close() {
	s.DestroySurfaces()
	s.requester.Close()

	if s.gpu != nil {
		s.gpu.Close()
		s.gpu = nil
	}

	s.xdgOutputsMu.Lock()
	for id, xdg := range s.xdgOutputs {
		xdg.Destroy()
		delete(s.xdgOutputs, id)
	}
	s.xdgOutputsMu.Unlock()

	for _, o := range s.outputs.List() {
		o.Handle.Release()
	}
	if s.exportManager != nil {
		s.exportManager.Destroy()
		s.exportManager = nil
	}
	if s.xdgOutputManager != nil {
		s.xdgOutputManager.Destroy()
		s.xdgOutputManager = nil
	}
	if s.layerShell != nil {
		s.layerShell.Destroy()
		s.layerShell = nil
	}
	if s.compositor != nil {
		s.compositor.Destroy()
		s.compositor = nil
	}
	if s.registry != nil {
		s.registry.Destroy()
		s.registry = nil
	}

	if s.display != nil {
		if err := s.display.Flush(); err != nil {
			log.Debug("Final flush failed", "err", err)
		}
		s.display.Disconnect()
		s.display = nil
	}
}
