// Package render imports dma-buf frames as EGL images and draws them into
// EGL window surfaces with GLES. Nothing is copied through host memory.
package render

/*
#cgo pkg-config: wayland-egl egl
#define EGL_NO_X11
#include <stdlib.h>
#include <EGL/egl.h>
#include <EGL/eglext.h>
#include <wayland-egl.h>

typedef void (*image_target_texture_fn)(unsigned int target, void *image);

static EGLImageKHR create_dmabuf_image(void *fn, EGLDisplay dpy, const EGLint *attribs) {
	return ((PFNEGLCREATEIMAGEKHRPROC)fn)(dpy, EGL_NO_CONTEXT, EGL_LINUX_DMA_BUF_EXT, (EGLClientBuffer)NULL, attribs);
}

static EGLBoolean destroy_image(void *fn, EGLDisplay dpy, EGLImageKHR image) {
	return ((PFNEGLDESTROYIMAGEKHRPROC)fn)(dpy, image);
}

static void image_target_texture(void *fn, unsigned int target, EGLImageKHR image) {
	((image_target_texture_fn)fn)(target, image);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/pescheckit/sway-mirror/internal/capture"
	"github.com/pescheckit/sway-mirror/internal/errdefs"
	"github.com/pescheckit/sway-mirror/internal/log"
)

// eglError names the last EGL error for messages.
func eglError() string {
	code := C.eglGetError()
	switch code {
	case C.EGL_SUCCESS:
		return "EGL_SUCCESS"
	case C.EGL_BAD_ACCESS:
		return "EGL_BAD_ACCESS"
	case C.EGL_BAD_ALLOC:
		return "EGL_BAD_ALLOC"
	case C.EGL_BAD_ATTRIBUTE:
		return "EGL_BAD_ATTRIBUTE"
	case C.EGL_BAD_CONTEXT:
		return "EGL_BAD_CONTEXT"
	case C.EGL_BAD_DISPLAY:
		return "EGL_BAD_DISPLAY"
	case C.EGL_BAD_MATCH:
		return "EGL_BAD_MATCH"
	case C.EGL_BAD_PARAMETER:
		return "EGL_BAD_PARAMETER"
	case C.EGL_BAD_SURFACE:
		return "EGL_BAD_SURFACE"
	default:
		return fmt.Sprintf("EGL error 0x%04x", int(code))
	}
}

func procAddress(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return unsafe.Pointer(C.eglGetProcAddress(cname))
}

type eglProcs struct {
	createImage        unsafe.Pointer
	destroyImage       unsafe.Pointer
	imageTargetTexture unsafe.Pointer
}

func loadProcs() (eglProcs, error) {
	p := eglProcs{
		createImage:        procAddress("eglCreateImageKHR"),
		destroyImage:       procAddress("eglDestroyImageKHR"),
		imageTargetTexture: procAddress("glEGLImageTargetTexture2DOES"),
	}
	switch {
	case p.createImage == nil:
		return p, errors.New("eglCreateImageKHR not available")
	case p.destroyImage == nil:
		return p, errors.New("eglDestroyImageKHR not available")
	case p.imageTargetTexture == nil:
		return p, errors.New("glEGLImageTargetTexture2DOES not available")
	}
	return p, nil
}

type eglState struct {
	display C.EGLDisplay
	config  C.EGLConfig
	context C.EGLContext
	procs   eglProcs
}

// glesVersions are tried in order. The shaders are GLSL ES 1.00 so a 2.0
// context is enough when 3.0 is unavailable.
var glesVersions = []int32{3, 2}

// glesAttribs returns the config and context attribute lists for a GLES
// major version. The config asks for the matching renderable bit.
func glesAttribs(major int32) (cfg, ctx []int32) {
	renderable := int32(C.EGL_OPENGL_ES2_BIT)
	if major >= 3 {
		renderable = int32(C.EGL_OPENGL_ES3_BIT)
	}
	cfg = []int32{
		C.EGL_SURFACE_TYPE, C.EGL_WINDOW_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_RENDERABLE_TYPE, renderable,
		C.EGL_NONE,
	}
	ctx = []int32{
		C.EGL_CONTEXT_MAJOR_VERSION, major,
		C.EGL_CONTEXT_MINOR_VERSION, 0,
		C.EGL_NONE,
	}
	return cfg, ctx
}

// eglInts views an attribute list as the EGLint array EGL expects. EGLint is
// a 32-bit integer on every platform khrplatform.h supports.
func eglInts(attribs []int32) *C.EGLint {
	return (*C.EGLint)(unsafe.Pointer(&attribs[0]))
}

func newEGL(nativeDisplay unsafe.Pointer) (*eglState, error) {
	dpy := C.eglGetDisplay(C.EGLNativeDisplayType(nativeDisplay))
	if dpy == 0 {
		return nil, errors.New("failed to get EGL display")
	}

	var major, minor C.EGLint
	if C.eglInitialize(dpy, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("failed to initialize EGL: %s", eglError())
	}
	log.Debugf("EGL %d.%d initialized", int(major), int(minor))

	if C.eglBindAPI(C.EGL_OPENGL_ES_API) == C.EGL_FALSE {
		C.eglTerminate(dpy)
		return nil, fmt.Errorf("failed to bind GLES API: %s", eglError())
	}

	var config C.EGLConfig
	var ctx C.EGLContext
	for _, version := range glesVersions {
		cfgAttribs, ctxAttribs := glesAttribs(version)
		var numConfigs C.EGLint
		if C.eglChooseConfig(dpy, eglInts(cfgAttribs), &config, 1, &numConfigs) == C.EGL_FALSE || numConfigs == 0 {
			log.Debugf("No EGL config for GLES %d: %s", version, eglError())
			continue
		}
		ctx = C.eglCreateContext(dpy, config, nil, eglInts(ctxAttribs))
		if ctx != nil {
			log.Debugf("Created GLES %d context", version)
			break
		}
		log.Debugf("Failed to create GLES %d context: %s", version, eglError())
	}
	if ctx == nil {
		C.eglTerminate(dpy)
		return nil, errors.New("failed to create EGL context for GLES 3 or 2")
	}

	procs, err := loadProcs()
	if err != nil {
		C.eglDestroyContext(dpy, ctx)
		C.eglTerminate(dpy)
		return nil, err
	}

	return &eglState{display: dpy, config: config, context: ctx, procs: procs}, nil
}

func (e *eglState) makeCurrent(surface C.EGLSurface) error {
	if C.eglMakeCurrent(e.display, surface, surface, e.context) == C.EGL_FALSE {
		return fmt.Errorf("eglMakeCurrent failed: %s", eglError())
	}
	return nil
}

func (e *eglState) makeSurfaceless() error {
	return e.makeCurrent(nil)
}

// importPlane wraps plane 0 of frame in an EGLImage.
func (e *eglState) importPlane(frame *capture.Frame) (C.EGLImageKHR, error) {
	plane := frame.Planes[0]
	if !plane.Valid() {
		return nil, &errdefs.ImportError{Format: capture.FourCC(frame.Format), Err: errors.New("plane 0 missing")}
	}

	attribs := []C.EGLint{
		C.EGL_WIDTH, C.EGLint(frame.Width),
		C.EGL_HEIGHT, C.EGLint(frame.Height),
		C.EGL_LINUX_DRM_FOURCC_EXT, C.EGLint(frame.Format),
		C.EGL_DMA_BUF_PLANE0_FD_EXT, C.EGLint(plane.FD),
		C.EGL_DMA_BUF_PLANE0_OFFSET_EXT, C.EGLint(plane.Offset),
		C.EGL_DMA_BUF_PLANE0_PITCH_EXT, C.EGLint(plane.Stride),
		C.EGL_NONE,
	}

	image := C.create_dmabuf_image(e.procs.createImage, e.display, &attribs[0])
	if image == nil {
		return nil, &errdefs.ImportError{Format: capture.FourCC(frame.Format), Err: errors.New(eglError())}
	}
	return image, nil
}

func (e *eglState) bindImage(target uint32, image C.EGLImageKHR) {
	C.image_target_texture(e.procs.imageTargetTexture, C.uint(target), image)
}

func (e *eglState) destroyImage(image C.EGLImageKHR) {
	C.destroy_image(e.procs.destroyImage, e.display, image)
}

func (e *eglState) close() {
	C.eglMakeCurrent(e.display, nil, nil, nil)
	if e.context != nil {
		C.eglDestroyContext(e.display, e.context)
		e.context = nil
	}
	C.eglTerminate(e.display)
}

// Window is an EGL window surface on a Wayland surface.
type Window struct {
	e       *eglState
	native  *C.struct_wl_egl_window
	surface C.EGLSurface
	width   int
	height  int
}

func (e *eglState) newWindow(wlSurface unsafe.Pointer, width, height int) (*Window, error) {
	native := C.wl_egl_window_create((*C.struct_wl_surface)(wlSurface), C.int(width), C.int(height))
	if native == nil {
		return nil, errors.New("failed to create wl_egl_window")
	}

	surface := C.eglCreateWindowSurface(e.display, e.config, C.EGLNativeWindowType(uintptr(unsafe.Pointer(native))), nil)
	if surface == nil {
		C.wl_egl_window_destroy(native)
		return nil, fmt.Errorf("failed to create EGL window surface: %s", eglError())
	}

	return &Window{e: e, native: native, surface: surface, width: width, height: height}, nil
}

func (w *Window) Resize(width, height int) {
	C.wl_egl_window_resize(w.native, C.int(width), C.int(height), 0, 0)
	w.width = width
	w.height = height
}

func (w *Window) Size() (int, int) {
	return w.width, w.height
}

func (w *Window) swap() error {
	if C.eglSwapBuffers(w.e.display, w.surface) == C.EGL_FALSE {
		return fmt.Errorf("eglSwapBuffers failed: %s", eglError())
	}
	return nil
}

func (w *Window) Destroy() {
	if w.surface != nil {
		C.eglDestroySurface(w.e.display, w.surface)
		w.surface = nil
	}
	if w.native != nil {
		C.wl_egl_window_destroy(w.native)
		w.native = nil
	}
}
