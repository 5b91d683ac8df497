package render

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v3.1/gles2"

	"github.com/pescheckit/sway-mirror/internal/capture"
	"github.com/pescheckit/sway-mirror/internal/log"
	"github.com/pescheckit/sway-mirror/internal/scaling"
)

const vertexShaderSrc = `#version 100
attribute vec2 pos;
attribute vec2 tex;
varying vec2 v_tex;
void main() {
	gl_Position = vec4(pos, 0.0, 1.0);
	v_tex = tex;
}
` + "\x00"

const fragmentShaderSrc = `#version 100
precision mediump float;
varying vec2 v_tex;
uniform sampler2D u_texture;
void main() {
	gl_FragColor = texture2D(u_texture, v_tex);
}
` + "\x00"

// Full-screen quad as a triangle strip, interleaved x, y, u, v. The texture is
// flipped vertically since dma-bufs are stored top row first.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	1, 1, 1, 0,
}

const (
	vertexStride = 4 * 4
	uvOffset     = 2 * 4
)

// Context owns the EGL display, the GLES context and the GL objects shared by
// every window. All methods must run on the thread that created it.
type Context struct {
	egl *eglState

	program uint32
	vao     uint32
	vbo     uint32
	texture uint32
	uniform int32

	multiPlaneOnce sync.Once
}

// NewContext initializes EGL on the given wl_display.
func NewContext(nativeDisplay unsafe.Pointer) (*Context, error) {
	e, err := newEGL(nativeDisplay)
	if err != nil {
		return nil, err
	}
	return &Context{egl: e}, nil
}

// InitGL loads GLES entry points and builds the shader program and quad.
func (c *Context) InitGL() error {
	if err := c.egl.makeSurfaceless(); err != nil {
		return fmt.Errorf("make context current: %w", err)
	}
	if err := gles2.InitWithProcAddrFunc(procAddress); err != nil {
		return fmt.Errorf("load GLES functions: %w", err)
	}
	log.Debugf("GLES %s on %s", gles2.GoStr(gles2.GetString(gles2.VERSION)), gles2.GoStr(gles2.GetString(gles2.RENDERER)))

	program, err := linkProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return err
	}
	c.program = program
	c.uniform = gles2.GetUniformLocation(program, gles2.Str("u_texture\x00"))

	gles2.GenVertexArrays(1, &c.vao)
	gles2.BindVertexArray(c.vao)

	gles2.GenBuffers(1, &c.vbo)
	gles2.BindBuffer(gles2.ARRAY_BUFFER, c.vbo)
	gles2.BufferData(gles2.ARRAY_BUFFER, len(quadVertices)*4, gles2.Ptr(quadVertices), gles2.STATIC_DRAW)

	pos := uint32(gles2.GetAttribLocation(program, gles2.Str("pos\x00")))
	gles2.EnableVertexAttribArray(pos)
	gles2.VertexAttribPointerWithOffset(pos, 2, gles2.FLOAT, false, vertexStride, 0)

	tex := uint32(gles2.GetAttribLocation(program, gles2.Str("tex\x00")))
	gles2.EnableVertexAttribArray(tex)
	gles2.VertexAttribPointerWithOffset(tex, 2, gles2.FLOAT, false, vertexStride, uvOffset)

	gles2.BindVertexArray(0)

	gles2.GenTextures(1, &c.texture)
	return nil
}

func compileShader(src string, kind uint32) (uint32, error) {
	shader := gles2.CreateShader(kind)
	csrc, free := gles2.Strs(src)
	gles2.ShaderSource(shader, 1, csrc, nil)
	free()
	gles2.CompileShader(shader)

	var status int32
	gles2.GetShaderiv(shader, gles2.COMPILE_STATUS, &status)
	if status == gles2.FALSE {
		var length int32
		gles2.GetShaderiv(shader, gles2.INFO_LOG_LENGTH, &length)
		info := strings.Repeat("\x00", int(length)+1)
		gles2.GetShaderInfoLog(shader, length, nil, gles2.Str(info))
		gles2.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(info, "\x00"))
	}
	return shader, nil
}

func linkProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := compileShader(vertexSrc, gles2.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gles2.DeleteShader(vs)

	fs, err := compileShader(fragmentSrc, gles2.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gles2.DeleteShader(fs)

	program := gles2.CreateProgram()
	gles2.AttachShader(program, vs)
	gles2.AttachShader(program, fs)
	gles2.LinkProgram(program)

	var status int32
	gles2.GetProgramiv(program, gles2.LINK_STATUS, &status)
	if status == gles2.FALSE {
		var length int32
		gles2.GetProgramiv(program, gles2.INFO_LOG_LENGTH, &length)
		info := strings.Repeat("\x00", int(length)+1)
		gles2.GetProgramInfoLog(program, length, nil, gles2.Str(info))
		gles2.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(info, "\x00"))
	}
	return program, nil
}

// NewWindow creates an EGL window of width x height on a wl_surface.
func (c *Context) NewWindow(wlSurface unsafe.Pointer, width, height int) (*Window, error) {
	return c.egl.newWindow(wlSurface, width, height)
}

// Render draws frame into win using mode and presents it. An import failure
// is returned as *errdefs.ImportError and leaves the window untouched.
func (c *Context) Render(frame *capture.Frame, win *Window, mode scaling.Mode) error {
	if err := c.egl.makeCurrent(win.surface); err != nil {
		return err
	}

	dstW, dstH := win.Size()
	vp := scaling.Compute(mode, int(frame.Width), int(frame.Height), dstW, dstH)

	gles2.Viewport(0, 0, int32(dstW), int32(dstH))
	gles2.ClearColor(0, 0, 0, 1)
	gles2.Clear(gles2.COLOR_BUFFER_BIT)
	gles2.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))

	if len(frame.Planes) > 0 {
		if len(frame.Planes) > 1 {
			c.multiPlaneOnce.Do(func() {
				log.Debugf("Frame has %d planes, only plane 0 is imported", len(frame.Planes))
			})
		}
		if err := c.draw(frame); err != nil {
			return err
		}
	}

	return win.swap()
}

func (c *Context) draw(frame *capture.Frame) error {
	image, err := c.egl.importPlane(frame)
	if err != nil {
		return err
	}
	defer c.egl.destroyImage(image)

	gles2.ActiveTexture(gles2.TEXTURE0)
	gles2.BindTexture(gles2.TEXTURE_2D, c.texture)
	c.egl.bindImage(gles2.TEXTURE_2D, image)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_MIN_FILTER, gles2.LINEAR)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_MAG_FILTER, gles2.LINEAR)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_WRAP_S, gles2.CLAMP_TO_EDGE)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_WRAP_T, gles2.CLAMP_TO_EDGE)

	gles2.UseProgram(c.program)
	gles2.Uniform1i(c.uniform, 0)
	gles2.BindVertexArray(c.vao)
	gles2.DrawArrays(gles2.TRIANGLE_STRIP, 0, 4)
	gles2.BindVertexArray(0)
	return nil
}

// Close releases GL objects and tears down EGL. Windows must be destroyed first.
func (c *Context) Close() {
	if c.egl == nil {
		return
	}
	if err := c.egl.makeSurfaceless(); err == nil && c.program != 0 {
		gles2.DeleteTextures(1, &c.texture)
		gles2.DeleteBuffers(1, &c.vbo)
		gles2.DeleteVertexArrays(1, &c.vao)
		gles2.DeleteProgram(c.program)
		c.program = 0
	}
	c.egl.close()
	c.egl = nil
}
