package capture

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Plane describes one dma-buf plane. A plane with FD < 0 is a placeholder for
// an index the compositor has not sent yet.
type Plane struct {
	FD       int
	Offset   uint32
	Stride   uint32
	Modifier uint64
}

func (p Plane) Valid() bool {
	return p.FD >= 0
}

var emptyPlane = Plane{FD: -1}

// Frame is a completed capture. It owns the plane descriptors until Close;
// the descriptors must stay open until every destination has imported them.
type Frame struct {
	Width    uint32
	Height   uint32
	Format   uint32
	Modifier uint64
	Planes   []Plane

	files []*os.File
}

// Close releases every descriptor held by the frame. It is safe to call more
// than once.
func (f *Frame) Close() error {
	if f == nil {
		return nil
	}
	err := closeFiles(f.files)
	f.files = nil
	for i := range f.Planes {
		f.Planes[i].FD = -1
	}
	return err
}

// OpenDescriptors reports how many descriptors the frame still holds.
func (f *Frame) OpenDescriptors() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, file := range f.files {
		if file != nil {
			n++
		}
	}
	return n
}

func (f *Frame) String() string {
	return fmt.Sprintf("%dx%d %s planes=%d", f.Width, f.Height, FourCC(f.Format), len(f.Planes))
}

// FourCC renders a DRM format code, e.g. 0x34325258 becomes "XR24".
func FourCC(format uint32) string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		c := byte(format >> (8 * i))
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", format)
		}
		b.WriteByte(c)
	}
	return strings.TrimRight(b.String(), " ")
}

func closeFiles(files []*os.File) error {
	var errs []error
	for i, f := range files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		files[i] = nil
	}
	return errors.Join(errs...)
}
