// Package scaling places a source image inside a destination surface.
package scaling

import (
	"fmt"
	"strings"
)

type Mode int

const (
	// Fit preserves the aspect ratio and letterboxes or pillarboxes.
	Fit Mode = iota
	// Fill preserves the aspect ratio and crops whatever overflows.
	Fill
	// Stretch ignores the aspect ratio.
	Stretch
	// Center draws at native size in the middle of the destination.
	Center
)

var modeNames = map[Mode]string{
	Fit:     "fit",
	Fill:    "fill",
	Stretch: "stretch",
	Center:  "center",
}

func Modes() []Mode {
	return []Mode{Fit, Fill, Stretch, Center}
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes() {
		if modeNames[m] == want {
			return m, nil
		}
	}
	return Fit, fmt.Errorf("unknown scale mode %q (expected fit, fill, stretch or center)", s)
}

// Set and Type let a Mode be used directly as a pflag value.
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m *Mode) Type() string {
	return "mode"
}

// Rect is a viewport in destination pixels. X and Y may be negative and the
// size may exceed the destination for Fill and Center.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Compute returns the viewport for drawing a srcW x srcH image into a
// dstW x dstH surface.
func Compute(mode Mode, srcW, srcH, dstW, dstH int) Rect {
	full := Rect{Width: dstW, Height: dstH}
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return full
	}

	srcAspect := float32(srcW) / float32(srcH)
	dstAspect := float32(dstW) / float32(dstH)

	letterbox := func() Rect {
		h := int(float32(dstW) / srcAspect)
		return Rect{X: 0, Y: (dstH - h) / 2, Width: dstW, Height: h}
	}
	pillarbox := func() Rect {
		w := int(float32(dstH) * srcAspect)
		return Rect{X: (dstW - w) / 2, Y: 0, Width: w, Height: dstH}
	}

	switch mode {
	case Stretch:
		return full
	case Fit:
		if srcAspect > dstAspect {
			return letterbox()
		}
		return pillarbox()
	case Fill:
		if srcAspect > dstAspect {
			return pillarbox()
		}
		return letterbox()
	case Center:
		return Rect{
			X:      (dstW - srcW) / 2,
			Y:      (dstH - srcH) / 2,
			Width:  srcW,
			Height: srcH,
		}
	default:
		return full
	}
}
