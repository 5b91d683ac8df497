package scaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		srcW, srcH int
		dstW, dstH int
		want       Rect
	}{
		{"fit same size", Fit, 1920, 1080, 1920, 1080, Rect{0, 0, 1920, 1080}},
		{"fit narrower source pillarboxes", Fit, 1280, 1024, 1920, 1080, Rect{285, 0, 1350, 1080}},
		{"fit wider source letterboxes", Fit, 2560, 1080, 1920, 1080, Rect{0, 135, 1920, 810}},
		{"fit upscale same aspect", Fit, 1280, 720, 2560, 1440, Rect{0, 0, 2560, 1440}},
		{"fill narrower source overflows vertically", Fill, 1280, 1024, 1920, 1080, Rect{0, -228, 1920, 1536}},
		{"fill wider source overflows horizontally", Fill, 2560, 1080, 1920, 1080, Rect{-320, 0, 2560, 1080}},
		{"stretch", Stretch, 1280, 1024, 1920, 1080, Rect{0, 0, 1920, 1080}},
		{"center smaller source", Center, 640, 480, 1920, 1080, Rect{640, 300, 640, 480}},
		{"center larger source", Center, 3840, 2160, 1920, 1080, Rect{-960, -540, 3840, 2160}},
		{"zero source height", Fit, 1920, 0, 1920, 1080, Rect{0, 0, 1920, 1080}},
		{"zero destination", Center, 640, 480, 0, 0, Rect{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.mode, tt.srcW, tt.srcH, tt.dstW, tt.dstH))
		})
	}
}

func TestComputeFitContained(t *testing.T) {
	sizes := [][2]int{{1920, 1080}, {1280, 1024}, {2560, 1080}, {800, 1280}, {3840, 2160}, {1366, 768}}
	for _, src := range sizes {
		for _, dst := range sizes {
			r := Compute(Fit, src[0], src[1], dst[0], dst[1])
			assert.GreaterOrEqual(t, r.X, 0, "src %v dst %v", src, dst)
			assert.GreaterOrEqual(t, r.Y, 0, "src %v dst %v", src, dst)
			assert.LessOrEqual(t, r.X+r.Width, dst[0], "src %v dst %v", src, dst)
			assert.LessOrEqual(t, r.Y+r.Height, dst[1], "src %v dst %v", src, dst)
			assert.True(t, r.Width == dst[0] || r.Height == dst[1], "src %v dst %v", src, dst)
		}
	}
}

func TestComputeFillCovers(t *testing.T) {
	sizes := [][2]int{{1920, 1080}, {1280, 1024}, {2560, 1080}, {800, 1280}}
	for _, src := range sizes {
		for _, dst := range sizes {
			r := Compute(Fill, src[0], src[1], dst[0], dst[1])
			assert.LessOrEqual(t, r.X, 0, "src %v dst %v", src, dst)
			assert.LessOrEqual(t, r.Y, 0, "src %v dst %v", src, dst)
			assert.True(t, r.Width == dst[0] || r.Height == dst[1], "src %v dst %v", src, dst)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"fit", Fit, false},
		{"FILL", Fill, false},
		{" Stretch ", Stretch, false},
		{"center", Center, false},
		{"zoom", Fit, true},
		{"", Fit, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		var parsed Mode
		require.NoError(t, parsed.Set(m.String()))
		assert.Equal(t, m, parsed)
	}
	assert.Equal(t, "mode(42)", Mode(42).String())
}
