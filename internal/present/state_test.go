package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigureMarksConfigured(t *testing.T) {
	s := NewState(1920, 1080)
	assert.False(t, s.Configured())

	s.Configure(7, 0, 0)

	assert.True(t, s.Configured())
	assert.Equal(t, uint32(7), s.Serial())
	w, h := s.Pending()
	assert.Equal(t, uint32(1920), w)
	assert.Equal(t, uint32(1080), h)
}

func TestConfigureSizes(t *testing.T) {
	tests := []struct {
		name         string
		w, h         uint32
		wantW, wantH uint32
	}{
		{"both set", 2560, 1440, 2560, 1440},
		{"both zero keeps previous", 0, 0, 1920, 1080},
		{"zero width keeps width", 0, 1200, 1920, 1200},
		{"zero height keeps height", 1280, 0, 1280, 1080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(1920, 1080)
			s.Configure(1, tt.w, tt.h)
			w, h := s.Pending()
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestResizeIfNeeded(t *testing.T) {
	s := NewState(1920, 1080)

	_, _, changed := s.ResizeIfNeeded()
	assert.False(t, changed, "no configure, nothing to apply")

	s.Configure(1, 2560, 1440)
	w, h, changed := s.ResizeIfNeeded()
	assert.True(t, changed)
	assert.Equal(t, uint32(2560), w)
	assert.Equal(t, uint32(1440), h)

	_, _, changed = s.ResizeIfNeeded()
	assert.False(t, changed, "second call is a no-op")

	aw, ah := s.Applied()
	assert.Equal(t, uint32(2560), aw)
	assert.Equal(t, uint32(1440), ah)
}

func TestRepeatedConfigureSameSize(t *testing.T) {
	s := NewState(1920, 1080)
	s.Configure(1, 1920, 1080)
	s.Configure(2, 1920, 1080)

	_, _, changed := s.ResizeIfNeeded()
	assert.False(t, changed)
	assert.Equal(t, uint32(2), s.Serial())
}

func TestClose(t *testing.T) {
	s := NewState(800, 600)
	assert.False(t, s.Closed())
	s.Close()
	assert.True(t, s.Closed())
}
