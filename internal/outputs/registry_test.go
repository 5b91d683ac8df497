package outputs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry[string] {
	r := NewRegistry[string]()
	r.Add(10, "handle-a")
	r.HandleName(10, "eDP-1")
	r.HandleMode(10, ModeCurrent, 1920, 1080, 60000)
	r.Add(11, "handle-b")
	r.HandleName(11, "HDMI-A-1")
	r.HandleMode(11, ModeCurrent, 2560, 1440, 144000)
	return r
}

func TestAddDefaults(t *testing.T) {
	r := NewRegistry[int]()
	r.Add(3, 42)

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, uint32(3), list[0].ID)
	assert.Equal(t, int32(1), list[0].Scale)
	assert.Equal(t, 42, list[0].Handle)
	assert.Empty(t, list[0].Name)
}

func TestHandleModeIgnoresNonCurrent(t *testing.T) {
	r := NewRegistry[int]()
	r.Add(1, 0)

	r.HandleMode(1, ModeCurrent, 1920, 1080, 60000)
	r.HandleMode(1, 0x2, 1280, 720, 60000)

	o := r.List()[0]
	assert.Equal(t, int32(1920), o.Width)
	assert.Equal(t, int32(1080), o.Height)
	assert.Equal(t, int32(60000), o.Refresh)
}

func TestXdgNameOverridesBase(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		xdg     string
		want    string
		xdgLast bool
	}{
		{"xdg after base", "eDP-1", "eDP-2", "eDP-2", true},
		{"xdg before base", "eDP-1", "eDP-2", "eDP-1", false},
		{"empty xdg ignored", "eDP-1", "", "eDP-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry[int]()
			r.Add(1, 0)
			if tt.xdgLast {
				r.HandleName(1, tt.base)
				r.HandleXdgName(1, tt.xdg)
			} else {
				r.HandleXdgName(1, tt.xdg)
				r.HandleName(1, tt.base)
			}
			assert.Equal(t, tt.want, r.List()[0].Name)
		})
	}
}

func TestXdgDescriptionFillsEmptyOnly(t *testing.T) {
	r := NewRegistry[int]()
	r.Add(1, 0)
	r.Add(2, 0)

	r.HandleXdgDescription(1, "from xdg")
	r.HandleDescription(2, "from base")
	r.HandleXdgDescription(2, "from xdg")

	list := r.List()
	assert.Equal(t, "from xdg", list[0].Description)
	assert.Equal(t, "from base", list[1].Description)
}

func TestLogicalPositionAndScale(t *testing.T) {
	r := NewRegistry[int]()
	r.Add(1, 0)
	r.HandleLogicalPosition(1, 1920, -200)
	r.HandleLogicalSize(1, 1280, 720)
	r.HandleScale(1, 2)

	o := r.List()[0]
	assert.Equal(t, int32(1920), o.X)
	assert.Equal(t, int32(-200), o.Y)
	assert.Equal(t, int32(1280), o.LogicalWidth)
	assert.Equal(t, int32(720), o.LogicalHeight)
	assert.Equal(t, int32(2), o.Scale)
}

func TestUnknownIDIgnored(t *testing.T) {
	r := NewRegistry[int]()
	assert.NotPanics(t, func() {
		r.HandleName(99, "ghost")
		r.HandleMode(99, ModeCurrent, 1, 1, 1)
		r.HandleXdgDescription(99, "ghost")
	})
	assert.Zero(t, r.Len())
}

func TestFindByName(t *testing.T) {
	r := newTestRegistry()

	o, ok := r.FindByName("HDMI-A-1")
	require.True(t, ok)
	assert.Equal(t, "handle-b", o.Handle)
	assert.Equal(t, int32(2560), o.Width)

	_, ok = r.FindByName("hdmi-a-1")
	assert.False(t, ok, "lookup is case-sensitive")

	_, ok = r.FindByName("")
	assert.False(t, ok)
}

func TestListReturnsCopies(t *testing.T) {
	r := newTestRegistry()

	list := r.List()
	list[0].Name = "mutated"

	o, ok := r.FindByName("eDP-1")
	require.True(t, ok)
	assert.Equal(t, "eDP-1", o.Name)
}

func TestTargets(t *testing.T) {
	r := newTestRegistry()
	r.Add(12, "handle-c")
	r.HandleName(12, "DP-3")

	tests := []struct {
		name   string
		source string
		names  []string
		want   []string
	}{
		{"all but source", "eDP-1", nil, []string{"HDMI-A-1", "DP-3"}},
		{"explicit order kept", "eDP-1", []string{"DP-3", "HDMI-A-1"}, []string{"DP-3", "HDMI-A-1"}},
		{"unknown skipped", "eDP-1", []string{"DP-9", "DP-3"}, []string{"DP-3"}},
		{"source skipped", "eDP-1", []string{"eDP-1"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, o := range r.Targets(tt.source, tt.names) {
				got = append(got, o.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemove(t *testing.T) {
	r := newTestRegistry()

	assert.True(t, r.Remove(10))
	assert.False(t, r.Remove(10))
	assert.Equal(t, 1, r.Len())
	_, ok := r.FindByName("eDP-1")
	assert.False(t, ok)
}

func TestConcurrentUpdates(t *testing.T) {
	r := NewRegistry[int]()
	for i := uint32(0); i < 8; i++ {
		r.Add(i, int(i))
	}

	var wg sync.WaitGroup
	for i := uint32(0); i < 8; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			for j := int32(0); j < 100; j++ {
				r.HandleMode(id, ModeCurrent, j, j, j)
				_ = r.List()
			}
		}(i)
	}
	wg.Wait()

	for _, o := range r.List() {
		assert.Equal(t, int32(99), o.Width)
	}
}
