package inhibit

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	dbus.BusObject
	calls []string
	args  [][]interface{}
	reply map[string]*dbus.Call
}

func (f *fakeObject) Call(method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, method)
	f.args = append(f.args, args)
	if reply, ok := f.reply[method]; ok {
		return reply
	}
	return &dbus.Call{}
}

func TestInhibitAndRelease(t *testing.T) {
	obj := &fakeObject{reply: map[string]*dbus.Call{
		"org.freedesktop.ScreenSaver.Inhibit": {Body: []interface{}{uint32(7)}},
	}}
	inh := &Inhibitor{obj: obj, iface: dbusScreensaverInterface}

	require.NoError(t, inh.inhibit("sway-mirror", "Mirroring outputs"))
	assert.Equal(t, uint32(7), inh.Cookie())
	assert.Equal(t, []interface{}{"sway-mirror", "Mirroring outputs"}, obj.args[0])

	require.NoError(t, inh.Release())
	require.NoError(t, inh.Release())
	assert.Equal(t, []string{
		"org.freedesktop.ScreenSaver.Inhibit",
		"org.freedesktop.ScreenSaver.UnInhibit",
	}, obj.calls)
	assert.Equal(t, []interface{}{uint32(7)}, obj.args[1])
}

func TestInhibitFailureHoldsNothing(t *testing.T) {
	obj := &fakeObject{reply: map[string]*dbus.Call{
		"org.gnome.ScreenSaver.Inhibit": {Err: errors.New("access denied")},
	}}
	inh := &Inhibitor{obj: obj, iface: dbusGnomeScreensaverInterface}

	assert.Error(t, inh.inhibit("sway-mirror", "Mirroring outputs"))
	require.NoError(t, inh.Release())
	assert.Len(t, obj.calls, 1, "nothing to uninhibit")
}

func TestReleaseReportsError(t *testing.T) {
	obj := &fakeObject{reply: map[string]*dbus.Call{
		"org.freedesktop.ScreenSaver.UnInhibit": {Err: errors.New("gone")},
	}}
	inh := &Inhibitor{obj: obj, iface: dbusScreensaverInterface, cookie: 3, held: true}

	assert.ErrorContains(t, inh.Release(), "uninhibit 3")
}

func TestReleaseNil(t *testing.T) {
	var inh *Inhibitor
	assert.NoError(t, inh.Release())
}

func TestNameHasOwner(t *testing.T) {
	tests := []struct {
		name  string
		reply *dbus.Call
		want  bool
	}{
		{"owned", &dbus.Call{Body: []interface{}{true}}, true},
		{"not owned", &dbus.Call{Body: []interface{}{false}}, false},
		{"bus error", &dbus.Call{Err: errors.New("no bus")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &fakeObject{reply: map[string]*dbus.Call{"org.freedesktop.DBus.NameHasOwner": tt.reply}}
			assert.Equal(t, tt.want, nameHasOwner(bus, dbusScreensaverName))
			assert.Equal(t, []interface{}{dbusScreensaverName}, bus.args[0])
		})
	}
}
