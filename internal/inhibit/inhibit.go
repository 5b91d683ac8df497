// Package inhibit keeps the session's screensaver from blanking outputs while
// mirroring runs.
package inhibit

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/pescheckit/sway-mirror/internal/log"
)

const (
	dbusScreensaverName      = "org.freedesktop.ScreenSaver"
	dbusScreensaverPath      = "/org/freedesktop/ScreenSaver"
	dbusScreensaverPath2     = "/ScreenSaver"
	dbusScreensaverInterface = "org.freedesktop.ScreenSaver"

	dbusGnomeScreensaverName      = "org.gnome.ScreenSaver"
	dbusGnomeScreensaverPath      = "/org/gnome/ScreenSaver"
	dbusGnomeScreensaverInterface = "org.gnome.ScreenSaver"
)

var ErrUnavailable = errors.New("no screensaver service on the session bus")

type service struct {
	name  string
	path  dbus.ObjectPath
	iface string
}

// services are tried in order until one accepts the inhibit request.
var services = []service{
	{dbusScreensaverName, dbusScreensaverPath, dbusScreensaverInterface},
	{dbusScreensaverName, dbusScreensaverPath2, dbusScreensaverInterface},
	{dbusGnomeScreensaverName, dbusGnomeScreensaverPath, dbusGnomeScreensaverInterface},
}

// Inhibitor holds one inhibit cookie.
type Inhibitor struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	iface  string
	cookie uint32
	held   bool
}

// Acquire connects to the session bus and asks the first available
// screensaver service to inhibit idle. It returns ErrUnavailable when no
// service is running.
func Acquire(appName, reason string) (*Inhibitor, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	bus := conn.BusObject()
	for _, svc := range services {
		if !nameHasOwner(bus, svc.name) {
			continue
		}
		inh := &Inhibitor{conn: conn, obj: conn.Object(svc.name, svc.path), iface: svc.iface}
		if err := inh.inhibit(appName, reason); err != nil {
			log.Debug("Screensaver inhibit failed", "service", svc.name, "path", svc.path, "err", err)
			continue
		}
		log.Debugf("Idle inhibited via %s (cookie %d)", svc.name, inh.cookie)
		return inh, nil
	}

	conn.Close()
	return nil, ErrUnavailable
}

func nameHasOwner(bus dbus.BusObject, name string) bool {
	var owned bool
	if err := bus.Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&owned); err != nil {
		return false
	}
	return owned
}

func (i *Inhibitor) inhibit(appName, reason string) error {
	if err := i.obj.Call(i.iface+".Inhibit", 0, appName, reason).Store(&i.cookie); err != nil {
		return err
	}
	i.held = true
	return nil
}

func (i *Inhibitor) Cookie() uint32 {
	return i.cookie
}

// Release drops the cookie and closes the bus connection. It is safe to call
// on a nil Inhibitor and more than once.
func (i *Inhibitor) Release() error {
	if i == nil {
		return nil
	}

	var err error
	if i.held {
		i.held = false
		if call := i.obj.Call(i.iface+".UnInhibit", 0, i.cookie); call.Err != nil {
			err = fmt.Errorf("uninhibit %d: %w", i.cookie, call.Err)
		}
	}
	if i.conn != nil {
		if cerr := i.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
		i.conn = nil
	}
	return err
}
