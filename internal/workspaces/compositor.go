// Package workspaces gathers every workspace onto the mirrored output while
// mirroring runs and puts them back afterwards.
package workspaces

import (
	"os"
	"os/exec"

	"github.com/pescheckit/sway-mirror/internal/errdefs"
)

type Compositor int

const (
	CompositorUnknown Compositor = iota
	CompositorSway
	CompositorScroll
	CompositorMiracle
	CompositorHyprland
)

func (c Compositor) String() string {
	switch c {
	case CompositorSway:
		return "sway"
	case CompositorScroll:
		return "scroll"
	case CompositorMiracle:
		return "miracle"
	case CompositorHyprland:
		return "hyprland"
	default:
		return "unknown"
	}
}

func parseCompositor(name string) Compositor {
	for _, c := range []Compositor{CompositorSway, CompositorScroll, CompositorMiracle, CompositorHyprland} {
		if c.String() == name {
			return c
		}
	}
	return CompositorUnknown
}

// DetectCompositor inspects the IPC sockets in the environment.
func DetectCompositor() Compositor {
	socketExists := func(env string) bool {
		path := os.Getenv(env)
		if path == "" {
			return false
		}
		_, err := os.Stat(path)
		return err == nil
	}

	switch {
	case socketExists("SCROLLSOCK"):
		return CompositorScroll
	case socketExists("MIRACLESOCK"):
		return CompositorMiracle
	case socketExists("SWAYSOCK"):
		return CompositorSway
	case os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		return CompositorHyprland
	}
	return CompositorUnknown
}

type Workspace struct {
	Name    string `json:"name"`
	Output  string `json:"output"`
	Focused bool   `json:"focused"`
}

// Backend talks to one compositor's IPC.
type Backend interface {
	Compositor() Compositor
	Workspaces() ([]Workspace, error)
	Move(workspace, output string) error
	Focus(workspace string) error
}

// runner executes a command and returns its standard output.
type runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Detect returns the backend for the running compositor.
func Detect() (Backend, error) {
	return ForCompositor(DetectCompositor())
}

func ForCompositor(c Compositor) (Backend, error) {
	switch c {
	case CompositorSway:
		return &swayBackend{compositor: c, msg: "swaymsg", run: execRunner}, nil
	case CompositorScroll:
		return &swayBackend{compositor: c, msg: "scrollmsg", run: execRunner}, nil
	case CompositorMiracle:
		return &swayBackend{compositor: c, msg: "miraclemsg", run: execRunner}, nil
	case CompositorHyprland:
		return &hyprlandBackend{run: execRunner}, nil
	default:
		return nil, errdefs.ErrUnsupportedCompositor
	}
}
