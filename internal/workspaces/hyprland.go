package workspaces

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type hyprlandBackend struct {
	run runner
}

type hyprlandWorkspace struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Monitor string `json:"monitor"`
}

func (b *hyprlandBackend) Compositor() Compositor {
	return CompositorHyprland
}

func (b *hyprlandBackend) Workspaces() ([]Workspace, error) {
	output, err := b.run("hyprctl", "-j", "workspaces")
	if err != nil {
		return nil, fmt.Errorf("hyprctl workspaces: %w", commandError(err))
	}

	var raw []hyprlandWorkspace
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse workspaces: %w", err)
	}

	active := ""
	if output, err := b.run("hyprctl", "-j", "activeworkspace"); err == nil {
		var ws hyprlandWorkspace
		if json.Unmarshal(output, &ws) == nil {
			active = ws.Name
		}
	}

	workspaces := make([]Workspace, 0, len(raw))
	for _, ws := range raw {
		if ws.ID < 0 {
			// special workspaces (scratchpads) are not bound to a monitor
			continue
		}
		workspaces = append(workspaces, Workspace{
			Name:    ws.Name,
			Output:  ws.Monitor,
			Focused: ws.Name == active,
		})
	}
	return workspaces, nil
}

// selector turns a workspace name into a hyprctl dispatcher argument.
func selector(name string) string {
	if _, err := strconv.Atoi(name); err == nil {
		return name
	}
	return "name:" + name
}

func (b *hyprlandBackend) Move(workspace, output string) error {
	if _, err := b.run("hyprctl", "dispatch", "moveworkspacetomonitor", selector(workspace), output); err != nil {
		return fmt.Errorf("move workspace %s to %s: %w", workspace, output, commandError(err))
	}
	return nil
}

func (b *hyprlandBackend) Focus(workspace string) error {
	if _, err := b.run("hyprctl", "dispatch", "workspace", selector(workspace)); err != nil {
		return fmt.Errorf("focus workspace %s: %w", workspace, commandError(err))
	}
	return nil
}
