package workspaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// swayBackend speaks the sway IPC command language, which scroll and miracle
// share.
type swayBackend struct {
	compositor Compositor
	msg        string
	run        runner
}

func (b *swayBackend) Compositor() Compositor {
	return b.compositor
}

func (b *swayBackend) Workspaces() ([]Workspace, error) {
	output, err := b.run(b.msg, "-t", "get_workspaces")
	if err != nil {
		return nil, fmt.Errorf("%s get_workspaces: %w", b.msg, commandError(err))
	}

	var workspaces []Workspace
	if err := json.Unmarshal(output, &workspaces); err != nil {
		return nil, fmt.Errorf("parse %s output: %w", b.msg, err)
	}
	return workspaces, nil
}

func (b *swayBackend) Move(workspace, output string) error {
	cmd := fmt.Sprintf("workspace %s; move workspace to output %s", quote(workspace), quote(output))
	if _, err := b.run(b.msg, cmd); err != nil {
		return fmt.Errorf("move workspace %s to %s: %w", workspace, output, commandError(err))
	}
	return nil
}

func (b *swayBackend) Focus(workspace string) error {
	if _, err := b.run(b.msg, "workspace "+quote(workspace)); err != nil {
		return fmt.Errorf("focus workspace %s: %w", workspace, commandError(err))
	}
	return nil
}

// quote wraps an argument in double quotes for the sway command parser.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// commandError folds the command's stderr into the error.
func commandError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return err
}
