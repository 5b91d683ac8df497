package workspaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pescheckit/sway-mirror/internal/log"
)

// State remembers where every workspace lived before they were gathered on
// Source. It is persisted so a crashed or killed mirror can still be undone.
type State struct {
	Compositor string            `json:"compositor"`
	Source     string            `json:"source"`
	Original   map[string]string `json:"original"`
}

// DefaultStatePath is $XDG_STATE_HOME/sway-mirror/workspaces.json.
func DefaultStatePath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "sway-mirror", "workspaces.json")
}

// CaptureAndMove records the current layout to statePath and moves every
// workspace that is not on source onto it. Individual moves that fail are
// logged and skipped.
func CaptureAndMove(b Backend, source, statePath string) (*State, error) {
	workspaces, err := b.Workspaces()
	if err != nil {
		return nil, err
	}

	state := &State{
		Compositor: b.Compositor().String(),
		Source:     source,
		Original:   make(map[string]string, len(workspaces)),
	}
	for _, ws := range workspaces {
		state.Original[ws.Name] = ws.Output
	}

	if statePath != "" {
		if err := state.Save(statePath); err != nil {
			log.Warn("Failed to persist workspace layout", "err", err)
		}
	}

	for _, ws := range workspaces {
		if ws.Output == source {
			continue
		}
		if err := b.Move(ws.Name, source); err != nil {
			log.Warn("Failed to move workspace", "workspace", ws.Name, "err", err)
		}
	}
	return state, nil
}

// Restore moves workspaces that were gathered on the source back to their
// original outputs and then refocuses the workspace that has focus now.
func (s *State) Restore(b Backend) error {
	current, err := b.Workspaces()
	if err != nil {
		return err
	}

	var focused string
	var errs []error
	for _, ws := range current {
		original, ok := s.Original[ws.Name]
		if !ok {
			continue
		}
		if original != s.Source && ws.Output == s.Source {
			if err := b.Move(ws.Name, original); err != nil {
				errs = append(errs, err)
			}
		}
		if ws.Focused {
			focused = ws.Name
		}
	}

	if focused != "" {
		if err := b.Focus(focused); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *State) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write workspace state: %w", err)
	}
	return nil
}

// LoadState reads a saved layout. It returns nil, nil when there is none.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse workspace state %s: %w", path, err)
	}
	return &s, nil
}

func RemoveStateFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug("Failed to remove workspace state", "path", path, "err", err)
	}
}

// RestoreFromFile undoes a layout saved by another process and deletes the
// file. A missing file is not an error.
func RestoreFromFile(path string) error {
	state, err := LoadState(path)
	if err != nil || state == nil {
		return err
	}

	b, err := ForCompositor(parseCompositor(state.Compositor))
	if err != nil {
		return err
	}
	if err := state.Restore(b); err != nil {
		return err
	}
	RemoveStateFile(path)
	return nil
}
