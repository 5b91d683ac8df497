// Package pidfile keeps a single mirror instance per user session.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pescheckit/sway-mirror/internal/errdefs"
	"golang.org/x/sys/unix"
)

// ProcessName is the comm value a live instance must report.
const ProcessName = "sway-mirror"

const fileName = "sway-mirror.pid"

var errInvalidPID = errors.New("invalid PID")

// DefaultPath picks the first of $XDG_RUNTIME_DIR, $XDG_STATE_HOME and
// ~/.local/state, falling back to /run/user/<uid>.
func DefaultPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, fileName)
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, fileName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", fileName)
	}
	return filepath.Join("/run/user", strconv.Itoa(os.Getuid()), fileName)
}

type File struct {
	path     string
	procRoot string
	remove   func(string) error
}

func New(path string) *File {
	return &File{path: path, procRoot: "/proc", remove: os.Remove}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Write() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	pid := os.Getpid()
	if err := os.WriteFile(f.path, fmt.Appendf(nil, "%d\n", pid), 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read returns 0 when there is no PID file.
func (f *File) Read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w in file %s", errInvalidPID, f.path)
	}
	return pid, nil
}

func (f *File) Remove() error {
	remove := f.remove
	if remove == nil {
		remove = os.Remove
	}
	if err := remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isMirrorProcess reports whether pid is alive and is this program.
func (f *File) isMirrorProcess(pid int) bool {
	comm, err := os.ReadFile(filepath.Join(f.procRoot, strconv.Itoa(pid), "comm"))
	if err != nil || strings.TrimSpace(string(comm)) != ProcessName {
		return false
	}
	return unix.Kill(pid, 0) == nil
}

// Running reports the PID of a live instance. A PID file that is unreadable
// as a PID or points at anything else is removed.
func (f *File) Running() (int, bool, error) {
	pid, err := f.Read()
	if errors.Is(err, errInvalidPID) {
		return 0, false, f.Remove()
	}
	if err != nil {
		return 0, false, err
	}
	if pid == 0 {
		return 0, false, nil
	}
	if !f.isMirrorProcess(pid) {
		return pid, false, f.Remove()
	}
	return pid, true, nil
}

// Acquire writes the PID file unless another instance is alive.
func (f *File) Acquire() error {
	pid, running, err := f.Running()
	if err != nil {
		return err
	}
	if running && pid != os.Getpid() {
		return fmt.Errorf("%w (PID %d), use --stop to stop it", errdefs.ErrAlreadyRunning, pid)
	}
	return f.Write()
}

// Stop sends SIGTERM to the running instance and waits briefly for it to exit.
func (f *File) Stop(wait time.Duration) (int, error) {
	pid, err := f.Read()
	if errors.Is(err, errInvalidPID) {
		return 0, errors.Join(fmt.Errorf("%w: %w", errdefs.ErrStalePIDFile, err), f.Remove())
	}
	if err != nil {
		return 0, err
	}
	if pid == 0 {
		return 0, errdefs.ErrNotRunning
	}

	if !f.isMirrorProcess(pid) {
		stale := fmt.Errorf("PID %d is not a sway-mirror process: %w", pid, errdefs.ErrStalePIDFile)
		return pid, errors.Join(stale, f.Remove())
	}

	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		removeErr := f.Remove()
		if errors.Is(err, unix.ESRCH) {
			return pid, errors.Join(fmt.Errorf("process %d not found: %w", pid, errdefs.ErrStalePIDFile), removeErr)
		}
		return pid, errors.Join(fmt.Errorf("failed to send SIGTERM: %w", err), removeErr)
	}

	time.Sleep(wait)

	if err := f.Remove(); err != nil {
		return pid, err
	}
	return pid, nil
}
