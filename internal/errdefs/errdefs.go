package errdefs

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRunning        = errors.New("sway-mirror is already running")
	ErrNotRunning            = errors.New("no running sway-mirror instance found")
	ErrStalePIDFile          = errors.New("stale PID file removed")
	ErrOutputNotFound        = errors.New("output not found")
	ErrNoTargets             = errors.New("no target outputs found")
	ErrSourceLost            = errors.New("source output was removed")
	ErrUnsupportedCompositor = errors.New("workspace relocation is not supported on this compositor")
)

// MissingGlobalError reports a Wayland global the compositor never advertised.
type MissingGlobalError struct {
	Interface string
}

func (e *MissingGlobalError) Error() string {
	return fmt.Sprintf("%s not available", e.Interface)
}

// ImportError is returned when a captured buffer cannot be turned into a GPU
// image. It only affects the frame being rendered.
type ImportError struct {
	Format string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import dmabuf (%s): %v", e.Format, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func IsImportError(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie)
}
