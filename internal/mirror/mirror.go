// Package mirror runs the capture and present loop.
package mirror

import (
	"context"
	"fmt"

	"github.com/pescheckit/sway-mirror/internal/capture"
	"github.com/pescheckit/sway-mirror/internal/errdefs"
	"github.com/pescheckit/sway-mirror/internal/log"
	"github.com/pescheckit/sway-mirror/internal/scaling"
)

// Target is one destination surface.
type Target interface {
	Name() string
	// Active is false once the compositor closed the surface.
	Active() bool
	// ResizeIfNeeded applies a pending configure size to the drawable.
	ResizeIfNeeded() bool
	Commit()
}

// Pipeline is the protocol and GPU side the loop drives.
type Pipeline interface {
	Surfaces() []Target
	RequestCapture(includeCursor bool) error
	CaptureDone() bool
	TakeFrame() *capture.Frame
	Roundtrip() error
	Dispatch() error
	Render(frame *capture.Frame, target Target, mode scaling.Mode) error
}

type Options struct {
	IncludeCursor bool
	Scale         scaling.Mode
}

type Stats struct {
	Frames         uint64
	Cancelled      uint64
	ImportFailures uint64
}

// Run mirrors until ctx is done or a fatal error occurs. A cancelled ctx is a
// clean stop and returns a nil error. The roundtrip in flight when ctx is
// cancelled is allowed to finish.
func Run(ctx context.Context, p Pipeline, opts Options) (Stats, error) {
	var stats Stats

	for ctx.Err() == nil {
		targets := activeTargets(p.Surfaces())
		if len(targets) == 0 {
			return stats, errdefs.ErrNoTargets
		}

		for _, t := range targets {
			if t.ResizeIfNeeded() {
				log.Debug("Resized surface", "output", t.Name())
			}
		}

		if err := p.RequestCapture(opts.IncludeCursor); err != nil {
			return stats, fmt.Errorf("request capture: %w", err)
		}

		for !p.CaptureDone() {
			if ctx.Err() != nil {
				return stats, nil
			}
			if err := p.Roundtrip(); err != nil {
				return stats, fmt.Errorf("wait for frame: %w", err)
			}
		}

		if frame := p.TakeFrame(); frame != nil {
			err := renderFrame(p, frame, targets, opts.Scale, &stats)
			if cerr := frame.Close(); cerr != nil {
				log.Debug("Closing frame descriptors", "err", cerr)
			}
			if err != nil {
				return stats, err
			}
		} else {
			stats.Cancelled++
			log.Debug("Capture produced no frame", "cancelled", stats.Cancelled)
		}

		if err := p.Dispatch(); err != nil {
			return stats, fmt.Errorf("dispatch: %w", err)
		}
	}

	return stats, nil
}

func renderFrame(p Pipeline, frame *capture.Frame, targets []Target, mode scaling.Mode, stats *Stats) error {
	for _, t := range targets {
		err := p.Render(frame, t, mode)
		if errdefs.IsImportError(err) {
			stats.ImportFailures++
			log.Warn("Skipping frame", "output", t.Name(), "err", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("render to %s: %w", t.Name(), err)
		}
		t.Commit()
	}
	stats.Frames++
	return nil
}

func activeTargets(all []Target) []Target {
	active := all[:0:0]
	for _, t := range all {
		if t.Active() {
			active = append(active, t)
		}
	}
	return active
}

