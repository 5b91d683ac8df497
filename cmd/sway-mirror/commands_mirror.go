package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"

	"github.com/pescheckit/sway-mirror/internal/config"
	"github.com/pescheckit/sway-mirror/internal/errdefs"
	"github.com/pescheckit/sway-mirror/internal/inhibit"
	"github.com/pescheckit/sway-mirror/internal/log"
	"github.com/pescheckit/sway-mirror/internal/mirror"
	"github.com/pescheckit/sway-mirror/internal/pidfile"
	"github.com/pescheckit/sway-mirror/internal/session"
	"github.com/pescheckit/sway-mirror/internal/workspaces"
	"golang.org/x/sys/unix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func runMirror(sourceName string, cfg config.Config) error {
	mode, err := cfg.ScaleMode()
	if err != nil {
		return err
	}

	pid := pidfile.New(pidfile.DefaultPath())
	if err := pid.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			log.Debug("Failed to remove PID file", "err", err)
		}
	}()

	sess, err := session.Connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	source, ok := sess.Outputs().FindByName(sourceName)
	if !ok {
		return fmt.Errorf("source output '%s': %w", sourceName, errdefs.ErrOutputNotFound)
	}
	targets := sess.Outputs().Targets(sourceName, cfg.Targets)
	if len(targets) == 0 {
		return errdefs.ErrNoTargets
	}

	fmt.Printf("Mirroring %s to: (scale: %s)\n", sourceName, mode)
	for _, t := range targets {
		fmt.Printf("  %s (%dx%d)\n", t.Name, t.Width, t.Height)
	}

	if cfg.Workspaces {
		statePath := workspaces.DefaultStatePath()
		if layout := gatherWorkspaces(sourceName, statePath); layout != nil {
			defer restoreWorkspaces(layout, statePath)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	if err := sess.InitGPU(); err != nil {
		return err
	}
	if err := sess.CreateSurfaces(targets); err != nil {
		return err
	}
	defer func() {
		sess.DestroySurfaces()
		if err := sess.Roundtrip(); err != nil {
			log.Debug("Roundtrip after teardown failed", "err", err)
		}
	}()

	if err := sess.WaitConfigured(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := sess.Roundtrip(); err != nil {
		return err
	}
	sess.SetSource(source)

	if cfg.InhibitIdle {
		inh, err := inhibit.Acquire("sway-mirror", "Mirroring outputs")
		if err != nil {
			log.Debug("Idle inhibition unavailable", "err", err)
		}
		defer func() {
			if err := inh.Release(); err != nil {
				log.Debug("Failed to release idle inhibitor", "err", err)
			}
		}()
	}

	fmt.Println("Mirror active. Press Ctrl+C or use --stop to stop.")
	stats, err := mirror.Run(ctx, sess, mirror.Options{
		IncludeCursor: cfg.Cursor,
		Scale:         mode,
	})

	fmt.Println("\nStopping mirror...")
	log.Info("Mirror stopped", "frames", stats.Frames, "cancelled", stats.Cancelled, "import_failures", stats.ImportFailures)
	return err
}

func gatherWorkspaces(source, statePath string) *workspaces.State {
	backend, err := workspaces.Detect()
	if err != nil {
		log.Warnf("Could not move workspaces: %v", err)
		return nil
	}
	state, err := workspaces.CaptureAndMove(backend, source, statePath)
	if err != nil {
		log.Warnf("Could not move workspaces: %v", err)
		return nil
	}
	fmt.Printf("Moved all workspaces to %s (%s)\n", source, cases.Title(language.English).String(backend.Compositor().String()))
	return state
}

func restoreWorkspaces(state *workspaces.State, statePath string) {
	backend, err := workspaces.Detect()
	if err == nil {
		err = state.Restore(backend)
	}
	if err != nil {
		log.Warnf("Failed to restore workspaces: %v", err)
	} else {
		fmt.Println("Restored workspaces to original outputs")
	}
	workspaces.RemoveStateFile(statePath)
}
