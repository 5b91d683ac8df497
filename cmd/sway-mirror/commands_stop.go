package main

import (
	"fmt"
	"time"

	"github.com/pescheckit/sway-mirror/internal/log"
	"github.com/pescheckit/sway-mirror/internal/pidfile"
	"github.com/pescheckit/sway-mirror/internal/workspaces"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running sway-mirror instance",
	Run:   runStop,
}

func runStop(cmd *cobra.Command, args []string) {
	pid, err := pidfile.New(pidfile.DefaultPath()).Stop(100 * time.Millisecond)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("Sent stop signal to sway-mirror (PID %d)\n", pid)

	// The stopped instance normally restores on its own; this covers one that
	// was killed before it could.
	if err := workspaces.RestoreFromFile(workspaces.DefaultStatePath()); err != nil {
		log.Warnf("Failed to restore workspaces: %v", err)
	}
}
