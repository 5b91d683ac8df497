package main

import (
	"os"
	"runtime"

	"github.com/pescheckit/sway-mirror/internal/config"
	"github.com/pescheckit/sway-mirror/internal/log"
	"github.com/pescheckit/sway-mirror/internal/scaling"
	"github.com/spf13/cobra"
)

var (
	flagTargets     []string
	flagList        bool
	flagCursor      bool
	flagScale       = scaling.Fit
	flagWorkspaces  bool
	flagInhibitIdle bool
	flagStop        bool
	flagVerbose     bool
	flagConfig      string
)

func init() {
	// EGL and libwayland calls must stay on the thread that made the context
	// current.
	runtime.LockOSThread()
}

var rootCmd = &cobra.Command{
	Use:   "sway-mirror [SOURCE]",
	Short: "Zero-copy output mirroring for wlroots compositors",
	Long: `Mirror one Wayland output onto one or more others.

Frames are exported from the compositor as dma-bufs and drawn straight into
overlay layer surfaces on the target outputs without leaving the GPU.

Scale modes (--scale):
  fit         - Keep aspect ratio, add black bars (default)
  fill        - Keep aspect ratio, crop the overflow
  stretch     - Ignore aspect ratio
  center      - Native size, centered

Examples:
  sway-mirror --list                 # Show outputs
  sway-mirror eDP-1                  # Mirror eDP-1 to every other output
  sway-mirror eDP-1 -t HDMI-A-1      # Mirror to one output
  sway-mirror eDP-1 -s fill          # Crop instead of letterboxing
  sway-mirror --stop                 # Stop the running instance`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Run: runRoot,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath(), "Path to the config file")

	rootCmd.Flags().StringSliceVarP(&flagTargets, "to", "t", nil, "Target output (repeatable, default: all other outputs)")
	rootCmd.Flags().BoolVarP(&flagList, "list", "l", false, "List available outputs and exit")
	rootCmd.Flags().BoolVar(&flagCursor, "cursor", true, "Include the cursor in the mirror")
	rootCmd.Flags().VarP(&flagScale, "scale", "s", "Scale mode: fit, fill, stretch, center")
	rootCmd.Flags().BoolVarP(&flagWorkspaces, "workspaces", "w", true, "Gather all workspaces on the source while mirroring")
	rootCmd.Flags().BoolVar(&flagInhibitIdle, "inhibit-idle", true, "Keep the screensaver away while mirroring")
	rootCmd.Flags().BoolVar(&flagStop, "stop", false, "Stop a running sway-mirror instance")

	rootCmd.AddCommand(listCmd, stopCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) {
	switch {
	case flagStop:
		runStop(cmd, args)
	case flagList:
		listOutputs(false)
	default:
		cfg := loadConfig(cmd)
		if len(args) == 0 {
			log.Fatal("Source output required. Use --list to see available outputs.")
		}
		if err := runMirror(args[0], cfg); err != nil {
			log.Fatalf("%v", err)
		}
	}
}

func setupLogging() {
	level := "info"
	if env := os.Getenv("SWAY_MIRROR_LOG_LEVEL"); env != "" {
		level = env
	}
	if flagVerbose {
		level = "debug"
	}
	if err := log.SetLevel(level); err != nil {
		log.Warn("Ignoring log level", "err", err)
	}
}

// loadConfig merges the config file and environment with the flags the user
// actually passed.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		log.Fatalf("%v", err)
	}

	flags := cmd.Flags()
	if flags.Changed("to") {
		cfg.Targets = flagTargets
	}
	if flags.Changed("cursor") {
		cfg.Cursor = flagCursor
	}
	if flags.Changed("scale") {
		cfg.Scale = flagScale.String()
	}
	if flags.Changed("workspaces") {
		cfg.Workspaces = flagWorkspaces
	}
	if flags.Changed("inhibit-idle") {
		cfg.InhibitIdle = flagInhibitIdle
	}

	if flagVerbose {
		cfg.LogLevel = "debug"
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		log.Warn("Ignoring log level", "err", err)
	}
	return cfg
}
