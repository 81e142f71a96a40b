// Command particlehands drives a hand-controlled particle field from a webcam
// and streams it to a renderer over WebSocket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	addr       string
	particles  int
	camera     int
	tray       bool
	logLevel   string
	webDir     string
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:   "particlehands",
		Short: "Hand gesture controlled particle field",
		Long: `particlehands tracks hands through a webcam, classifies their pose and
motion, and uses them to steer a field of particles between shapes.

The simulation is served on a local HTTP port: GET /api/stream carries binary
frames over WebSocket and the /api endpoints switch shapes and trigger
explosions.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: built-in defaults)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start tracking, simulating and serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParticles(cmd, opts)
		},
	}
	runCmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address")
	runCmd.Flags().IntVarP(&opts.particles, "particles", "n", 0, "Number of particles")
	runCmd.Flags().IntVar(&opts.camera, "camera", 0, "Camera device index")
	runCmd.Flags().BoolVar(&opts.tray, "tray", false, "Show the system tray menu")
	runCmd.Flags().StringVar(&opts.webDir, "web", "", "Directory of static renderer files")

	shapesCmd := &cobra.Command{
		Use:   "shapes",
		Short: "List shapes, their palettes and gesture bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listShapes(cmd.OutOrStdout())
		},
	}

	root.AddCommand(runCmd, shapesCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
