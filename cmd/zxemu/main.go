// Command zxemu is the host CLI collaborator for the gozxcore Z80/ZX
// Spectrum core (spec §6): it owns ROM/snapshot loading, the frame
// loop, and an optional interactive debug TUI. The core itself has no
// knowledge of any of this — it is a plain library.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes, per spec §6.
const (
	exitOK           = 0
	exitBadArgs      = 1
	exitRomFailed    = 2
	exitSnapshotFail = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	var romPath string

	root := &cobra.Command{
		Use:           "zxemu <snapshot>",
		Short:         "gozxcore — a ZX Spectrum 48K core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&romPath, "rom", "", "path to a 16384-byte 48K ROM image (required)")

	frames := 50
	root.PersistentFlags().IntVar(&frames, "frames", 50, "number of 50Hz frames to execute")

	runCmd := &cobra.Command{
		Use:   "run <snapshot>",
		Short: "Load a snapshot and run it for a number of frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(args[0], romPath, frames)
		},
	}

	debugCmd := &cobra.Command{
		Use:   "debug <snapshot>",
		Short: "Load a snapshot and open the interactive register/memory debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDebug(args[0], romPath)
		},
	}

	root.AddCommand(runCmd, debugCmd)
	root.RunE = runCmd.RunE
	root.Args = cobra.ExactArgs(1)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zxemu:", err)
		return classifyError(err)
	}
	return exitOK
}

// classifyError maps a returned error to the documented exit code
// (spec §6): bad CLI usage is 1, a failed ROM load is 2, a failed
// snapshot load is 3.
func classifyError(err error) int {
	switch {
	case isRomError(err):
		return exitRomFailed
	case isSnapshotError(err):
		return exitSnapshotFail
	default:
		return exitBadArgs
	}
}
