package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tailcut <input>...",
		Short:        "Trim black, white or frozen tails off video files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("out", "", "Output directory (default: next to each input)")
	root.Flags().String("suffix", "_trimmed", "Suffix added to trimmed file names")
	root.Flags().Bool("dry-run", false, "Detect trim points without writing files")
	root.Flags().Bool("refine", false, "Binary-search the boundary after the coarse scan")
	root.Flags().String("hash", getenvDefault("TAILCUT_HASH", "exact"), "Frozen-frame hash: exact, average, difference, perception")
	root.Flags().String("report", "", "Write a JSON report to this path")
	root.Flags().String("log-level", "", "Log level (default: LOG_LEVEL or info)")
	root.Flags().Bool("log-json", false, "Log JSON lines instead of console output")

	// Hidden tuning flag (internal)
	root.Flags().String("frame-size", "64x36", "Decoded frame size WxH")
	_ = root.Flags().MarkHidden("frame-size")

	return root
}
