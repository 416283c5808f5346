package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/tailcut/internal/domain/frames"
	"github.com/forPelevin/tailcut/internal/log"
	"github.com/forPelevin/tailcut/internal/pipeline"
)

func run(cmd *cobra.Command, inputs []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	suffix, _ := cmd.Flags().GetString("suffix")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	refine, _ := cmd.Flags().GetBool("refine")
	hash, _ := cmd.Flags().GetString("hash")
	reportPath, _ := cmd.Flags().GetString("report")
	level, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	frameSize, _ := cmd.Flags().GetString("frame-size")

	log.Configure(log.Config{Level: level, JSON: logJSON, Output: cmd.ErrOrStderr(), Service: "tailcut"})

	kind, err := frames.ParseHashKind(hash)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	w, h, err := parseFrameSize(frameSize)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	abs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		p, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		abs = append(abs, p)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 6*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		Inputs:     abs,
		OutDir:     outDir,
		Suffix:     suffix,
		DryRun:     dryRun,
		Refine:     refine,
		ReportPath: reportPath,

		HashKind:    kind,
		FrameWidth:  w,
		FrameHeight: h,

		FFmpegPath:  getenvDefault("TAILCUT_FFMPEG", "ffmpeg"),
		FFprobePath: getenvDefault("TAILCUT_FFPROBE", "ffprobe"),

		Logger: log.WithComponent("pipeline"),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	rep, err := pipeline.Run(ctx, cfg)
	for _, f := range rep.Files {
		switch {
		case f.Error != "":
			fmt.Fprintf(cmd.OutOrStdout(), "%s: error\n", f.Input)
		case f.BoundarySec == nil:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.Input, f.Reason)
		case f.Trimmed:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: trimmed at %ds (%s) -> %s\n", f.Input, *f.BoundarySec, f.Mode, f.Output)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: trim point %ds (%s)\n", f.Input, *f.BoundarySec, f.Mode)
		}
	}
	return err
}

func parseFrameSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("frame size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("frame size %q: bad width", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("frame size %q: bad height", s)
	}
	return w, h, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
