package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/tailcut/internal/domain/boundary"
	"github.com/forPelevin/tailcut/internal/domain/frames"
	"github.com/forPelevin/tailcut/internal/log"
	"github.com/forPelevin/tailcut/internal/ports"
	"github.com/forPelevin/tailcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/tailcut/internal/types"
	"github.com/forPelevin/tailcut/internal/usecase"
)

const DefaultSuffix = "_trimmed"

// ErrFilesFailed is returned after a batch in which at least one file failed.
var ErrFilesFailed = errors.New("some files failed")

var videoExts = map[string]struct{}{
	".avi": {}, ".flv": {}, ".m4v": {}, ".mkv": {}, ".mov": {}, ".mp4": {},
	".mpeg": {}, ".mpg": {}, ".ts": {}, ".webm": {}, ".wmv": {},
}

type Config struct {
	Inputs []string
	OutDir string
	Suffix string
	DryRun bool
	Refine bool

	// ReportPath, when set, receives the JSON report of the run.
	ReportPath string

	HashKind    frames.HashKind
	FrameWidth  int
	FrameHeight int

	FFmpegPath  string
	FFprobePath string

	Logger zerolog.Logger
}

func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("no inputs")
	}
	for _, in := range c.Inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain path separators", c.Suffix)
	}
	if _, err := frames.ParseHashKind(string(c.HashKind)); err != nil {
		return err
	}
	if c.FrameWidth < 0 || c.FrameHeight < 0 {
		return fmt.Errorf("frame size must be >= 0")
	}
	if c.OutDir != "" {
		if st, err := os.Stat(c.OutDir); err == nil && !st.IsDir() {
			return fmt.Errorf("out %s: not a directory", c.OutDir)
		}
	}
	return nil
}

func Run(ctx context.Context, cfg Config) (types.Report, error) {
	logger := cfg.Logger
	suffix := cfg.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	kind, err := frames.ParseHashKind(string(cfg.HashKind))
	if err != nil {
		return types.Report{}, err
	}

	// adapters
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.FrameWidth, cfg.FrameHeight)
	an := frames.NewAnalyzer(v, frames.NewHasher(kind), frames.DefaultThresholds())

	uc := usecase.New(usecase.Deps{
		Video:    v,
		Analyzer: an,
		Log:      log.WithComponent("usecase"),
	})

	files, err := expandInputs(cfg.Inputs)
	if err != nil {
		return types.Report{}, err
	}
	if cfg.OutDir != "" && !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return types.Report{}, err
		}
	}
	logger.Info().Int("files", len(files)).Str("hash", string(kind)).Bool("dry_run", cfg.DryRun).Msg("starting")

	var rep types.Report
	failed := 0
	for _, in := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if hasSuffix(in, suffix) {
			logger.Debug().Str("media", in).Msg("already trimmed, skipping")
			continue
		}
		res, err := uc.Run(ctx, usecase.Input{
			Media:   in,
			OutPath: buildOutputPath(in, cfg.OutDir, suffix),
			DryRun:  cfg.DryRun,
			Refine:  cfg.Refine,
		})
		fr := res.Report
		fr.Input = in
		if err != nil {
			failed++
			fr.Error = err.Error()
			logger.Error().Err(err).Str("media", in).Msg("file failed")
		}
		rep.Files = append(rep.Files, fr)
	}

	if cfg.ReportPath != "" {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return rep, fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(cfg.ReportPath, b, 0o644); err != nil {
			return rep, err
		}
		logger.Info().Str("path", cfg.ReportPath).Msg("report written")
	}

	logger.Info().Int("files", len(rep.Files)).Int("trimmed", countTrimmed(rep)).Int("failed", failed).Msg("done")
	if failed > 0 {
		return rep, fmt.Errorf("%w: %d of %d", ErrFilesFailed, failed, len(rep.Files))
	}
	return rep, nil
}

// expandInputs replaces directories by the video files directly inside them.
func expandInputs(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		st, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if !st.IsDir() {
			out = append(out, in)
			continue
		}
		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			if isVideo(e.Name()) {
				found = append(found, filepath.Join(in, e.Name()))
			}
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

func isVideo(name string) bool {
	_, ok := videoExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

func buildOutputPath(in, outDir, suffix string) string {
	ext := filepath.Ext(in)
	name := strings.TrimSuffix(filepath.Base(in), ext)
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, name+suffix+ext)
}

func hasSuffix(in, suffix string) bool {
	name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return strings.HasSuffix(name, suffix)
}

func countTrimmed(rep types.Report) int {
	n := 0
	for _, f := range rep.Files {
		if f.Trimmed {
			n++
		}
	}
	return n
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ frames.Source = (*ffmpeg.Adapter)(nil)
var _ boundary.Analyzer = (*frames.Analyzer)(nil)
