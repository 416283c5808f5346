package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/tailcut/internal/domain/boundary"
	"github.com/forPelevin/tailcut/internal/log"
	"github.com/forPelevin/tailcut/internal/ports"
	"github.com/forPelevin/tailcut/internal/types"
)

const ReasonNoTrimPoint = "no valid trim point detected"

type Deps struct {
	Video    ports.VideoTool
	Analyzer boundary.Analyzer
	Log      zerolog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Media   string
	OutPath string
	DryRun  bool
	Refine  bool
}

type Result struct {
	Report types.FileReport
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	dur, err := u.d.Video.ProbeDuration(ctx, in.Media)
	if err != nil {
		return Result{}, err
	}
	rep := types.FileReport{Input: in.Media, DurationSec: dur.Seconds()}
	logger := u.d.Log.With().Str("media", in.Media).Logger()

	bw, st, err := u.search(ctx, in, rep.DurationSec, logger)
	if err != nil {
		return Result{Report: rep}, err
	}
	rep.BlackWhite = modeReport(bw)
	rep.Static = modeReport(st)

	pick, ok := boundary.Select(bw, st)
	if !ok {
		rep.Reason = ReasonNoTrimPoint
		logger.Info().Msg(ReasonNoTrimPoint)
		return Result{Report: rep}, nil
	}
	start := pick.Start
	rep.BoundarySec = &start
	rep.Mode = pick.Mode.String()
	logger.Info().Int("boundary_sec", start).Str("mode", rep.Mode).Msg("trim point found")

	if in.DryRun {
		rep.Reason = "dry run"
		return Result{Report: rep}, nil
	}
	if err := u.d.Video.Trim(ctx, in.Media, time.Duration(start)*time.Second, in.OutPath); err != nil {
		return Result{Report: rep}, err
	}
	rep.Output = in.OutPath
	rep.Trimmed = true
	logger.Info().Str("output", in.OutPath).Msg("trimmed")
	return Result{Report: rep}, nil
}

// search runs both modes side by side. Each gets its own oracle; they share
// nothing but the read-only media.
func (u Usecase) search(ctx context.Context, in Input, duration float64, logger zerolog.Logger) (boundary.Result, boundary.Result, error) {
	modes := []boundary.Mode{boundary.BlackWhite, boundary.Static}
	results := make([]boundary.Result, len(modes))

	finderLog := log.WithComponent("finder").With().Str("media", in.Media).Logger()
	g, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		i, mode := i, mode
		results[i] = boundary.Result{Mode: mode}
		minLength := boundary.MinLength(mode)
		if float64(minLength) >= duration {
			logger.Debug().Str("mode", mode.String()).Float64("duration", duration).Msg("media shorter than run length, skipping")
			continue
		}
		g.Go(func() error {
			f := boundary.New(
				boundary.NewOracle(u.d.Analyzer, in.Media, mode),
				boundary.WithRefine(in.Refine),
				boundary.WithLogger(finderLog),
			)
			res, err := f.Find(gctx, duration, minLength, mode)
			if err != nil {
				return fmt.Errorf("%s search: %w", mode, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return boundary.Result{}, boundary.Result{}, err
	}
	return results[0], results[1], nil
}

func modeReport(r boundary.Result) types.ModeReport {
	return types.ModeReport{Found: r.Found, StartSec: r.Start, Probes: r.Probes}
}
