package boundary

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Oracle answers whether the frame at second t belongs to the qualifying
// class for a candidate run that starts at runStart.
type Oracle interface {
	Qualifies(ctx context.Context, runStart, t int) (bool, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(ctx context.Context, runStart, t int) (bool, error)

func (f OracleFunc) Qualifies(ctx context.Context, runStart, t int) (bool, error) {
	return f(ctx, runStart, t)
}

const (
	defaultMaxStep = 10
	defaultMinStep = 1
)

// Finder locates the earliest long qualifying run near the end of a media
// file. A Finder keeps no state between calls.
type Finder struct {
	oracle  Oracle
	maxStep int
	minStep int
	refine  bool
	log     zerolog.Logger
}

type Option func(*Finder)

func WithMaxStep(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.maxStep = n
		}
	}
}

func WithMinStep(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.minStep = n
		}
	}
}

// WithRefine enables the binary-search pass after the coarse scan.
func WithRefine(on bool) Option {
	return func(f *Finder) { f.refine = on }
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Finder) { f.log = l }
}

func New(o Oracle, opts ...Option) *Finder {
	f := &Finder{
		oracle:  o,
		maxStep: defaultMaxStep,
		minStep: defaultMinStep,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns the start second of the earliest qualifying run it can reach.
// Not finding a run is a normal outcome (Found == false), as is an oracle
// that turns out to be unavailable. Only invalid input and context
// cancellation are reported as errors.
func (f *Finder) Find(ctx context.Context, duration float64, minLength int, mode Mode) (Result, error) {
	res := Result{Mode: mode}
	if err := validate(duration, minLength); err != nil {
		return res, err
	}

	s := f.newSearch(ctx, duration, minLength)
	s.log = s.log.With().Str("mode", mode.String()).Logger()

	best, found, err := s.adaptive()
	if err == nil && found && f.refine {
		low := InitialWindow(duration, minLength).End
		best, err = s.refine(low, best)
	}
	res.Probes = s.probes
	if errors.Is(err, ErrOracleUnavailable) {
		s.log.Warn().Err(err).Msg("oracle unavailable, no boundary")
		return res, nil
	}
	if err != nil {
		return res, err
	}

	res.Start, res.Found = best, found
	s.log.Debug().Bool("found", found).Int("start", best).Int("probes", s.probes).Msg("search done")
	return res, nil
}

// FindSegmentAdaptive runs only the coarse descending scan.
func (f *Finder) FindSegmentAdaptive(ctx context.Context, duration float64, minLength int) (int, bool, error) {
	if err := validate(duration, minLength); err != nil {
		return 0, false, err
	}
	return f.newSearch(ctx, duration, minLength).adaptive()
}

// RefineSegmentStart binary-searches [low, high] for the smallest start whose
// run still qualifies. high is expected to qualify already.
func (f *Finder) RefineSegmentStart(ctx context.Context, duration float64, minLength, low, high int) (int, error) {
	if err := validate(duration, minLength); err != nil {
		return 0, err
	}
	return f.newSearch(ctx, duration, minLength).refine(low, high)
}

func (f *Finder) newSearch(ctx context.Context, duration float64, minLength int) *search {
	return &search{
		ctx:       ctx,
		oracle:    f.oracle,
		duration:  duration,
		minLength: minLength,
		maxStep:   f.maxStep,
		minStep:   f.minStep,
		log:       f.log,
	}
}

// search holds the per-call scan state.
type search struct {
	ctx       context.Context
	oracle    Oracle
	duration  float64
	minLength int
	maxStep   int
	minStep   int
	probes    int
	log       zerolog.Logger
}

// adaptive scans each pass from the latest start toward the earliest. Misses
// are skipped until the first hit; after that every hit overwrites bestStart
// and the first miss ends the pass. A hit re-centers the window around
// bestStart before the step is halved.
//
// The re-centering can skip a short qualifying run that lies outside the
// narrowed window. That behavior is kept as is.
func (s *search) adaptive() (int, bool, error) {
	win := InitialWindow(s.duration, s.minLength)
	bestStart, found := 0, false

	for step := s.maxStep; step >= s.minStep; step /= 2 {
		hit := false
		for t := win.Start; t >= win.End; t -= step {
			ok, err := s.qualifiesRun(t)
			if err != nil {
				return 0, false, err
			}
			if ok {
				bestStart, hit = t, true
				continue
			}
			if hit {
				break
			}
		}

		s.log.Debug().
			Int("step", step).
			Int("scan_start", win.Start).
			Int("scan_end", win.End).
			Bool("hit", hit).
			Int("best", bestStart).
			Msg("coarse pass")

		if hit {
			found = true
			win.Start = bestStart + step/2
			win.End = max(bestStart-step, win.End)
		}
	}
	return bestStart, found, nil
}

func (s *search) refine(low, high int) (int, error) {
	for high-low > 1 {
		mid := (low + high) / 2
		ok, err := s.qualifiesRun(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return high, nil
}

// qualifiesRun checks every second of [start, start+minLength). Runs that
// would pass the end of the media never qualify. A single oracle failure
// only disqualifies the run.
func (s *search) qualifiesRun(start int) (bool, error) {
	if float64(start+s.minLength) > s.duration {
		return false, nil
	}
	for i := 0; i < s.minLength; i++ {
		t := start + i
		if err := s.ctx.Err(); err != nil {
			return false, err
		}
		s.probes++
		ok, err := s.oracle.Qualifies(s.ctx, start, t)
		if err != nil {
			if errors.Is(err, ErrOracleUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false, err
			}
			s.log.Debug().Err(err).Int("t", t).Msg("classify failed, treating as non-qualifying")
			return false, nil
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
