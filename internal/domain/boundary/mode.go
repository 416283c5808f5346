package boundary

import (
	"errors"
	"fmt"
	"math"
)

// Mode selects which frame class a search looks for.
type Mode int

const (
	// BlackWhite matches frames that are mostly black or almost fully white.
	BlackWhite Mode = iota
	// Static matches frames identical to the first frame of the run.
	Static
)

func (m Mode) String() string {
	switch m {
	case BlackWhite:
		return "blackwhite"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MinLength returns the run length, in seconds, a mode needs before a run
// counts as a trim point.
func MinLength(m Mode) int {
	if m == Static {
		return 10
	}
	return 5
}

var (
	// ErrInvalidInput is returned by Find before any scanning happens.
	ErrInvalidInput = errors.New("invalid search input")

	// ErrOracleUnavailable marks an oracle that cannot classify anything at
	// all (decoder missing, media unreadable). Searches stop and report
	// no boundary instead of failing.
	ErrOracleUnavailable = errors.New("frame oracle unavailable")
)

// Result is the outcome of one search.
type Result struct {
	Start  int
	Found  bool
	Mode   Mode
	Probes int
}

// Window is the inclusive range of candidate run starts, scanned from Start
// down to End.
type Window struct {
	Start int
	End   int
}

// InitialWindow never looks earlier than 20% into the media and never starts
// a run that would pass the end of it.
func InitialWindow(duration float64, minLength int) Window {
	return Window{
		Start: int(math.Floor(duration - float64(minLength))),
		End:   int(math.Ceil(0.2 * duration)),
	}
}

func validate(duration float64, minLength int) error {
	switch {
	case math.IsNaN(duration) || duration <= 0:
		return fmt.Errorf("%w: duration must be > 0, got %v", ErrInvalidInput, duration)
	case minLength <= 0:
		return fmt.Errorf("%w: min length must be > 0, got %d", ErrInvalidInput, minLength)
	case float64(minLength) >= duration:
		return fmt.Errorf("%w: min length %d must be < duration %v", ErrInvalidInput, minLength, duration)
	}
	return nil
}
