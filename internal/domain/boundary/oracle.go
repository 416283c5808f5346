package boundary

import "context"

// Analyzer classifies single frames of a media file, addressed by second.
type Analyzer interface {
	IsBlackOrWhite(ctx context.Context, media string, sec int) (bool, error)
	ContentHash(ctx context.Context, media string, sec int) (string, error)
}

// NewOracle returns a fresh oracle for one (media, mode) search.
func NewOracle(a Analyzer, media string, mode Mode) Oracle {
	if mode == Static {
		return NewStaticOracle(a, media)
	}
	return NewBlackWhiteOracle(a, media)
}

// NewBlackWhiteOracle ignores the run start: each second is judged on its own.
// Answers are memoized for the lifetime of the oracle.
func NewBlackWhiteOracle(a Analyzer, media string) Oracle {
	seen := make(map[int]bool)
	return OracleFunc(func(ctx context.Context, _, t int) (bool, error) {
		if v, ok := seen[t]; ok {
			return v, nil
		}
		v, err := a.IsBlackOrWhite(ctx, media, t)
		if err != nil {
			return false, err
		}
		seen[t] = v
		return v, nil
	})
}

// NewStaticOracle matches a second when its content hash equals the hash of
// the run's first frame, so the whole run must be one frozen picture.
func NewStaticOracle(a Analyzer, media string) Oracle {
	hashes := make(map[int]string)
	hashAt := func(ctx context.Context, t int) (string, error) {
		if h, ok := hashes[t]; ok {
			return h, nil
		}
		h, err := a.ContentHash(ctx, media, t)
		if err != nil {
			return "", err
		}
		hashes[t] = h
		return h, nil
	}
	return OracleFunc(func(ctx context.Context, runStart, t int) (bool, error) {
		ref, err := hashAt(ctx, runStart)
		if err != nil {
			return false, err
		}
		if t == runStart {
			return true, nil
		}
		h, err := hashAt(ctx, t)
		if err != nil {
			return false, err
		}
		return h == ref, nil
	})
}
