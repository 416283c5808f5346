package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/forPelevin/tailcut/internal/domain/boundary"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeVideoTool struct {
	duration time.Duration
	probeErr error
	trimErr  error

	trimEnds []time.Duration
	trimOuts []string
}

func (f *fakeVideoTool) ProbeDuration(_ context.Context, _ string) (time.Duration, error) {
	return f.duration, f.probeErr
}

func (f *fakeVideoTool) Trim(_ context.Context, _ string, end time.Duration, out string) error {
	if f.trimErr != nil {
		return f.trimErr
	}
	f.trimEnds = append(f.trimEnds, end)
	f.trimOuts = append(f.trimOuts, out)
	return nil
}

// fakeAnalyzer is called from both mode searches at once.
type fakeAnalyzer struct {
	black  func(sec int) bool
	frozen func(sec int) bool

	mu    sync.Mutex
	calls int
}

func (f *fakeAnalyzer) IsBlackOrWhite(_ context.Context, _ string, sec int) (bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.black(sec), nil
}

func (f *fakeAnalyzer) ContentHash(_ context.Context, _ string, sec int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.frozen(sec) {
		return "frozen", nil
	}
	return fmt.Sprintf("frame-%d", sec), nil
}

func from(start int) func(int) bool { return func(sec int) bool { return sec >= start } }
func never(int) bool { return false }

func TestRun_Selection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		black    func(int) bool
		frozen   func(int) bool
		wantSec  int
		wantMode string
	}{
		{name: "static earlier", black: from(50), frozen: from(40), wantSec: 40, wantMode: "static"},
		{name: "blackwhite earlier", black: from(30), frozen: from(40), wantSec: 30, wantMode: "blackwhite"},
		{name: "tie prefers blackwhite", black: from(40), frozen: from(40), wantSec: 40, wantMode: "blackwhite"},
		{name: "blackwhite only", black: from(100), frozen: never, wantSec: 100, wantMode: "blackwhite"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			video := &fakeVideoTool{duration: 120 * time.Second}
			uc := New(Deps{
				Video:    video,
				Analyzer: &fakeAnalyzer{black: tc.black, frozen: tc.frozen},
			})

			res, err := uc.Run(context.Background(), Input{Media: "in.mp4", OutPath: "out.mp4"})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			rep := res.Report
			if rep.BoundarySec == nil {
				t.Fatalf("expected boundary, got none (reason %q)", rep.Reason)
			}
			if *rep.BoundarySec != tc.wantSec || rep.Mode != tc.wantMode {
				t.Fatalf("boundary = %d (%s), want %d (%s)", *rep.BoundarySec, rep.Mode, tc.wantSec, tc.wantMode)
			}
			if !rep.Trimmed || rep.Output != "out.mp4" {
				t.Fatalf("expected trimmed output, got %+v", rep)
			}
			if len(video.trimEnds) != 1 || video.trimEnds[0] != time.Duration(tc.wantSec)*time.Second {
				t.Fatalf("unexpected trim calls: %v", video.trimEnds)
			}
		})
	}
}

func TestRun_NoTrimPoint(t *testing.T) {
	t.Parallel()

	video := &fakeVideoTool{duration: 20 * time.Second}
	uc := New(Deps{Video: video, Analyzer: &fakeAnalyzer{black: never, frozen: never}})

	res, err := uc.Run(context.Background(), Input{Media: "in.mp4", OutPath: "out.mp4"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Report.BoundarySec != nil || res.Report.Trimmed {
		t.Fatalf("expected no trim, got %+v", res.Report)
	}
	if res.Report.Reason != ReasonNoTrimPoint {
		t.Fatalf("unexpected reason %q", res.Report.Reason)
	}
	if len(video.trimEnds) != 0 {
		t.Fatalf("trim must not run")
	}
}

func TestRun_DryRunSkipsTrim(t *testing.T) {
	t.Parallel()

	video := &fakeVideoTool{duration: 120 * time.Second}
	uc := New(Deps{Video: video, Analyzer: &fakeAnalyzer{black: from(100), frozen: never}})

	res, err := uc.Run(context.Background(), Input{Media: "in.mp4", OutPath: "out.mp4", DryRun: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Report.BoundarySec == nil || *res.Report.BoundarySec != 100 {
		t.Fatalf("expected boundary 100, got %+v", res.Report)
	}
	if res.Report.Trimmed || len(video.trimEnds) != 0 {
		t.Fatalf("dry run must not trim")
	}
}

func TestRun_ShortMediaSkipsStatic(t *testing.T) {
	t.Parallel()

	an := &fakeAnalyzer{black: from(4), frozen: from(0)}
	video := &fakeVideoTool{duration: 10 * time.Second}
	uc := New(Deps{Video: video, Analyzer: an})

	res, err := uc.Run(context.Background(), Input{Media: "in.mp4", DryRun: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Report.Static.Found || res.Report.Static.Probes != 0 {
		t.Fatalf("static search must be skipped, got %+v", res.Report.Static)
	}
	if res.Report.BoundarySec == nil || *res.Report.BoundarySec != 4 {
		t.Fatalf("expected blackwhite boundary 4, got %+v", res.Report)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	probeErr := errors.New("ffprobe exploded")
	uc := New(Deps{Video: &fakeVideoTool{probeErr: probeErr}, Analyzer: &fakeAnalyzer{black: never, frozen: never}})
	if _, err := uc.Run(context.Background(), Input{Media: "in.mp4"}); !errors.Is(err, probeErr) {
		t.Fatalf("expected probe error, got %v", err)
	}

	trimErr := errors.New("disk full")
	uc = New(Deps{
		Video:    &fakeVideoTool{duration: 120 * time.Second, trimErr: trimErr},
		Analyzer: &fakeAnalyzer{black: from(100), frozen: never},
	})
	res, err := uc.Run(context.Background(), Input{Media: "in.mp4", OutPath: "out.mp4"})
	if !errors.Is(err, trimErr) {
		t.Fatalf("expected trim error, got %v", err)
	}
	if res.Report.BoundarySec == nil {
		t.Fatalf("report should keep the boundary found before the trim failed")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uc := New(Deps{
		Video:    &fakeVideoTool{duration: 120 * time.Second},
		Analyzer: &fakeAnalyzer{black: from(0), frozen: from(0)},
	})
	_, err := uc.Run(ctx, Input{Media: "in.mp4"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

var _ boundary.Analyzer = (*fakeAnalyzer)(nil)
