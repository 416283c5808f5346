package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/tailcut/internal/domain/boundary"
)

const (
	DefaultFrameWidth  = 64
	DefaultFrameHeight = 36
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	width   int
	height  int
}

func New(ffmpegPath, ffprobePath string, frameW, frameH int) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if frameW <= 0 || frameH <= 0 {
		frameW, frameH = DefaultFrameWidth, DefaultFrameHeight
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, width: frameW, height: frameH}
}

func (a *Adapter) ProbeDuration(ctx context.Context, in string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// Frame decodes the first frame at or after at, scaled down and converted
// to full-range 8-bit gray so limited-range white reads as 255.
func (a *Adapter) Frame(ctx context.Context, in string, at time.Duration) (*image.Gray, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-nostdin",
		"-v", "error",
		"-ss", fmtSeconds(at),
		"-i", in,
		"-frames:v", "1",
		"-an", "-sn",
		"-vf", fmt.Sprintf("scale=%d:%d:out_range=full,format=gray", a.width, a.height),
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ffmpeg frame: %w: %v", boundary.ErrOracleUnavailable, err)
		}
		return nil, fmt.Errorf("ffmpeg frame at %s: %w\n%s", fmtSeconds(at), err, stderr.String())
	}
	want := a.width * a.height
	if len(out) != want {
		return nil, fmt.Errorf("ffmpeg frame at %s: got %d bytes, want %d", fmtSeconds(at), len(out), want)
	}
	return &image.Gray{
		Pix:    out,
		Stride: a.width,
		Rect:   image.Rect(0, 0, a.width, a.height),
	}, nil
}

// Trim keeps [0, end) of every stream without re-encoding.
func (a *Adapter) Trim(ctx context.Context, in string, end time.Duration, out string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-nostdin",
		"-y",
		"-v", "error",
		"-i", in,
		"-t", fmtSeconds(end),
		"-map", "0",
		"-c", "copy",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg trim: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
