// Package frames classifies single decoded video frames: black or white
// detection and content hashing for frozen-picture detection.
package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// Source decodes one downscaled grayscale frame at the given offset.
type Source interface {
	Frame(ctx context.Context, media string, at time.Duration) (*image.Gray, error)
}

// Thresholds follow ffmpeg's blackdetect defaults for the black test.
type Thresholds struct {
	// PixelThreshold is the luma fraction (0..1) at or below which a pixel is black.
	PixelThreshold float64
	// PictureRatio is the fraction of black pixels that makes a frame black.
	PictureRatio float64
	// WhiteLuma is the average luma (0..255) above which a frame is white.
	WhiteLuma float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		PixelThreshold: 0.10,
		PictureRatio:   0.98,
		WhiteLuma:      245,
	}
}

var errEmptyFrame = errors.New("empty frame")

// IsBlack reports whether enough pixels sit at or below the black threshold.
func IsBlack(img *image.Gray, th Thresholds) (bool, error) {
	n := pixelCount(img)
	if n == 0 {
		return false, errEmptyFrame
	}
	limit := uint8(th.PixelThreshold * 255)
	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y <= limit {
				dark++
			}
		}
	}
	return float64(dark)/float64(n) >= th.PictureRatio, nil
}

// IsWhite reports whether the average luma is above WhiteLuma.
func IsWhite(img *image.Gray, th Thresholds) (bool, error) {
	avg, err := AverageLuma(img)
	if err != nil {
		return false, err
	}
	return avg > th.WhiteLuma, nil
}

func AverageLuma(img *image.Gray) (float64, error) {
	n := pixelCount(img)
	if n == 0 {
		return 0, errEmptyFrame
	}
	var sum int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += int(img.GrayAt(x, y).Y)
		}
	}
	return float64(sum) / float64(n), nil
}

func pixelCount(img *image.Gray) int {
	if img == nil {
		return 0
	}
	return img.Bounds().Dx() * img.Bounds().Dy()
}

// Analyzer answers per-second classification questions about a media file.
type Analyzer struct {
	src    Source
	hasher Hasher
	th     Thresholds
}

func NewAnalyzer(src Source, h Hasher, th Thresholds) *Analyzer {
	if h == nil {
		h = ExactHasher{}
	}
	return &Analyzer{src: src, hasher: h, th: th}
}

func (a *Analyzer) IsBlackOrWhite(ctx context.Context, media string, sec int) (bool, error) {
	img, err := a.frame(ctx, media, sec)
	if err != nil {
		return false, err
	}
	black, err := IsBlack(img, a.th)
	if err != nil {
		return false, fmt.Errorf("frame at %ds: %w", sec, err)
	}
	if black {
		return true, nil
	}
	white, err := IsWhite(img, a.th)
	if err != nil {
		return false, fmt.Errorf("frame at %ds: %w", sec, err)
	}
	return white, nil
}

func (a *Analyzer) ContentHash(ctx context.Context, media string, sec int) (string, error) {
	img, err := a.frame(ctx, media, sec)
	if err != nil {
		return "", err
	}
	h, err := a.hasher.Hash(img)
	if err != nil {
		return "", fmt.Errorf("hash frame at %ds: %w", sec, err)
	}
	return h, nil
}

func (a *Analyzer) frame(ctx context.Context, media string, sec int) (*image.Gray, error) {
	img, err := a.src.Frame(ctx, media, time.Duration(sec)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("decode frame at %ds: %w", sec, err)
	}
	return img, nil
}
