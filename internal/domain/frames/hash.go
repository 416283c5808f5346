package frames

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"strings"

	"github.com/corona10/goimagehash"
)

// Hasher turns a frame into a comparable content hash.
type Hasher interface {
	Hash(img *image.Gray) (string, error)
}

type HashKind string

const (
	HashExact      HashKind = "exact"
	HashAverage    HashKind = "average"
	HashDifference HashKind = "difference"
	HashPerception HashKind = "perception"
)

func ParseHashKind(s string) (HashKind, error) {
	switch k := HashKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return HashExact, nil
	case HashExact, HashAverage, HashDifference, HashPerception:
		return k, nil
	default:
		return "", fmt.Errorf("unknown hash kind %q (want exact, average, difference or perception)", s)
	}
}

func NewHasher(k HashKind) Hasher {
	switch k {
	case HashAverage:
		return PerceptualHasher{fn: goimagehash.AverageHash}
	case HashDifference:
		return PerceptualHasher{fn: goimagehash.DifferenceHash}
	case HashPerception:
		return PerceptualHasher{fn: goimagehash.PerceptionHash}
	default:
		return ExactHasher{}
	}
}

// ExactHasher hashes the raw pixels, so two frames match only when they are
// pixel-identical at the decoded size.
type ExactHasher struct{}

func (ExactHasher) Hash(img *image.Gray) (string, error) {
	if pixelCount(img) == 0 {
		return "", errEmptyFrame
	}
	h := sha256.New()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[off : off+b.Dx()])
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// PerceptualHasher tolerates encoder noise between otherwise frozen frames.
type PerceptualHasher struct {
	fn func(image.Image) (*goimagehash.ImageHash, error)
}

func (p PerceptualHasher) Hash(img *image.Gray) (string, error) {
	if pixelCount(img) == 0 {
		return "", errEmptyFrame
	}
	h, err := p.fn(img)
	if err != nil {
		return "", err
	}
	return h.ToString(), nil
}
