//go:build integration

package itest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/tailcut/internal/ports/adapters/ffmpeg"
)

const modulePath = "github.com/forPelevin/tailcut"

// findRepoRoot walks up from the working directory to this module's go.mod.
func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		b, err := os.ReadFile(filepath.Join(wd, "go.mod"))
		if err == nil && bytes.Contains(b, []byte("module "+modulePath)) {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "", errors.New("could not locate go.mod for " + modulePath)
		}
		wd = parent
	}
}

func probeDurationSeconds(path string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	d, err := ffmpeg.New("", "", 0, 0).ProbeDuration(ctx, path)
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}
