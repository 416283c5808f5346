package ports

import (
	"context"
	"time"
)

type VideoTool interface {
	ProbeDuration(ctx context.Context, in string) (time.Duration, error)
	Trim(ctx context.Context, in string, end time.Duration, out string) error
}
