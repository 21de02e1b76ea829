package browser

import (
	"context"
	"time"

	random "github.com/mazen160/go-random"
)

// Pause sleeps a randomized interval between minMs and maxMs to reduce
// detectable automation cadence. It returns early when ctx is cancelled.
func Pause(ctx context.Context, minMs, maxMs int) {
	ms := minMs
	if maxMs > minMs {
		if jitter, err := random.IntRange(minMs, maxMs); err == nil {
			ms = jitter
		}
	}

	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
