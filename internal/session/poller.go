package session

import (
	"context"
	"time"
)

// Poll samples the composer text until it is non-empty and differs from
// baseline, or until timeout elapses. Returns the last read text, which
// the caller treats as "no capture" when empty or unchanged.
//
// This is a bounded busy-wait, not an event subscription: the page
// exposes no completion event for the transcription engine, so the
// poller trades efficiency for correctness inside a configurable
// budget.
func Poll(ctx context.Context, read func(context.Context) (string, error), baseline string, interval, timeout time.Duration) string {
	deadline := time.Now().Add(timeout)
	var text string

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return text
		case <-time.After(interval):
		}

		current, err := read(ctx)
		if err != nil {
			// A read failure mid-poll is not worth aborting the whole
			// capture over; the next tick may succeed.
			continue
		}
		text = current
		if text != "" && text != baseline {
			return text
		}
	}
	return text
}
