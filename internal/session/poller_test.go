package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// delayedSource returns before until the given delay has elapsed, after
// afterwards.
func delayedSource(before, after string, delay time.Duration) func(context.Context) (string, error) {
	start := time.Now()
	return func(context.Context) (string, error) {
		if time.Since(start) >= delay {
			return after, nil
		}
		return before, nil
	}
}

func TestPoll_ReturnsChangedText(t *testing.T) {
	read := delayedSource("foo", "foo bar", 400*time.Millisecond)

	start := time.Now()
	got := Poll(context.Background(), read, "foo", 200*time.Millisecond, 2*time.Second)

	assert.Equal(t, "foo bar", got)
	// Converges within ~3 poll cycles of the change, not the full timeout.
	assert.Less(t, time.Since(start), 1200*time.Millisecond)
}

func TestPoll_TimeoutReturnsUnchangedValue(t *testing.T) {
	read := func(context.Context) (string, error) { return "foo", nil }

	start := time.Now()
	got := Poll(context.Background(), read, "foo", 100*time.Millisecond, 500*time.Millisecond)
	elapsed := time.Since(start)

	assert.Equal(t, "foo", got)
	// Runs the full timeout, give or take one interval.
	assert.GreaterOrEqual(t, elapsed, 400*time.Millisecond)
	assert.Less(t, elapsed, 800*time.Millisecond)
}

func TestPoll_EmptyBaselineRequiresNonEmptyText(t *testing.T) {
	read := delayedSource("", "hello", 200*time.Millisecond)

	got := Poll(context.Background(), read, "", 50*time.Millisecond, time.Second)
	assert.Equal(t, "hello", got)
}

func TestPoll_ToleratesReadErrors(t *testing.T) {
	var calls atomic.Int32
	read := func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("page busy")
		}
		return "captured", nil
	}

	got := Poll(context.Background(), read, "", 20*time.Millisecond, time.Second)
	assert.Equal(t, "captured", got)
}

func TestPoll_ContextCancelStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	read := func(context.Context) (string, error) { return "never", nil }
	got := Poll(ctx, read, "", 50*time.Millisecond, 5*time.Second)
	assert.Equal(t, "", got)
}
