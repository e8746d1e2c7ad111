package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    float64
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: time.Second,
		MaxDelay:  15 * time.Second,
		Jitter:    0.2,
	}
}

// Do runs op until it succeeds or the attempt budget is spent. Waits double
// between attempts up to MaxDelay; no wait follows the final attempt.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = time.Second
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = policy.BaseDelay
	}

	var last error
	delay := policy.BaseDelay

	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		last = op(ctx)
		if last == nil {
			return nil
		}

		if attempt == policy.Attempts {
			break
		}

		if err := Sleep(ctx, jittered(delay, policy.Jitter)); err != nil {
			return err
		}

		delay *= 2
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return fmt.Errorf("after %d attempts: %w", policy.Attempts, last)
}

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SleepBetween waits a uniformly random duration in [min, max].
func SleepBetween(ctx context.Context, min, max time.Duration) error {
	if max < min {
		max = min
	}

	d := min
	if span := max - min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span) + 1))
	}

	return Sleep(ctx, d)
}

func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}

	spread := 1 + (rand.Float64()*2-1)*jitter

	return time.Duration(float64(d) * spread)
}
