package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

type retryPolicy struct {
	attempts int
	base     time.Duration
	jitter   time.Duration
}

var (
	embedRetry  = retryPolicy{attempts: 3, base: 400 * time.Millisecond, jitter: 100 * time.Millisecond}
	upsertRetry = retryPolicy{attempts: 3, base: 200 * time.Millisecond, jitter: 100 * time.Millisecond}
)

// doWithRetry runs fn until it succeeds or the policy is exhausted, waiting
// base*2^n plus jitter between attempts.
func doWithRetry(ctx context.Context, log *logrus.Logger, label string, policy retryPolicy, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= policy.attempts; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == policy.attempts {
			break
		}

		wait := policy.base * time.Duration(1<<(attempt-1))
		if policy.jitter > 0 {
			wait += time.Duration(rand.Int63n(int64(policy.jitter)))
		}
		log.WithError(lastErr).WithFields(logrus.Fields{
			"label":     label,
			"attempt":   attempt,
			"max":       policy.attempts,
			"wait_time": wait,
		}).Warn("Seed step failed, retrying")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	log.WithError(lastErr).WithField("label", label).Error("Seed step failed after all attempts")
	return lastErr
}
