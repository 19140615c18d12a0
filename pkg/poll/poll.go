/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package poll provides a bounded fixed-interval retry utility shared by the
// registry readiness probe and the connectivity pod phase check.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrExhausted is returned (wrapped) when the attempt budget is spent without
// the condition succeeding.
var ErrExhausted = errors.New("poll: attempts exhausted")

// Condition is evaluated on every attempt. Returning (true, nil) stops the
// poll with success. Returning a non-nil error stops the poll immediately and
// the error is returned as-is. Returning (false, nil) schedules the next
// attempt.
type Condition func(ctx context.Context) (bool, error)

// Until runs condition up to attempts times spaced interval apart, evaluating
// the first attempt immediately. It stops early on success, on a terminal
// error from the condition, or on context cancellation. When the budget is
// spent it returns ErrExhausted wrapped with the attempt count and elapsed
// interval budget.
func Until(ctx context.Context, interval time.Duration, attempts int, condition Condition) error {
	if attempts < 1 {
		return fmt.Errorf("poll: attempts must be positive, got %d", attempts)
	}

	// Steps with Factor 1.0 keeps the interval fixed and the attempt count
	// exact, unlike a timeout-based budget which can under- or over-run by
	// one attempt on slow conditions.
	backoff := wait.Backoff{
		Duration: interval,
		Factor:   1.0,
		Steps:    attempts,
	}

	var attempt int
	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		attempt++
		return condition(ctx)
	})
	if err == nil {
		return nil
	}
	if wait.Interrupted(err) && ctx.Err() == nil {
		return fmt.Errorf("%w after %d attempts (%s apart)", ErrExhausted, attempt, interval)
	}
	return err
}
