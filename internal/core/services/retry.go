package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// RetryPolicy maps a failed attempt to the wait before the next one.
type RetryPolicy struct {
	// Base is raised to the zero-based attempt index.
	Base float64

	// Unit scales exponential waits.
	Unit time.Duration

	// RateLimitWait is used after a 429 that carries no Retry-After,
	// regardless of the attempt.
	RateLimitWait time.Duration
}

// RetryPolicyFrom builds a policy from settings.
func RetryPolicyFrom(s domain.RetrySettings) RetryPolicy {
	return RetryPolicy{Base: s.Base, Unit: s.Unit, RateLimitWait: s.RateLimitWait}
}

// Wait returns the pause after a failure with the given status on the given attempt.
func (p RetryPolicy) Wait(status, attempt int) time.Duration {
	return p.waitFor(status, attempt, 0)
}

// waitFor is Wait with the server's Retry-After taking precedence on a 429.
func (p RetryPolicy) waitFor(status, attempt int, retryAfter time.Duration) time.Duration {
	if domain.IsRateLimitedStatus(status) {
		if retryAfter > 0 {
			return retryAfter
		}
		return p.RateLimitWait
	}
	return time.Duration(math.Pow(p.Base, float64(attempt)) * float64(p.Unit))
}

// RetryObserver is told about every wait the executor schedules.
type RetryObserver func(op string, attempt, status int, wait time.Duration)

// RetryExecutor runs remote operations under the status-code policy:
// 403, 404 and invalid input fail at once, 429 waits for Retry-After or a
// fixed time, anything else waits exponentially until the attempt budget is
// spent. The executor is the only place a 429 pause is taken.
type RetryExecutor struct {
	policy   RetryPolicy
	log      *logger.Logger
	observer RetryObserver
}

// NewRetryExecutor creates a retry executor.
func NewRetryExecutor(policy RetryPolicy, log *logger.Logger) *RetryExecutor {
	return &RetryExecutor{policy: policy, log: log}
}

// Observe registers a callback for scheduled waits.
func (r *RetryExecutor) Observe(fn RetryObserver) {
	r.observer = fn
}

// policyBackOff feeds the status of the last failure into the wait calculation.
type policyBackOff struct {
	policy     RetryPolicy
	status     int
	attempt    int
	retryAfter time.Duration
}

func (b *policyBackOff) NextBackOff() time.Duration {
	return b.policy.waitFor(b.status, b.attempt, b.retryAfter)
}

func (b *policyBackOff) Reset() {
	b.status, b.attempt, b.retryAfter = 0, 0, 0
}

// unrecoverable reports whether a failed outcome must not be retried.
func unrecoverable[T any](o domain.Outcome[T]) bool {
	return domain.IsPermanent(o.Status()) || domain.IsUnrecoverable(o.Err())
}

// Execute runs fn until it succeeds, fails permanently or has been tried
// budget times. The final outcome records how many attempts were made.
// Policy failures are returned as failed outcomes, never as panics.
func Execute[T any](
	ctx context.Context,
	r *RetryExecutor,
	op string,
	budget int,
	fn func(ctx context.Context) domain.Outcome[T],
) domain.Outcome[T] {
	if budget < 1 {
		budget = 1
	}

	schedule := &policyBackOff{policy: r.policy}
	attempts := 0
	var last domain.Outcome[T]

	_, _ = backoff.Retry(ctx, func() (T, error) {
		var zero T
		attempts++
		last = fn(ctx)
		if last.OK() {
			return last.Value(), nil
		}
		if unrecoverable(last) {
			return zero, backoff.Permanent(last.Err())
		}
		schedule.status = last.Status()
		schedule.attempt = attempts - 1
		schedule.retryAfter = domain.RetryAfterOf(last.Err())
		return zero, last.Err()
	},
		backoff.WithBackOff(schedule),
		backoff.WithMaxTries(uint(budget)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.log.Debug("%s: attempt %d failed (status %d), retrying in %s: %v",
				op, attempts, schedule.status, wait, err)
			if r.observer != nil {
				r.observer(op, attempts, schedule.status, wait)
			}
		}),
	)

	if last.OK() {
		return last.WithAttempts(attempts)
	}
	if err := ctx.Err(); err != nil && attempts < budget && !unrecoverable(last) {
		r.log.Warn("%s: cancelled after %d attempts: %v", op, attempts, err)
		return domain.Failure[T](last.Status(), err).WithAttempts(attempts)
	}
	if unrecoverable(last) {
		r.log.Debug("%s: permanent failure (status %d): %v", op, last.Status(), last.Err())
		return last.WithAttempts(attempts)
	}
	r.log.Warn("%s: giving up after %d attempts: %v", op, attempts, last.Err())
	return domain.Failure[T](last.Status(), fmt.Errorf("%w: %w", domain.ErrRetriesExhausted, last.Err())).WithAttempts(attempts)
}
