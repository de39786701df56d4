package aggregates

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	domainagg "github.com/yungbote/ledger-backend/internal/domain/aggregates"
)

const (
	DefaultRetryMaxAttempts = 5
	DefaultRetryBaseDelay   = 10 * time.Millisecond
	DefaultRetryMaxDelay    = 200 * time.Millisecond
)

// RetryPolicy bounds the conflict-retry loop. MaxAttempts counts the first
// attempt. Schedule builds a fresh backoff per command; nil means retry
// immediately. MaxElapsed of zero leaves total time unbounded.
type RetryPolicy struct {
	MaxAttempts int
	Schedule    func() backoff.BackOff
	MaxElapsed  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultRetryMaxAttempts,
		Schedule:    ExponentialSchedule(DefaultRetryBaseDelay, DefaultRetryMaxDelay),
	}
}

func ImmediateSchedule() func() backoff.BackOff {
	return func() backoff.BackOff { return &backoff.ZeroBackOff{} }
}

func FixedSchedule(d time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff { return backoff.NewConstantBackOff(d) }
}

// ExponentialSchedule doubles from base up to max without jitter.
func ExponentialSchedule(base, max time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = base
		b.MaxInterval = max
		b.Multiplier = 2
		b.RandomizationFactor = 0
		return b
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Schedule == nil {
		p.Schedule = ImmediateSchedule()
	}
	return p
}

// nonDecreasing clamps a schedule so no delay is shorter than the one before.
type nonDecreasing struct {
	b    backoff.BackOff
	last time.Duration
}

func (n *nonDecreasing) NextBackOff() time.Duration {
	d := n.b.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if d < n.last {
		d = n.last
	}
	n.last = d
	return d
}

func (n *nonDecreasing) Reset() {
	n.b.Reset()
	n.last = 0
}

// retryOnConflict runs attempt until it succeeds, fails with a non-conflict
// error, or the policy runs out. attempt receives the 1-based attempt number.
// It returns the number of attempts made.
//
// Outcomes: nil on success; the attempt's own error for anything that is not
// a conflict; CodeCanceled when ctx ends; CodeRetriesExhausted wrapping the
// last conflict otherwise.
func retryOnConflict(ctx context.Context, policy RetryPolicy, hooks Hooks, op string, attempt func(ctx context.Context, n int) error) (int, error) {
	policy = policy.withDefaults()
	if hooks == nil {
		hooks = noopHooks{}
	}

	attempts := 0
	operation := func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		attempts++
		err := attempt(ctx, attempts)
		if err == nil {
			return struct{}{}, nil
		}
		if !domainagg.IsConflict(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&nonDecreasing{b: policy.Schedule()}),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(policy.MaxElapsed),
		backoff.WithNotify(func(error, time.Duration) { hooks.IncRetry(op) }),
	)
	if err == nil {
		return attempts, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return attempts, MapError(op, err)
	case domainagg.IsConflict(err):
		return attempts, domainagg.NewError(domainagg.CodeRetriesExhausted, op, "gave up after conflicting attempts", err)
	default:
		return attempts, err
	}
}
