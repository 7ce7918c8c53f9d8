package forceoauth

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy configures the exponential backoff applied to the userinfo request.
// Intervals grow by Multiplier from InitialInterval up to MaxInterval, each
// randomized by ±RandomizationFactor. Retrying stops after MaxRetries retries
// or once MaxElapsedTime has passed, whichever comes first.
type RetryPolicy struct {
	InitialInterval     time.Duration
	Multiplier          float64
	RandomizationFactor float64
	MaxInterval         time.Duration
	MaxElapsedTime      time.Duration
	MaxRetries          uint64
}

// DefaultRetryPolicy returns the policy Salesforce integrations are tuned for:
// 500ms initial interval, x1.5 growth, 50% jitter, 10s interval cap,
// 30s elapsed cap and at most 10 retries.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		InitialInterval:     DefaultInitialInterval,
		Multiplier:          DefaultMultiplier,
		RandomizationFactor: DefaultRandomizationFactor,
		MaxInterval:         DefaultMaxInterval,
		MaxElapsedTime:      DefaultMaxElapsedTime,
		MaxRetries:          DefaultMaxRetries,
	}
}

func (p *RetryPolicy) validate() error {
	if p.InitialInterval <= 0 {
		return fmt.Errorf("initial interval must be positive, got %v", p.InitialInterval)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be at least 1, got %v", p.Multiplier)
	}
	if p.RandomizationFactor < 0 || p.RandomizationFactor > 1 {
		return fmt.Errorf("randomization factor must be within [0, 1], got %v", p.RandomizationFactor)
	}
	if p.MaxInterval < p.InitialInterval {
		return fmt.Errorf("max interval %v is shorter than initial interval %v", p.MaxInterval, p.InitialInterval)
	}
	if p.MaxElapsedTime < 0 {
		return fmt.Errorf("max elapsed time must not be negative, got %v", p.MaxElapsedTime)
	}
	return nil
}

// newBackOff builds the backoff state for a single Lookup call.
// The returned value must not be shared between calls.
func (p *RetryPolicy) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.RandomizationFactor
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}
