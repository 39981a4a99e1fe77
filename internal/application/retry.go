package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
)

// RetryPolicy bounds how often a failed bootstrap is attempted again within
// one sweep. With Multiplier 1 and Jitter 0 the delay is fixed.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	Delay      time.Duration
	Multiplier float64
	// Jitter is the fraction of each delay randomised in both directions.
	Jitter float64
	// MaxDelay caps every delay, jitter included. Zero leaves it uncapped.
	MaxDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries, Delay: DefaultRetryDelay, Multiplier: 1}
}

func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0, got %d", p.MaxRetries)
	}
	if p.Delay < 0 {
		return fmt.Errorf("retry delay must be >= 0, got %s", p.Delay)
	}
	if p.Multiplier != 0 && p.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be >= 1, got %v", p.Multiplier)
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		return fmt.Errorf("retry jitter must be within [0,1], got %v", p.Jitter)
	}
	if p.MaxDelay < 0 {
		return fmt.Errorf("retry max delay must be >= 0, got %s", p.MaxDelay)
	}
	return nil
}

// Backoff returns the delay to wait before retry number n (1-based).
func (p RetryPolicy) Backoff(n int, random func() float64) time.Duration {
	if n < 1 || p.Delay <= 0 {
		return 0
	}

	delay := float64(p.Delay)
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	for i := 1; i < n; i++ {
		delay *= multiplier
	}

	if p.Jitter > 0 {
		if random == nil {
			random = rand.Float64
		}
		delay += delay * p.Jitter * (2*random() - 1)
	}

	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

type retryHooks struct {
	onFailure func(attempt int, err error)
	onRetry   func(retry int, delay time.Duration)
	random    func() float64
}

// retry runs fn once plus up to MaxRetries more times. Context cancellation
// aborts immediately with the context error.
func (p RetryPolicy) retry(ctx context.Context, clock ports.Clock, hooks retryHooks, fn func(ctx context.Context) error) (int, error) {
	attempts := 0
	for {
		attempts++
		err := fn(ctx)
		if err == nil {
			return attempts, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempts, ctxErr
		}
		if hooks.onFailure != nil {
			hooks.onFailure(attempts, err)
		}

		retryNumber := attempts
		if retryNumber > p.MaxRetries {
			return attempts, errors.Join(domain.ErrRetriesExhausted, err)
		}

		delay := p.Backoff(retryNumber, hooks.random)
		if hooks.onRetry != nil {
			hooks.onRetry(retryNumber, delay)
		}
		if err := clock.Sleep(ctx, delay); err != nil {
			return attempts, err
		}
	}
}
