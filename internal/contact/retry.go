package contact

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      true,
	}
}

// Retrying wraps a Sender with exponential backoff on retryable errors.
type Retrying struct {
	next Sender
	cfg  RetryConfig
}

func NewRetrying(next Sender, cfg RetryConfig) *Retrying {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retrying{next: next, cfg: cfg}
}

func (r *Retrying) Send(ctx context.Context, m Message) error {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		lastErr = r.next.Send(ctx, m)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == r.cfg.MaxAttempts-1 {
			break
		}

		delay := time.Duration(float64(r.cfg.BaseDelay) * math.Pow(2, float64(attempt)))
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
		if r.cfg.Jitter {
			delay = time.Duration(float64(delay) * (0.5 + rand.Float64()*0.5))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
