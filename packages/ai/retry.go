package ai

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// RetryConfig configures retries of model calls. MaxRetries of 0 means each
// call is attempted exactly once.
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MaxJitter   time.Duration
}

type retryingModel struct {
	inner       Model
	cfg         RetryConfig
	isRetryable func(error) bool
}

// WithRetry wraps model so that transient errors are retried with exponential
// backoff. Models that cannot classify their errors are never retried.
func WithRetry(model Model, cfg RetryConfig) Model {
	if cfg.MaxRetries <= 0 {
		return model
	}
	isRetryable := func(error) bool { return false }
	if c, ok := model.(retryClassifier); ok {
		isRetryable = c.IsRetryable
	}
	return &retryingModel{inner: model, cfg: cfg, isRetryable: isRetryable}
}

func (r *retryingModel) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		text, err := r.inner.Generate(ctx, prompt, params)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !r.isRetryable(err) {
			return "", err
		}
		if attempt >= r.cfg.MaxRetries {
			break
		}

		backoff := min(r.cfg.BaseBackoff<<attempt, r.cfg.MaxBackoff)

		var jitter time.Duration
		if r.cfg.MaxJitter > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(r.cfg.MaxJitter)))
			if err == nil {
				jitter = time.Duration(n.Int64())
			}
		}

		clog.FromContext(ctx).With("attempt", attempt+1).
			With("max_retries", r.cfg.MaxRetries).
			With("backoff", backoff+jitter).
			With("error", err.Error()).
			Warn("Model call failed, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return "", fmt.Errorf("model call failed after %d retries: %w", r.cfg.MaxRetries, lastErr)
}
