package cache

import (
	"context"
	"time"
)

// retryCache decorates a Cache with retry on transient backend failures.
// Network-backed caches (redis) can hiccup under load; a miss is always an
// acceptable fallback, so Get gives up silently after the attempts are
// exhausted while Set and Delete surface the last error.
type retryCache struct {
	inner    Cache
	attempts int
	delay    time.Duration
}

// WithRetry wraps a cache so transient errors are retried with exponential
// backoff. attempts below 1 are treated as 1.
func WithRetry(inner Cache, attempts int, delay time.Duration) Cache {
	if attempts < 1 {
		attempts = 1
	}
	return &retryCache{inner: inner, attempts: attempts, delay: delay}
}

func (c *retryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var hit bool
	err := c.retry(ctx, func() error {
		var err error
		data, hit, err = c.inner.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, false, nil // degrade to a miss
	}
	return data, hit, nil
}

func (c *retryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.retry(ctx, func() error {
		return c.inner.Set(ctx, key, data, ttl)
	})
}

func (c *retryCache) Delete(ctx context.Context, key string) error {
	return c.retry(ctx, func() error {
		return c.inner.Delete(ctx, key)
	})
}

func (c *retryCache) Close() error {
	return c.inner.Close()
}

// retry executes fn up to the configured attempts, doubling the delay
// after each failure. Returns the last error if all attempts fail, or
// ctx.Err() if cancelled while waiting.
func (c *retryCache) retry(ctx context.Context, fn func() error) error {
	delay := c.delay
	var lastErr error

	for i := 0; i < c.attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if i < c.attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
