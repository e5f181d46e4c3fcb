package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flakyCache fails a fixed number of times before succeeding.
type flakyCache struct {
	Cache
	failures int
	calls    int
}

func (c *flakyCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.calls++
	if c.calls <= c.failures {
		return errors.New("transient failure")
	}
	return c.Cache.Set(ctx, key, data, ttl)
}

func (c *flakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, false, errors.New("transient failure")
	}
	return c.Cache.Get(ctx, key)
}

func TestRetryCacheSetRecovers(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyCache{Cache: NewNullCache(), failures: 2}
	c := WithRetry(flaky, 3, time.Millisecond)
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set should succeed on the third attempt: %v", err)
	}
	if flaky.calls != 3 {
		t.Errorf("calls = %d, want 3", flaky.calls)
	}
}

func TestRetryCacheSetExhausted(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyCache{Cache: NewNullCache(), failures: 10}
	c := WithRetry(flaky, 2, time.Millisecond)
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("v"), time.Hour); err == nil {
		t.Fatal("Set should fail after exhausting attempts")
	}
	if flaky.calls != 2 {
		t.Errorf("calls = %d, want 2", flaky.calls)
	}
}

func TestRetryCacheGetDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyCache{Cache: NewNullCache(), failures: 10}
	c := WithRetry(flaky, 2, time.Millisecond)
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get should degrade to a miss, got error: %v", err)
	}
	if hit || data != nil {
		t.Error("degraded Get should report a miss")
	}
}

func TestRetryCacheCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flaky := &flakyCache{Cache: NewNullCache(), failures: 10}
	c := WithRetry(flaky, 5, 10*time.Second)
	defer c.Close()

	err := c.Set(ctx, "key", []byte("v"), time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
