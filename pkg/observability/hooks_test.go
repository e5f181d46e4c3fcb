package observability

import (
	"context"
	"testing"
	"time"
)

type countingQueryHooks struct {
	NoopQueryHooks
	layoutStarts int
}

func (h *countingQueryHooks) OnLayoutStart(ctx context.Context, filter string, sliceCount int) {
	h.layoutStarts++
}

type countingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *countingCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.hits++
}

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Must not panic
	Query().OnTraceLoadStart(ctx, "trace.json")
	Query().OnLayoutStart(ctx, "1,2", 10)
	Query().OnLayoutComplete(ctx, "1,2", 2, time.Millisecond, nil)
	Query().OnRenderComplete(ctx, "svg", time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 128)
}

func TestSetAndResetHooks(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	qh := &countingQueryHooks{}
	ch := &countingCacheHooks{}
	SetQueryHooks(qh)
	SetCacheHooks(ch)

	Query().OnLayoutStart(ctx, "1", 5)
	Cache().OnCacheHit(ctx, "layout")

	if qh.layoutStarts != 1 {
		t.Errorf("layoutStarts = %d, want 1", qh.layoutStarts)
	}
	if ch.hits != 1 {
		t.Errorf("hits = %d, want 1", ch.hits)
	}

	Reset()
	Query().OnLayoutStart(ctx, "1", 5)
	if qh.layoutStarts != 1 {
		t.Error("Reset did not restore noop query hooks")
	}
}

func TestSetNilHooksIgnored(t *testing.T) {
	defer Reset()
	SetQueryHooks(nil)
	SetCacheHooks(nil)

	// Still usable
	Query().OnLayoutStart(context.Background(), "1", 0)
	Cache().OnCacheMiss(context.Background(), "layout")
}
