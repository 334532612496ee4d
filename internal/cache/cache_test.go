package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testClient returns a Redis client backed by an in-process miniredis.
func testClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestResponseCacheSetAndGet(t *testing.T) {
	client, _ := testClient(t)
	rc := NewResponseCache(client)
	ctx := context.Background()

	// Miss.
	data, ok := rc.Get(ctx, "posts:my-post")
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	// Set and hit.
	body := []byte(`{"slug":"my-post"}`)
	rc.Set(ctx, "posts:my-post", body, PostTTL)

	data, ok = rc.Get(ctx, "posts:my-post")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}
}

func TestResponseCacheTTLExpiry(t *testing.T) {
	client, mr := testClient(t)
	rc := NewResponseCache(client)
	ctx := context.Background()

	rc.Set(ctx, "search:ai", []byte(`{}`), SearchTTL)

	mr.FastForward(SearchTTL + time.Second)

	if _, ok := rc.Get(ctx, "search:ai"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestResponseCacheInvalidateAll(t *testing.T) {
	client, mr := testClient(t)
	rc := NewResponseCache(client)
	ctx := context.Background()

	rc.Set(ctx, "posts:a", []byte("a"), PostTTL)
	rc.Set(ctx, "graph", []byte("g"), GraphTTL)
	rc.Set(ctx, "search:q", []byte("s"), SearchTTL)

	// Keys outside the response namespace survive.
	mr.Set("other:key", "keep")

	rc.InvalidateAll(ctx)

	for _, key := range []string{"posts:a", "graph", "search:q"} {
		if _, ok := rc.Get(ctx, key); ok {
			t.Errorf("expected miss for %q after InvalidateAll", key)
		}
	}
	if got, _ := mr.Get("other:key"); got != "keep" {
		t.Error("InvalidateAll must not touch foreign keys")
	}
}

func TestResponseCacheNilClient(t *testing.T) {
	rc := NewResponseCache(nil)
	ctx := context.Background()

	rc.Set(ctx, "k", []byte("v"), PostTTL)
	if _, ok := rc.Get(ctx, "k"); ok {
		t.Error("nil client must always miss")
	}
	rc.InvalidateAll(ctx)
}
