package redis

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"blockchain-daily/pkg/config"
)

// Integration tests need a live server; set REDIS_TEST_ADDR to run them.
// Validation tests below run without one.

func testCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis integration test, set REDIS_TEST_ADDR to run")
	}

	cache, err := NewRedisCache(config.RedisConfig{Address: addr})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestNewRedisCache_EmptyAddress(t *testing.T) {
	cache, err := NewRedisCache(config.RedisConfig{Address: ""})

	if err == nil {
		t.Error("NewRedisCache should return error for empty address")
	}
	if cache != nil {
		t.Error("NewRedisCache should return nil cache for invalid config")
	}
}

func TestValidateKey(t *testing.T) {
	if err := validateKey("feed:https://www.jinse.cn/lives"); err != nil {
		t.Errorf("Feed key should be valid, got: %v", err)
	}
	if err := validateKey("footage:9b3a0f41c2d85e17"); err != nil {
		t.Errorf("Footage key should be valid, got: %v", err)
	}
	if err := validateKey(""); err == nil {
		t.Error("Empty key should be rejected")
	}
	if err := validateKey(strings.Repeat("k", maxKeyLength+1)); err == nil {
		t.Error("Oversized key should be rejected")
	}
}

func TestRedisCache_FeedRoundtrip(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	key := "feed:https://www.coindesk.com/arc/outboundfeeds/rss/"
	payload := []byte(`<rss><channel><item><title>比特币突破七万美元</title></item></channel></rss>`)

	if err := cache.Set(ctx, key, payload, 1*time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	defer cache.Delete(ctx, key)

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Errorf("Get returned error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Get returned %q, want %q", got, payload)
	}
}

func TestRedisCache_Get_Miss(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	got, err := cache.Get(ctx, "feed:https://never-fetched.example.com/rss")

	if err == nil {
		t.Error("Get should return error for missing key")
	}
	if got != nil {
		t.Error("Get should return nil value for missing key")
	}
}

func TestRedisCache_Set_RejectsEmptyValue(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "feed:https://www.jinse.cn/lives", nil, time.Hour); err == nil {
		t.Error("Set should reject an empty value")
	}
}

func TestRedisCache_Set_AppliesTTL(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	key := "feed:ttl-check"
	if err := cache.Set(ctx, key, []byte("stale soon"), 100*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	got, err := cache.Get(ctx, key)
	if err == nil {
		t.Error("Get should return error for expired key")
	}
	if got != nil {
		t.Error("Get should return nil for expired key")
	}
}

func TestRedisCache_Set_ZeroTTLNeverExpires(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	key := "footage:9b3a0f41c2d85e17"
	value := []byte(`{"query":"bitcoin trading","file":"cache/pexels/9b3a0f41c2d85e17.mp4"}`)

	if err := cache.Set(ctx, key, value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	defer cache.Delete(ctx, key)

	// Keys without expiration report a negative TTL.
	if ttl := cache.client.TTL(ctx, key).Val(); ttl > 0 {
		t.Errorf("Expected no expiration, TTL = %v", ttl)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Errorf("Get returned error: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}
}

func TestRedisCache_Delete_RemovesKey(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	key := "feed:delete-me"
	if err := cache.Set(ctx, key, []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete returned error: %v", err)
	}

	if _, err := cache.Get(ctx, key); err == nil {
		t.Error("Get should return error for deleted key")
	}
}

func TestRedisCache_Delete_MissingKey(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	if err := cache.Delete(ctx, "feed:never-existed"); err != nil {
		t.Errorf("Delete should return nil for missing key, got: %v", err)
	}
}
