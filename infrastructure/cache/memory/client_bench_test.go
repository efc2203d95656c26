package memory

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"
)

// feedBody approximates a cached RSS payload.
var feedBody = bytes.Repeat([]byte("<item><title>每日区块链动态</title></item>"), 64)

func BenchmarkMemoryCache_Get(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("feed:https://source-%d.example.com/rss", i)
		cache.Set(ctx, key, feedBody, 1*time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("feed:https://source-%d.example.com/rss", i%1000)
		_, _ = cache.Get(ctx, key)
	}
}

func BenchmarkMemoryCache_Set(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("feed:https://source-%d.example.com/rss", i)
		_ = cache.Set(ctx, key, feedBody, 1*time.Hour)
	}
}

func BenchmarkMemoryCache_Delete(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("feed:https://source-%d.example.com/rss", i)
		cache.Set(ctx, key, feedBody, 1*time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("feed:https://source-%d.example.com/rss", i)
		_ = cache.Delete(ctx, key)
	}
}

func BenchmarkMemoryCache_ConcurrentGet(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("footage:%032x", i)
		cache.Set(ctx, key, feedBody, 1*time.Hour)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("footage:%032x", i%100)
			_, _ = cache.Get(ctx, key)
			i++
		}
	})
}

func BenchmarkMemoryCache_ConcurrentSet(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("footage:%032x", i)
			_ = cache.Set(ctx, key, feedBody, 1*time.Hour)
			i++
		}
	})
}

func BenchmarkMemoryCache_ExpiredItemCleanup(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("feed:https://source-%d.example.com/rss", i)
		cache.Set(ctx, key, feedBody, 1*time.Nanosecond)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("feed:https://source-%d.example.com/rss", i%1000)
		_, _ = cache.Get(ctx, key)
	}
}
