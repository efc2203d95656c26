// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as caching, HTTP communication, storage, LLM providers and logging.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: In-memory cache built on patrickmn/go-cache
// - cache/redis: Redis-based cache implementation
// - cache/sqlite: Persistent SQLite cache used for stock footage
// - http/standard: Standard library HTTP client with retry and rate limiting
// - llm/openrouter: OpenRouter chat-completion and image-generation client
// - llm/claude: Anthropic Claude chat-completion client
// - logger/logrus: Structured logger with a date-stamped run log file
// - store/supabase: Supabase REST post store
// - store/sqlite: Local SQLite post store
// - tts/google: Google Cloud Text-to-Speech client
//
// # Design Philosophy
//
// Infrastructure components are designed to be:
// - Pluggable: Easy to swap implementations
// - Configurable: Accept configuration objects
// - Testable: Include both unit and integration tests
// - Production-ready: Include retries, timeouts, and error handling
//
// # Cache Implementations
//
// Memory Cache Example:
//
//	cache := memory.NewMemoryCache()
//	err := cache.Set(ctx, "key", []byte("value"), 1*time.Hour)
//	value, err := cache.Get(ctx, "key")
//
// Redis Cache Example:
//
//	config := config.RedisConfig{
//	    Address:  "localhost:6379",
//	    Password: "",
//	    DB:       0,
//	}
//	cache, err := redis.NewRedisCache(config)
//
// # HTTP Client
//
// The HTTP client includes automatic retry logic for transient failures:
//
//	client := standard.NewStandardHTTPClient(30 * time.Second)
//	resp, err := client.Get(ctx, "https://example.com")
//	if err != nil {
//	    // Handle error
//	}
//	defer resp.Body().Close()
//
// # Logger
//
// The logger supports structured logging with fields:
//
//	logger, err := logrus.New("logs", false)
//	logger.Info("Fetched news", map[string]interface{}{
//	    "source": "金色财经",
//	    "items":  42,
//	})
package infrastructure
