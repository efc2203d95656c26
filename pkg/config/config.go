// ABOUTME: Configuration management for the pipeline with environment variable support
// ABOUTME: Defines immutable configuration structures loaded once at process start

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds all pipeline configuration. It is constructed once by
// LoadFromEnv and passed into every component constructor.
type Config struct {
	// Timezone is the IANA timezone all timestamps are converted to
	Timezone string

	// FetchHours is the lookback window for news fetching
	FetchHours int

	// MinContentLength is the minimum body length kept by the quality filter
	MinContentLength int

	// OutputDir holds backups, images, PDFs and videos
	OutputDir string

	// LogDir holds the date-rotated log file
	LogDir string

	// Features contains the optional-stage feature flags
	Features FeatureConfig

	// LLM contains completion/image provider configuration
	LLM LLMConfig

	// Sources contains per-provider scraper configuration
	Sources SourcesConfig

	// Store contains the post storage backend configuration
	Store StoreConfig

	// Cache contains cache backend configuration
	Cache CacheConfig

	// Email contains SMTP configuration for the report email
	Email EmailConfig

	// Pexels contains stock-footage provider configuration
	Pexels PexelsConfig

	// Video contains video composition configuration
	Video VideoConfig

	// TTS contains text-to-speech configuration
	TTS TTSConfig
}

// FeatureConfig holds the enable flags for each pipeline stage
type FeatureConfig struct {
	AISummary       bool
	ImageGeneration bool
	PDFGeneration   bool
	EmailSend       bool
	VideoGeneration bool
}

// LLMConfig holds completion provider configuration
type LLMConfig struct {
	// Provider selects the chat backend (openrouter/claude)
	Provider string

	// APIKey is the OpenRouter API key
	APIKey string

	// BaseURL is the OpenRouter API base URL
	BaseURL string

	// Model is the main article-generation model
	Model string

	// PromptModel is the cheaper model used for prompt authoring
	PromptModel string

	// ImageModel is the image-generation model
	ImageModel string

	// AnthropicAPIKey is the Claude API key (provider=claude)
	AnthropicAPIKey string

	// AnthropicModel is the Claude model name
	AnthropicModel string
}

// JinSeConfig holds the paginated JinSe API source configuration
type JinSeConfig struct {
	Enabled bool
	APIURL  string

	// Limit bounds the number of items requested; pages = ceil(Limit/20)
	Limit int
}

// RSSSourceConfig holds one RSS feed source configuration
type RSSSourceConfig struct {
	Name     string
	URL      string
	Language string
	Enabled  bool

	// FullText enables readability extraction when the feed body is short
	FullText bool
}

// SourcesConfig holds all news source configuration
type SourcesConfig struct {
	JinSe JinSeConfig
	RSS   []RSSSourceConfig
}

// StoreConfig holds the post storage backend configuration
type StoreConfig struct {
	// Type selects the backend (supabase/sqlite)
	Type string

	SupabaseURL string
	SupabaseKey string

	// SQLitePath is the database file used when Type is sqlite
	SQLitePath string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (memory/redis/sqlite)
	Type string

	Redis RedisConfig

	// SQLitePath is the cache database file used when Type is sqlite
	SQLitePath string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// EmailConfig holds SMTP submission configuration
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	From       string
	To         []string

	// AttachImages zips the generated images directory into the email
	AttachImages bool
}

// PexelsConfig holds stock-footage provider configuration
type PexelsConfig struct {
	APIKey      string
	Orientation string
	CacheDir    string
	FallbackDir string
}

// VideoConfig holds video composition configuration
type VideoConfig struct {
	OutputDir   string
	Width       int
	Height      int
	FPS         int
	FFmpegPath  string
	FFprobePath string
}

// TTSConfig holds text-to-speech configuration
type TTSConfig struct {
	LanguageCode string
	VoiceName    string
	SpeakingRate float64
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Timezone:         getEnvOrDefault("TIMEZONE", "Asia/Shanghai"),
		FetchHours:       getEnvAsIntOrDefault("FETCH_HOURS", 24),
		MinContentLength: getEnvAsIntOrDefault("MIN_CONTENT_LENGTH", 30),
		OutputDir:        getEnvOrDefault("OUTPUT_DIR", "output"),
		LogDir:           getEnvOrDefault("LOG_DIR", "logs"),
		Features: FeatureConfig{
			AISummary:       getEnvAsBoolOrDefault("ENABLE_AI_SUMMARY", true),
			ImageGeneration: getEnvAsBoolOrDefault("ENABLE_IMAGE_GENERATION", false),
			PDFGeneration:   getEnvAsBoolOrDefault("ENABLE_PDF_GENERATION", false),
			EmailSend:       getEnvAsBoolOrDefault("ENABLE_EMAIL_SEND", false),
			VideoGeneration: getEnvAsBoolOrDefault("ENABLE_VIDEO_GENERATION", false),
		},
		LLM: LLMConfig{
			Provider:        getEnvOrDefault("LLM_PROVIDER", "openrouter"),
			APIKey:          os.Getenv("OPENROUTER_API_KEY"),
			BaseURL:         getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:           getEnvOrDefault("OPENROUTER_MODEL", "google/gemini-2.0-flash-exp:free"),
			PromptModel:     getEnvOrDefault("OPENROUTER_PROMPT_MODEL", "google/gemini-2.0-flash-exp:free"),
			ImageModel:      getEnvOrDefault("GEMINI_IMAGE_MODEL", "google/gemini-2.5-flash-image-preview"),
			AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel:  getEnvOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		},
		Sources: SourcesConfig{
			JinSe: JinSeConfig{
				Enabled: getEnvAsBoolOrDefault("JINSE_ENABLED", true),
				APIURL:  getEnvOrDefault("JINSE_API_URL", "https://api.jinse.cn/noah/v2/lives"),
				Limit:   getEnvAsIntOrDefault("JINSE_LIMIT", 60),
			},
			RSS: []RSSSourceConfig{
				{
					Name:     "Odaily",
					URL:      getEnvOrDefault("ODAILY_RSS_URL", "https://rsshub.app/odaily/newsflash"),
					Language: "zh",
					Enabled:  getEnvAsBoolOrDefault("ODAILY_ENABLED", false),
				},
				{
					Name:     "Cointelegraph",
					URL:      getEnvOrDefault("COINTELEGRAPH_RSS_URL", "https://rsshub.app/cointelegraph"),
					Language: "en",
					Enabled:  getEnvAsBoolOrDefault("COINTELEGRAPH_ENABLED", false),
					FullText: getEnvAsBoolOrDefault("COINTELEGRAPH_FULLTEXT", false),
				},
				{
					Name:     "CoinDesk",
					URL:      getEnvOrDefault("COINDESK_RSS_URL", "https://rsshub.app/coindesk"),
					Language: "en",
					Enabled:  getEnvAsBoolOrDefault("COINDESK_ENABLED", false),
					FullText: getEnvAsBoolOrDefault("COINDESK_FULLTEXT", false),
				},
				{
					Name:     "The Block",
					URL:      getEnvOrDefault("THEBLOCK_RSS_URL", "https://rsshub.app/theblock"),
					Language: "en",
					Enabled:  getEnvAsBoolOrDefault("THEBLOCK_ENABLED", false),
				},
			},
		},
		Store: StoreConfig{
			Type:        getEnvOrDefault("STORE_TYPE", "supabase"),
			SupabaseURL: os.Getenv("SUPABASE_URL"),
			SupabaseKey: os.Getenv("SUPABASE_KEY"),
			SQLitePath:  getEnvOrDefault("STORE_SQLITE_PATH", "output/posts.db"),
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
			SQLitePath: getEnvOrDefault("CACHE_SQLITE_PATH", "cache/cache.db"),
		},
		Email: EmailConfig{
			SMTPServer:   os.Getenv("EMAIL_SMTP_SERVER"),
			SMTPPort:     getEnvAsIntOrDefault("EMAIL_SMTP_PORT", 587),
			Username:     os.Getenv("EMAIL_USERNAME"),
			Password:     os.Getenv("EMAIL_PASSWORD"),
			From:         os.Getenv("EMAIL_FROM"),
			To:           splitAndTrim(os.Getenv("EMAIL_TO")),
			AttachImages: getEnvAsBoolOrDefault("EMAIL_ATTACH_IMAGES", false),
		},
		Pexels: PexelsConfig{
			APIKey:      os.Getenv("PEXELS_API_KEY"),
			Orientation: getEnvOrDefault("VIDEO_ORIENTATION", "landscape"),
			CacheDir:    getEnvOrDefault("PEXELS_CACHE_DIR", "cache/pexels"),
			FallbackDir: getEnvOrDefault("FALLBACK_ASSETS_DIR", "assets/fallback"),
		},
		Video: VideoConfig{
			OutputDir:   getEnvOrDefault("VIDEO_OUTPUT_DIR", "output/videos"),
			Width:       getEnvAsIntOrDefault("VIDEO_WIDTH", 1920),
			Height:      getEnvAsIntOrDefault("VIDEO_HEIGHT", 1080),
			FPS:         getEnvAsIntOrDefault("VIDEO_FPS", 30),
			FFmpegPath:  getEnvOrDefault("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getEnvOrDefault("FFPROBE_PATH", "ffprobe"),
		},
		TTS: TTSConfig{
			LanguageCode: getEnvOrDefault("TTS_LANGUAGE_CODE", "cmn-CN"),
			VoiceName:    getEnvOrDefault("TTS_VOICE_NAME", "cmn-CN-Wavenet-B"),
			SpeakingRate: getEnvAsFloatOrDefault("TTS_SPEAKING_RATE", 1.0),
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault returns the environment variable as bool or a default
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(value, "true") || value == "1"
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// splitAndTrim splits a comma-separated list into trimmed non-empty entries
func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Validate checks if the configuration is valid for the mandatory path.
// Optional stages validate their own configuration at construction time.
func (c *Config) Validate() error {
	if c.FetchHours < 1 {
		return errors.New("fetch hours must be at least 1")
	}

	if c.MinContentLength < 1 {
		return errors.New("minimum content length must be at least 1")
	}

	switch c.Cache.Type {
	case "memory", "redis", "sqlite":
	default:
		return errors.New("cache type must be 'memory', 'redis' or 'sqlite'")
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis cache")
	}

	switch c.Store.Type {
	case "supabase":
		if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY must be set when using supabase store")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite store path cannot be empty")
		}
	default:
		return errors.New("store type must be 'supabase' or 'sqlite'")
	}

	if c.Features.AISummary && c.LLM.Provider == "openrouter" && c.LLM.APIKey == "" {
		return errors.New("OPENROUTER_API_KEY must be set when AI summary is enabled")
	}

	if c.Features.AISummary && c.LLM.Provider == "claude" && c.LLM.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY must be set when LLM provider is claude")
	}

	return nil
}
