// ABOUTME: Main entry point for the daily blockchain news pipeline
// ABOUTME: Wires together configuration, infrastructure and stages, then runs one cycle

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"blockchain-daily/core/images"
	"blockchain-daily/core/interfaces"
	"blockchain-daily/core/newsfilter"
	"blockchain-daily/core/pdfreport"
	"blockchain-daily/core/pipeline"
	"blockchain-daily/core/posts"
	"blockchain-daily/core/report"
	"blockchain-daily/core/scrapers"
	"blockchain-daily/core/summarizer"
	"blockchain-daily/core/video"
	"blockchain-daily/infrastructure/cache/memory"
	"blockchain-daily/infrastructure/cache/redis"
	cachesqlite "blockchain-daily/infrastructure/cache/sqlite"
	stdhttp "blockchain-daily/infrastructure/http/standard"
	"blockchain-daily/infrastructure/llm/claude"
	"blockchain-daily/infrastructure/llm/openrouter"
	logruslogger "blockchain-daily/infrastructure/logger/logrus"
	storesqlite "blockchain-daily/infrastructure/store/sqlite"
	"blockchain-daily/infrastructure/store/supabase"
	ttsgoogle "blockchain-daily/infrastructure/tts/google"
	"blockchain-daily/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create logger
	logger, err := logruslogger.New(cfg.LogDir, os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Info("Starting blockchain daily pipeline", map[string]interface{}{
		"timezone":    cfg.Timezone,
		"fetch_hours": cfg.FetchHours,
		"cache_type":  cfg.Cache.Type,
		"store_type":  cfg.Store.Type,
	})

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("Invalid timezone", map[string]interface{}{"timezone": cfg.Timezone})
		os.Exit(1)
	}

	// Cancel the run on SIGINT/SIGTERM so partial output is flushed.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create cache
	cache := buildCache(cfg, logger)

	// Create HTTP client
	httpClient := stdhttp.NewStandardHTTPClient(30 * time.Second)

	// Create dependencies container
	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	// Create scrapers
	var sources []scrapers.Scraper
	if cfg.Sources.JinSe.Enabled {
		sources = append(sources, scrapers.NewJinSeScraper(cfg.Sources.JinSe, location, deps))
	}
	for _, rssCfg := range cfg.Sources.RSS {
		if rssCfg.Enabled {
			sources = append(sources, scrapers.NewRSSScraper(rssCfg, location, deps))
		}
	}
	if len(sources) == 0 {
		logger.Error("No news sources enabled", nil)
		os.Exit(1)
	}

	// Create chat backend
	chat := buildChatClient(cfg, httpClient, logger)

	// Create post store
	store, closeStore, err := buildStore(cfg, httpClient, logger)
	if err != nil {
		logger.Error("Failed to create post store", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer closeStore()

	// Mandatory chain
	aggregator := scrapers.NewAggregator(sources, logger)
	filter := newsfilter.NewFilter(cfg.MinContentLength, logger)
	writer := summarizer.NewSummarizer(chat, cfg.LLM.Model, cfg.Features.AISummary, logger)
	publisher := posts.NewService(store, cfg.OutputDir, logger)

	run := pipeline.New(aggregator, filter, writer, publisher, cfg.FetchHours, location, logger)

	// Optional stages
	var imageClient interfaces.ImageClient
	if orClient, ok := chat.(*openrouter.Client); ok {
		imageClient = orClient
	}

	if cfg.Features.ImageGeneration {
		if imageClient == nil {
			logger.Warn("Image generation enabled but no image-capable provider, stage disabled", nil)
		} else {
			run.WithImages(images.NewGenerator(chat, imageClient,
				cfg.LLM.PromptModel, cfg.LLM.ImageModel,
				filepath.Join(cfg.OutputDir, "images"), logger))
		}
	}

	if cfg.Features.PDFGeneration {
		run.WithPDF(pdfreport.NewGenerator(cfg.OutputDir, logger))
	}

	if cfg.Features.EmailSend {
		run.WithEmail(report.NewSender(report.SMTPConfig{
			Server:       cfg.Email.SMTPServer,
			Port:         cfg.Email.SMTPPort,
			Username:     cfg.Email.Username,
			Password:     cfg.Email.Password,
			From:         cfg.Email.From,
			To:           cfg.Email.To,
			AttachImages: cfg.Email.AttachImages,
		}, logger))
	}

	if cfg.Features.VideoGeneration {
		stage, err := buildVideoStage(ctx, cfg, chat, httpClient, logger)
		if err != nil {
			logger.Warn("Video stage unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			run.WithVideo(stage)
		}
	}

	// Run one daily cycle
	if _, err := run.Run(ctx); err != nil {
		logger.Error("Pipeline run failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

// buildCache selects the cache backend, falling back to memory when a
// persistent backend cannot be reached.
func buildCache(cfg *config.Config, logger interfaces.Logger) interfaces.Cache {
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCache()
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
		})
		return redisCache
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.SQLitePath), 0o755); err == nil {
			sqliteCache, err := cachesqlite.NewSQLiteCacheWithLogger(cfg.Cache.SQLitePath, logger)
			if err == nil {
				logger.Info("Using SQLite cache", map[string]interface{}{
					"path": cfg.Cache.SQLitePath,
				})
				return sqliteCache
			}
			logger.Error("Failed to create SQLite cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return memory.NewMemoryCache()
	default:
		logger.Info("Using memory cache", nil)
		return memory.NewMemoryCache()
	}
}

// buildChatClient selects the completion backend. Returns nil when AI
// is disabled, which the summarizer treats as fallback-only mode.
func buildChatClient(cfg *config.Config, httpClient interfaces.HTTPClient, logger interfaces.Logger) interfaces.ChatClient {
	if !cfg.Features.AISummary {
		return nil
	}

	switch cfg.LLM.Provider {
	case "claude":
		client, err := claude.NewClient(cfg.LLM.AnthropicAPIKey, cfg.LLM.AnthropicModel, logger)
		if err != nil {
			logger.Error("Failed to create Claude client, AI summary disabled", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}
		return client
	default:
		client, err := openrouter.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, httpClient, logger)
		if err != nil {
			logger.Error("Failed to create OpenRouter client, AI summary disabled", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}
		return client
	}
}

// buildStore selects the post storage backend.
func buildStore(cfg *config.Config, httpClient interfaces.HTTPClient, logger interfaces.Logger) (interfaces.PostStore, func(), error) {
	switch cfg.Store.Type {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, nil, err
		}
		store, err := storesqlite.NewStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite post store", map[string]interface{}{
			"path": cfg.Store.SQLitePath,
		})
		return store, func() { store.Close() }, nil
	default:
		store, err := supabase.NewStore(cfg.Store.SupabaseURL, cfg.Store.SupabaseKey, httpClient, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Supabase post store", nil)
		return store, func() {}, nil
	}
}

// buildVideoStage assembles the four video production steps.
func buildVideoStage(ctx context.Context, cfg *config.Config, chat interfaces.ChatClient, httpClient interfaces.HTTPClient, logger interfaces.Logger) (pipeline.VideoStage, error) {
	speech, err := ttsgoogle.NewClient(ctx, cfg.TTS.LanguageCode, cfg.TTS.VoiceName, cfg.TTS.SpeakingRate, logger)
	if err != nil {
		return nil, err
	}

	audioDir := filepath.Join(cfg.Video.OutputDir, "audio")
	narrator := video.NewNarrator(speech, audioDir, logger)
	director := video.NewDirector(chat, cfg.LLM.PromptModel, logger)
	footage := video.NewFootageProvider(
		cfg.Pexels.APIKey, cfg.Pexels.Orientation,
		cfg.Pexels.CacheDir, cfg.Pexels.FallbackDir,
		httpClient, logger)
	composer := video.NewComposer(
		cfg.Video.FFmpegPath, cfg.Video.FFprobePath,
		cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS,
		cfg.Video.OutputDir, logger)

	return video.NewGenerator(narrator, director, footage, composer, cfg.Video.OutputDir, logger), nil
}
