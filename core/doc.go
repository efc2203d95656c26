// Package core contains the business logic for the daily blockchain digest.
// It is designed to be framework-agnostic and can be used independently
// of any scheduler or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Contains pure domain models (NewsItem, Article, StoryboardSegment, etc.)
// - scrapers: Source adapters fetching raw news items (JinSe API, RSS feeds)
// - newsfilter: Deduplication, quality filtering and ordering
// - summarizer: Daily article generation with deterministic fallback
// - posts: Slug-keyed idempotent persistence and local backup
// - pipeline: Orchestration of the mandatory chain and optional stages
// - images, pdfreport, report, video: Optional output stages
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (cache, HTTP, LLM, logger)
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
// - Domain models are free from persistence concerns
//
// # Usage Example
//
//	import (
//	    "blockchain-daily/core/interfaces"
//	    "blockchain-daily/core/scrapers"
//	)
//
//	// Create dependencies
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.Cache
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	// Create a source adapter
//	scraper := scrapers.NewJinSeScraper(cfg.Sources.JinSe, location, deps)
//
//	// Fetch the past day of news
//	items := scraper.Fetch(ctx, 24)
package core
