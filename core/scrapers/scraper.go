// ABOUTME: Source adapter contract and shared helpers for news scrapers
// ABOUTME: Adapters never raise; a provider outage yields an empty item set

package scrapers

import (
	"context"
	"time"

	"blockchain-daily/core/domain"
)

// Browser-like headers; some providers reject default Go user agents.
const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAccept    = "application/json"
)

// Scraper fetches raw news items for a lookback window. Implementations
// must catch provider-specific errors internally and return an empty
// sequence on failure so that a single provider outage never affects the
// other sources.
type Scraper interface {
	// Source returns the provider name attached to fetched items.
	Source() string

	// Fetch returns all items published within the past lookbackHours.
	Fetch(ctx context.Context, lookbackHours int) []domain.NewsItem
}

// cutoff returns the oldest acceptable publication instant for a window.
func cutoff(now time.Time, lookbackHours int) time.Time {
	return now.Add(-time.Duration(lookbackHours) * time.Hour)
}

// withinWindow reports whether t is at or after the cutoff (inclusive).
func withinWindow(t, cutoffTime time.Time) bool {
	return !t.Before(cutoffTime)
}
