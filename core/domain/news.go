// ABOUTME: NewsItem domain model represents one scraped news unit
// ABOUTME: Provides validation to ensure an item has required fields after cleaning

package domain

import "time"

// NewsItem represents a single news item fetched from a source.
// Items are created by a source adapter and immutable afterwards.
type NewsItem struct {
	// Source is the provider name (e.g. "金色财经", "Cointelegraph")
	Source string

	// Title is the item headline
	Title string

	// Body is the plain-text content with HTML stripped
	Body string

	// URL links to the original item on the provider site
	URL string

	// PublishedAt is the publication instant in the configured timezone
	PublishedAt time.Time

	// UnixTimestamp is derived from PublishedAt and used for sort/filter
	UnixTimestamp int64

	// ImageURL is an optional illustration URL
	ImageURL string

	// Language tags the item language (e.g. "zh", "en")
	Language string

	// Grade is a provider-specific relevance grade (JinSe only)
	Grade int
}

// IsValid checks if the news item has all required fields
func (n *NewsItem) IsValid() bool {
	if n.Title == "" {
		return false
	}

	if n.Body == "" {
		return false
	}

	return true
}
