// ABOUTME: ContentFilter deduplicates, quality-filters, and time-orders news items
// ABOUTME: Dedup key is the lower-cased first 100 characters of the body

package newsfilter

import (
	"sort"
	"strings"
	"unicode/utf8"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

const dedupPrefixLength = 100

// Filter processes the raw item union into an ordered, deduplicated,
// quality-filtered sequence.
type Filter struct {
	minLength int
	logger    interfaces.Logger
}

// NewFilter creates a content filter with the configured minimum body length.
func NewFilter(minLength int, logger interfaces.Logger) *Filter {
	return &Filter{
		minLength: minLength,
		logger:    logger,
	}
}

// Process deduplicates, drops low-quality items, and sorts the remainder
// newest first. An empty input returns an empty output, never an error.
func (f *Filter) Process(items []domain.NewsItem) []domain.NewsItem {
	if len(items) == 0 {
		return []domain.NewsItem{}
	}

	f.logger.Info("Processing news items", map[string]interface{}{"items": len(items)})

	deduped := deduplicate(items)
	f.logger.Info("After deduplication", map[string]interface{}{"items": len(deduped)})

	filtered := f.filterQuality(deduped)
	f.logger.Info("After quality filter", map[string]interface{}{"items": len(filtered)})

	// Newest first; ties keep input order.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].UnixTimestamp > filtered[j].UnixTimestamp
	})

	return filtered
}

// deduplicate keeps the first occurrence per dedup key, in input order.
// Items with an empty body produce an empty key and are each kept; the
// quality filter removes them next.
func deduplicate(items []domain.NewsItem) []domain.NewsItem {
	seen := make(map[string]struct{}, len(items))
	unique := make([]domain.NewsItem, 0, len(items))

	for _, item := range items {
		key := DedupKey(item.Body)
		if key == "" {
			unique = append(unique, item)
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}

	return unique
}

// DedupKey normalizes a body into its dedup key: the first 100 characters,
// lower-cased and trimmed.
func DedupKey(body string) string {
	runes := []rune(body)
	if len(runes) > dedupPrefixLength {
		runes = runes[:dedupPrefixLength]
	}
	return strings.TrimSpace(strings.ToLower(string(runes)))
}

// filterQuality drops items with an empty title, empty body, or a body
// shorter than the configured minimum.
func (f *Filter) filterQuality(items []domain.NewsItem) []domain.NewsItem {
	quality := make([]domain.NewsItem, 0, len(items))

	for _, item := range items {
		if item.Title == "" || item.Body == "" {
			continue
		}
		if utf8.RuneCountInString(item.Body) < f.minLength {
			continue
		}
		quality = append(quality, item)
	}

	return quality
}
