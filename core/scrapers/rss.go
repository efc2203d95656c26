// ABOUTME: RSS feed scraper built on gofeed with per-item error isolation
// ABOUTME: Caches feed bodies, extracts thumbnails, optionally enriches short bodies via readability

package scrapers

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
	"blockchain-daily/pkg/config"
	"blockchain-daily/pkg/utils/textutil"
)

const (
	feedCacheTTL = 10 * time.Minute

	// Bodies shorter than this are candidates for full-text enrichment.
	fullTextThreshold = 200
)

// RSSScraper fetches one RSS/Atom feed and converts its entries into
// news items. Malformed entries are skipped with a warning, never fatal
// to the whole feed.
type RSSScraper struct {
	cfg    config.RSSSourceConfig
	loc    *time.Location
	deps   interfaces.Dependencies
	parser *gofeed.Parser
	now    func() time.Time
}

// NewRSSScraper creates a scraper for a single configured feed.
func NewRSSScraper(cfg config.RSSSourceConfig, loc *time.Location, deps interfaces.Dependencies) *RSSScraper {
	return &RSSScraper{
		cfg:    cfg,
		loc:    loc,
		deps:   deps,
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// Source returns the configured provider name
func (s *RSSScraper) Source() string {
	return s.cfg.Name
}

// Fetch retrieves and parses the feed, returning items inside the window.
func (s *RSSScraper) Fetch(ctx context.Context, lookbackHours int) []domain.NewsItem {
	s.deps.Logger.Info("Fetching RSS feed", map[string]interface{}{
		"source": s.cfg.Name,
		"hours":  lookbackHours,
	})

	body, err := s.fetchFeedBody(ctx)
	if err != nil {
		s.deps.Logger.Error("Error fetching RSS feed, skipping source", map[string]interface{}{
			"source": s.cfg.Name,
			"error":  err.Error(),
		})
		return nil
	}

	feed, err := s.parser.ParseString(body)
	if err != nil {
		s.deps.Logger.Error("Error parsing RSS feed, skipping source", map[string]interface{}{
			"source": s.cfg.Name,
			"error":  err.Error(),
		})
		return nil
	}

	cutoffTime := cutoff(s.now().In(s.loc), lookbackHours)

	items := make([]domain.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item, ok := s.convertEntry(ctx, entry, cutoffTime)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	s.deps.Logger.Info("Fetched RSS news items", map[string]interface{}{
		"source": s.cfg.Name,
		"items":  len(items),
	})
	return items
}

// convertEntry turns one feed entry into a NewsItem. Entries without a
// parseable date, or with an empty title or body after cleaning, are
// dropped.
func (s *RSSScraper) convertEntry(ctx context.Context, entry *gofeed.Item, cutoffTime time.Time) (domain.NewsItem, bool) {
	if entry == nil {
		return domain.NewsItem{}, false
	}

	if entry.PublishedParsed == nil {
		s.deps.Logger.Warn("Skipping feed entry without parseable date", map[string]interface{}{
			"source": s.cfg.Name,
			"title":  entry.Title,
		})
		return domain.NewsItem{}, false
	}

	publishedAt := entry.PublishedParsed.In(s.loc)
	if !withinWindow(publishedAt, cutoffTime) {
		return domain.NewsItem{}, false
	}

	rawBody := entry.Description
	if rawBody == "" {
		rawBody = entry.Content
	}

	title := textutil.CleanText(entry.Title)
	body := textutil.CleanText(rawBody)
	if title == "" || body == "" {
		return domain.NewsItem{}, false
	}

	if s.cfg.FullText && utf8.RuneCountInString(body) < fullTextThreshold {
		if fullText := s.extractFullText(ctx, entry.Link); fullText != "" {
			body = fullText
		}
	}

	return domain.NewsItem{
		Source:        s.cfg.Name,
		Title:         title,
		Body:          body,
		URL:           strings.TrimSpace(entry.Link),
		PublishedAt:   publishedAt,
		UnixTimestamp: publishedAt.Unix(),
		ImageURL:      s.extractImageURL(entry, rawBody),
		Language:      s.cfg.Language,
	}, true
}

// extractImageURL prefers the feed-level image and falls back to the first
// <img> inside the entry HTML.
func (s *RSSScraper) extractImageURL(entry *gofeed.Item, rawBody string) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawBody))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img").First().Attr("src")
	return src
}

// extractFullText fetches the linked article and runs readability
// extraction. Best effort; any failure returns an empty string.
func (s *RSSScraper) extractFullText(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return ""
	}

	resp, err := s.deps.HTTPClient.GetWithHeaders(ctx, link, map[string]string{"User-Agent": defaultUserAgent})
	if err != nil {
		return ""
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return ""
	}

	article, err := readability.FromReader(resp.Body(), parsedURL)
	if err != nil {
		s.deps.Logger.Debug("Readability extraction failed", map[string]interface{}{
			"source": s.cfg.Name,
			"url":    link,
			"error":  err.Error(),
		})
		return ""
	}

	return textutil.CleanText(article.TextContent)
}

// fetchFeedBody returns the raw feed document, served from the cache when
// the feed was fetched recently.
func (s *RSSScraper) fetchFeedBody(ctx context.Context) (string, error) {
	cacheKey := "feed:" + s.cfg.URL

	if s.deps.Cache != nil {
		if cached, err := s.deps.Cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			s.deps.Logger.Debug("Using cached feed body", map[string]interface{}{"source": s.cfg.Name})
			return string(cached), nil
		}
	}

	resp, err := s.deps.HTTPClient.GetWithHeaders(ctx, s.cfg.URL, map[string]string{"User-Agent": defaultUserAgent})
	if err != nil {
		return "", err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return "", &statusError{code: resp.StatusCode()}
	}

	bodyBytes, err := io.ReadAll(resp.Body())
	if err != nil {
		return "", err
	}

	if s.deps.Cache != nil {
		_ = s.deps.Cache.Set(ctx, cacheKey, bodyBytes, feedCacheTTL)
	}

	return string(bodyBytes), nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "feed returned non-200 status code"
}
