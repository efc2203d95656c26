// ABOUTME: JinSe (金色财经) scraper using the cursor-paginated livestream API
// ABOUTME: Pages backward from newest with flag=down semantics and early cutoff termination

package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
	"blockchain-daily/pkg/config"
	"blockchain-daily/pkg/utils/textutil"
)

const (
	jinsePageSize    = 20
	jinseSourceName  = "金色财经"
	jinseTitleLength = 60
)

// JinSeScraper fetches flash news from the JinSe livestream API.
type JinSeScraper struct {
	cfg  config.JinSeConfig
	loc  *time.Location
	deps interfaces.Dependencies
	now  func() time.Time
}

// NewJinSeScraper creates a JinSe scraper for the given timezone.
func NewJinSeScraper(cfg config.JinSeConfig, loc *time.Location, deps interfaces.Dependencies) *JinSeScraper {
	return &JinSeScraper{
		cfg:  cfg,
		loc:  loc,
		deps: deps,
		now:  time.Now,
	}
}

// Source returns the provider name
func (s *JinSeScraper) Source() string {
	return jinseSourceName
}

// jinseLive is one flash-news record inside a page.
type jinseLive struct {
	ID            int64  `json:"id"`
	Content       string `json:"content"`
	ContentPrefix string `json:"content_prefix"`
	CreatedAt     int64  `json:"created_at"`
	Grade         int    `json:"grade"`
}

// jinseResponse is the paginated API envelope. Each list entry groups
// lives by day; the flat sequence across entries is newest first.
type jinseResponse struct {
	List []struct {
		Lives []jinseLive `json:"lives"`
	} `json:"list"`
}

// Fetch pages backward through the API until the page is empty, the page's
// oldest item falls outside the lookback window, or the page bound derived
// from the configured limit is reached. The page that straddles the cutoff
// is included in full; the per-item window filter afterwards drops items
// older than the cutoff.
func (s *JinSeScraper) Fetch(ctx context.Context, lookbackHours int) []domain.NewsItem {
	s.deps.Logger.Info("Fetching JinSe news", map[string]interface{}{
		"hours": lookbackHours,
		"limit": s.cfg.Limit,
	})

	now := s.now().In(s.loc)
	cutoffTime := cutoff(now, lookbackHours)
	maxPages := (s.cfg.Limit + jinsePageSize - 1) / jinsePageSize

	var allLives []jinseLive
	var currentID int64
	page := 1

	for page <= maxPages {
		pageLives, err := s.fetchPage(ctx, currentID)
		if err != nil {
			s.deps.Logger.Warn("Error fetching JinSe page", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			break
		}

		if len(pageLives) == 0 {
			s.deps.Logger.Info("No more JinSe data", map[string]interface{}{"page": page})
			break
		}

		var oldest time.Time
		for _, live := range pageLives {
			if live.CreatedAt == 0 {
				continue
			}
			t := time.Unix(live.CreatedAt, 0).In(s.loc)
			if oldest.IsZero() || t.Before(oldest) {
				oldest = t
			}
		}

		// The straddling page is kept whole; stop paging afterwards.
		if !oldest.IsZero() && oldest.Before(cutoffTime) {
			s.deps.Logger.Info("Reached time limit", map[string]interface{}{"page": page})
			allLives = append(allLives, pageLives...)
			break
		}

		if last := pageLives[len(pageLives)-1].ID; last != 0 {
			currentID = last
		}

		allLives = append(allLives, pageLives...)
		s.deps.Logger.Debug("Fetched JinSe page", map[string]interface{}{
			"page":  page,
			"items": len(pageLives),
			"total": len(allLives),
		})
		page++
	}

	items := make([]domain.NewsItem, 0, len(allLives))
	for _, live := range allLives {
		if live.CreatedAt == 0 {
			continue
		}

		publishedAt := time.Unix(live.CreatedAt, 0).In(s.loc)
		if !withinWindow(publishedAt, cutoffTime) {
			continue
		}

		body := textutil.CleanText(live.Content)
		if body == "" {
			continue
		}

		title := textutil.CleanText(live.ContentPrefix)
		if title == "" {
			title = textutil.ExtractTitle(body, jinseTitleLength)
		}

		items = append(items, domain.NewsItem{
			Source:        jinseSourceName,
			Title:         title,
			Body:          body,
			URL:           fmt.Sprintf("https://www.jinse.cn/lives/%d", live.ID),
			PublishedAt:   publishedAt,
			UnixTimestamp: publishedAt.Unix(),
			Language:      "zh",
			Grade:         live.Grade,
		})
	}

	s.deps.Logger.Info("Fetched JinSe news items", map[string]interface{}{
		"items": len(items),
		"pages": page - 1,
	})
	return items
}

// fetchPage requests one page of 20 lives with the cursor set to the last
// item ID of the previous page (0 for the newest page).
func (s *JinSeScraper) fetchPage(ctx context.Context, currentID int64) ([]jinseLive, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(jinsePageSize))
	params.Set("reading", "false")
	params.Set("source", "web")
	params.Set("flag", "down")
	params.Set("id", strconv.FormatInt(currentID, 10))
	params.Set("category", "0")

	headers := map[string]string{
		"User-Agent": defaultUserAgent,
		"Accept":     defaultAccept,
		"Referer":    "https://www.jinse.cn/",
	}

	resp, err := s.deps.HTTPClient.GetWithHeaders(ctx, s.cfg.APIURL+"?"+params.Encode(), headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("jinse API returned status %d", resp.StatusCode())
	}

	bodyBytes, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, err
	}

	var parsed jinseResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, err
	}

	var lives []jinseLive
	for _, entry := range parsed.List {
		lives = append(lives, entry.Lives...)
	}
	return lives, nil
}
