package scrapers

import (
	"context"
	"testing"

	"blockchain-daily/core/domain"
)

// stubScraper returns a fixed item set
type stubScraper struct {
	name  string
	items []domain.NewsItem
}

func (s *stubScraper) Source() string { return s.name }

func (s *stubScraper) Fetch(ctx context.Context, lookbackHours int) []domain.NewsItem {
	return s.items
}

func TestAggregatorFetchAll_ConcatenatesAllSources(t *testing.T) {
	agg := NewAggregator([]Scraper{
		&stubScraper{name: "金色财经", items: []domain.NewsItem{
			{Source: "金色财经", Title: "快讯一", Body: "内容一"},
			{Source: "金色财经", Title: "快讯二", Body: "内容二"},
		}},
		&stubScraper{name: "Cointelegraph", items: []domain.NewsItem{
			{Source: "Cointelegraph", Title: "Story", Body: "Body"},
		}},
	}, noopLogger{})

	items := agg.FetchAll(context.Background(), 24)

	if len(items) != 3 {
		t.Fatalf("FetchAll returned %d items, want 3", len(items))
	}
	if items[0].Source != "金色财经" || items[2].Source != "Cointelegraph" {
		t.Errorf("sources not concatenated in order: %s, %s", items[0].Source, items[2].Source)
	}
}

func TestAggregatorFetchAll_EmptySourceOnlyShrinksUnion(t *testing.T) {
	agg := NewAggregator([]Scraper{
		&stubScraper{name: "下线的来源"},
		&stubScraper{name: "正常来源", items: []domain.NewsItem{
			{Source: "正常来源", Title: "标题", Body: "内容"},
		}},
	}, noopLogger{})

	items := agg.FetchAll(context.Background(), 24)

	if len(items) != 1 {
		t.Errorf("FetchAll returned %d items, want 1", len(items))
	}
}

func TestAggregatorFetchAll_NoSources(t *testing.T) {
	agg := NewAggregator(nil, noopLogger{})

	items := agg.FetchAll(context.Background(), 24)

	if len(items) != 0 {
		t.Errorf("FetchAll returned %d items, want 0", len(items))
	}
}
