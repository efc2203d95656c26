package scrapers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"blockchain-daily/core/interfaces"
	"blockchain-daily/pkg/config"
)

func jinsePage(lives ...jinseLive) string {
	page := map[string]interface{}{
		"list": []map[string]interface{}{
			{"lives": lives},
		},
	}
	data, err := json.Marshal(page)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func jinseTestScraper(client interfaces.HTTPClient, limit int, now time.Time) *JinSeScraper {
	s := NewJinSeScraper(config.JinSeConfig{
		Enabled: true,
		APIURL:  "https://api.jinse.example/noah/v2/lives",
		Limit:   limit,
	}, time.UTC, testDeps(client, nil))
	s.now = func() time.Time { return now }
	return s
}

func TestJinSeFetch_SingleRecentPage(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * time.Hour).Unix()

	client := &mockHTTPClient{
		getWithHeadersFunc: func(ctx context.Context, reqURL string, headers map[string]string) (interfaces.Response, error) {
			return &mockResponse{statusCode: 200, body: jinsePage(
				jinseLive{ID: 102, Content: "比特币价格突破七万美元，创下历史新高。", CreatedAt: recent, Grade: 5},
				jinseLive{ID: 101, Content: "以太坊基金会公布最新路线图。", ContentPrefix: "以太坊路线图", CreatedAt: recent},
			)}, nil
		},
	}

	items := jinseTestScraper(client, 20, now).Fetch(context.Background(), 24)

	if len(items) != 2 {
		t.Fatalf("Fetch returned %d items, want 2", len(items))
	}
	if items[0].Source != "金色财经" {
		t.Errorf("Source = %q, want 金色财经", items[0].Source)
	}
	if items[0].URL != "https://www.jinse.cn/lives/102" {
		t.Errorf("URL = %q", items[0].URL)
	}
	if items[0].Language != "zh" {
		t.Errorf("Language = %q, want zh", items[0].Language)
	}
	if items[0].Grade != 5 {
		t.Errorf("Grade = %d, want 5", items[0].Grade)
	}
	// Title prefers content_prefix, then the first sentence of the body.
	if items[1].Title != "以太坊路线图" {
		t.Errorf("Title = %q, want content_prefix value", items[1].Title)
	}
	if !strings.HasSuffix(items[0].Title, "。") {
		t.Errorf("derived title %q should end at the first sentence", items[0].Title)
	}
}

func TestJinSeFetch_PagesWithCursorAndStopsAtCutoff(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-1 * time.Hour).Unix()
	older := now.Add(-5 * time.Hour).Unix()
	beyond := now.Add(-30 * time.Hour).Unix()

	var requestedIDs []string
	client := &mockHTTPClient{
		getWithHeadersFunc: func(ctx context.Context, reqURL string, headers map[string]string) (interfaces.Response, error) {
			parsed, err := url.Parse(reqURL)
			if err != nil {
				return nil, err
			}
			id := parsed.Query().Get("id")
			requestedIDs = append(requestedIDs, id)

			switch id {
			case "0":
				return &mockResponse{statusCode: 200, body: jinsePage(
					jinseLive{ID: 103, Content: "第一页第一条：市场行情持续走高。", CreatedAt: recent},
					jinseLive{ID: 102, Content: "第一页第二条：某交易所宣布新上线资产。", CreatedAt: recent},
					jinseLive{ID: 101, Content: "第一页第三条：链上数据显示活跃度上升。", CreatedAt: recent},
				)}, nil
			case "101":
				// Straddles the cutoff: kept whole, paging stops here.
				return &mockResponse{statusCode: 200, body: jinsePage(
					jinseLive{ID: 100, Content: "第二页第一条：昨日公布的监管指引引发讨论。", CreatedAt: older},
					jinseLive{ID: 99, Content: "第二页第二条：窗口之外的过期快讯。", CreatedAt: beyond},
				)}, nil
			default:
				return nil, fmt.Errorf("unexpected cursor %s", id)
			}
		},
	}

	items := jinseTestScraper(client, 60, now).Fetch(context.Background(), 24)

	if len(requestedIDs) != 2 {
		t.Fatalf("made %d requests, want 2 (cursor paging stops at cutoff)", len(requestedIDs))
	}
	if requestedIDs[0] != "0" {
		t.Errorf("first request cursor = %s, want 0", requestedIDs[0])
	}
	if requestedIDs[1] != "101" {
		t.Errorf("second request cursor = %s, want last ID of previous page", requestedIDs[1])
	}

	// 3 from page one, 1 in-window from the straddling page.
	if len(items) != 4 {
		t.Fatalf("Fetch returned %d items, want 4", len(items))
	}
	for _, item := range items {
		if item.PublishedAt.Before(now.Add(-24 * time.Hour)) {
			t.Errorf("item published %v is outside the 24h window", item.PublishedAt)
		}
	}
}

func TestJinSeFetch_PageBoundFromLimit(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-1 * time.Hour).Unix()

	requests := 0
	client := &mockHTTPClient{
		getWithHeadersFunc: func(ctx context.Context, reqURL string, headers map[string]string) (interfaces.Response, error) {
			requests++
			lives := make([]jinseLive, 20)
			for i := range lives {
				lives[i] = jinseLive{
					ID:        int64(1000 - requests*20 - i),
					Content:   fmt.Sprintf("第%d批第%d条快讯，内容足够长。", requests, i),
					CreatedAt: recent,
				}
			}
			return &mockResponse{statusCode: 200, body: jinsePage(lives...)}, nil
		},
	}

	// Limit 40 allows two pages even though more data is available.
	items := jinseTestScraper(client, 40, now).Fetch(context.Background(), 24)

	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
	if len(items) != 40 {
		t.Errorf("Fetch returned %d items, want 40", len(items))
	}
}

func TestJinSeFetch_EmptyPageStopsPaging(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	client := &mockHTTPClient{
		getWithHeadersFunc: func(ctx context.Context, reqURL string, headers map[string]string) (interfaces.Response, error) {
			return &mockResponse{statusCode: 200, body: jinsePage()}, nil
		},
	}

	items := jinseTestScraper(client, 60, now).Fetch(context.Background(), 24)

	if len(items) != 0 {
		t.Errorf("Fetch returned %d items, want 0", len(items))
	}
}

func TestJinSeFetch_HTTPErrorReturnsEmpty(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	client := &mockHTTPClient{
		getWithHeadersFunc: func(ctx context.Context, reqURL string, headers map[string]string) (interfaces.Response, error) {
			return nil, errors.New("connection refused")
		},
	}

	items := jinseTestScraper(client, 60, now).Fetch(context.Background(), 24)

	if items == nil {
		// An empty non-nil slice is also acceptable; only a panic or error is not.
		t.Log("nil item slice on provider outage")
	}
	if len(items) != 0 {
		t.Errorf("Fetch returned %d items on outage, want 0", len(items))
	}
}

func TestJinSeFetch_SkipsItemsWithoutTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-1 * time.Hour).Unix()

	client := &mockHTTPClient{
		getWithHeadersFunc: func(ctx context.Context, reqURL string, headers map[string]string) (interfaces.Response, error) {
			return &mockResponse{statusCode: 200, body: jinsePage(
				jinseLive{ID: 51, Content: "缺少时间戳的记录应被跳过。"},
				jinseLive{ID: 50, Content: "正常记录应当保留下来。", CreatedAt: recent},
			)}, nil
		},
	}

	items := jinseTestScraper(client, 20, now).Fetch(context.Background(), 24)

	if len(items) != 1 {
		t.Fatalf("Fetch returned %d items, want 1", len(items))
	}
	if items[0].URL != "https://www.jinse.cn/lives/50" {
		t.Errorf("kept item URL = %q", items[0].URL)
	}
}
