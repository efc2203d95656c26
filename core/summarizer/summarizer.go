// ABOUTME: Summarizer turns the filtered item sequence into one daily article
// ABOUTME: AI path degrades to a deterministic source-grouped formatter, never raises

package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
	"blockchain-daily/pkg/utils/textutil"
)

const descriptionMaxLength = 200

// Summarizer generates the daily digest article from filtered news items.
type Summarizer struct {
	chat    interfaces.ChatClient
	model   string
	enabled bool
	logger  interfaces.Logger
}

// NewSummarizer creates a summarizer. When enabled is false, or chat is
// nil, only the deterministic formatter runs.
func NewSummarizer(chat interfaces.ChatClient, model string, enabled bool, logger interfaces.Logger) *Summarizer {
	return &Summarizer{
		chat:    chat,
		model:   model,
		enabled: enabled,
		logger:  logger,
	}
}

// baselineTags returns the tags every daily article carries.
func baselineTags() []string {
	return []string{"区块链", "每日观察"}
}

func defaultTitle(dateStr string) string {
	return "区块链每日观察 - " + dateStr
}

// ProcessDailyNews produces the daily article. Any failure on the AI path
// (network, quota, parse) falls back to the deterministic formatter; this
// method never returns an error.
func (s *Summarizer) ProcessDailyNews(ctx context.Context, items []domain.NewsItem, dateStr string) domain.Article {
	if !s.enabled || s.chat == nil {
		s.logger.Info("AI summary is disabled, using basic formatting", nil)
		return s.basicFormat(items, dateStr)
	}

	article, err := s.aiFormat(ctx, items, dateStr)
	if err != nil {
		s.logger.Error("Error in AI processing, falling back to basic formatting", map[string]interface{}{
			"error": err.Error(),
		})
		return s.basicFormat(items, dateStr)
	}

	s.logger.Info("AI processing completed", map[string]interface{}{
		"content_len": len(article.Content),
		"tags":        strings.Join(article.Tags, ", "),
	})
	return article
}

// aiFormat issues the article-generation completion and parses the result.
func (s *Summarizer) aiFormat(ctx context.Context, items []domain.NewsItem, dateStr string) (domain.Article, error) {
	s.logger.Info("Processing news items with AI", map[string]interface{}{"items": len(items)})

	newsText := prepareNewsText(items)

	response, err := s.chat.Complete(ctx, interfaces.ChatRequest{
		Model: s.model,
		Messages: []interfaces.ChatMessage{
			{Role: "system", Content: articleSystemPrompt},
			{Role: "user", Content: buildArticlePrompt(newsText, dateStr)},
		},
		Temperature: 0.7,
		MaxTokens:   16000,
	})
	if err != nil {
		return domain.Article{}, err
	}

	if strings.TrimSpace(response) == "" {
		return domain.Article{}, fmt.Errorf("empty completion response")
	}

	return parseResponse(response, dateStr), nil
}

// prepareNewsText serializes items as "{index}. [{source}] {title}\n   {body}".
func prepareNewsText(items []domain.NewsItem) string {
	parts := make([]string, 0, len(items))
	for i, item := range items {
		source := item.Source
		if source == "" {
			source = "未知来源"
		}
		parts = append(parts, fmt.Sprintf("%d. [%s] %s\n   %s", i+1, source, item.Title, item.Body))
	}
	return strings.Join(parts, "\n\n")
}

// parseResponse splits the completion into description and content. The
// content starts at the first level-2 heading; leading non-heading lines
// become the description.
func parseResponse(response string, dateStr string) domain.Article {
	lines := strings.Split(strings.TrimSpace(response), "\n")

	var descriptionLines []string
	contentStart := 0
	found := false

	for i, line := range lines {
		if strings.HasPrefix(line, "##") {
			contentStart = i
			found = true
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") && !isBoilerplate(trimmed) {
			descriptionLines = append(descriptionLines, trimmed)
		}
	}

	description := defaultTitle(dateStr)
	if len(descriptionLines) > 0 {
		if len(descriptionLines) > 2 {
			descriptionLines = descriptionLines[:2]
		}
		description = strings.Join(descriptionLines, " ")
	}
	if runes := []rune(description); len(runes) > descriptionMaxLength {
		description = string(runes[:descriptionMaxLength])
	}

	content := response
	if found && contentStart > 0 {
		content = strings.Join(lines[contentStart:], "\n")
	}

	return domain.Article{
		Title:       defaultTitle(dateStr),
		Content:     content,
		Description: description,
		Tags:        extractTags(content),
	}
}

// isBoilerplate filters greeting/meta lines out of the description.
func isBoilerplate(line string) bool {
	for _, phrase := range []string{"好的", "以下是", "当然", "Here is", "Sure"} {
		if strings.HasPrefix(line, phrase) {
			return true
		}
	}
	return false
}

// extractTags keyword-matches the content against the topic vocabulary.
// The two baseline tags are always present.
func extractTags(content string) []string {
	tags := baselineTags()
	lower := strings.ToLower(content)

	checks := []struct {
		tag   string
		match func() bool
	}{
		{"DeFi", func() bool { return strings.Contains(lower, "defi") || strings.Contains(content, "去中心化金融") }},
		{"NFT", func() bool { return strings.Contains(lower, "nft") || strings.Contains(content, "数字藏品") }},
		{"比特币", func() bool {
			return strings.Contains(content, "比特币") || strings.Contains(lower, "bitcoin") || strings.Contains(lower, "btc")
		}},
		{"以太坊", func() bool {
			return strings.Contains(content, "以太坊") || strings.Contains(lower, "ethereum") || strings.Contains(lower, "eth")
		}},
		{"政策监管", func() bool { return strings.Contains(content, "监管") || strings.Contains(content, "政策") }},
		{"投融资", func() bool { return strings.Contains(content, "融资") || strings.Contains(content, "投资") }},
	}

	for _, c := range checks {
		if c.match() {
			tags = append(tags, c.tag)
		}
	}

	return tags
}

// basicFormat renders the deterministic fallback article: a flat Markdown
// listing grouped by source, in first-seen order. Pure and always
// succeeds on non-empty input.
func (s *Summarizer) basicFormat(items []domain.NewsItem, dateStr string) domain.Article {
	contentParts := []string{
		fmt.Sprintf("# 区块链每日观察 - %s\n", dateStr),
		fmt.Sprintf("今日共收录 %d 条区块链行业动态\n", len(items)),
		"---\n",
	}

	var sourceOrder []string
	grouped := make(map[string][]domain.NewsItem)
	for _, item := range items {
		source := item.Source
		if source == "" {
			source = "其他"
		}
		if _, ok := grouped[source]; !ok {
			sourceOrder = append(sourceOrder, source)
		}
		grouped[source] = append(grouped[source], item)
	}

	for _, source := range sourceOrder {
		contentParts = append(contentParts, fmt.Sprintf("\n## 📰 %s\n", source))
		for _, item := range grouped[source] {
			contentParts = append(contentParts, fmt.Sprintf("- **%s**  \n  %s\n", item.Title, item.Body))
		}
	}

	return domain.Article{
		Title:       defaultTitle(dateStr),
		Content:     strings.Join(contentParts, "\n"),
		Description: fmt.Sprintf("区块链每日观察 - %s,收录%d条行业动态", dateStr, len(items)),
		Tags:        baselineTags(),
	}
}

// titleCoverResponse is the expected JSON of the title/cover-prompt call.
type titleCoverResponse struct {
	AttractiveTitle string `json:"attractive_title"`
	CoverPrompt     string `json:"cover_prompt"`
}

// GenerateTitleAndCover derives a punchier title and a cover-image prompt
// from the generated content. Best effort and independently fallible: any
// failure returns static defaults and never fails the summarizer.
func (s *Summarizer) GenerateTitleAndCover(ctx context.Context, content, dateStr string) (string, string) {
	fallbackTitle := defaultTitle(dateStr)
	fallbackPrompt := defaultCoverPrompt(dateStr)

	if s.chat == nil {
		return fallbackTitle, fallbackPrompt
	}

	response, err := s.chat.Complete(ctx, interfaces.ChatRequest{
		Model: s.model,
		Messages: []interfaces.ChatMessage{
			{Role: "user", Content: buildTitleCoverPrompt(content, dateStr)},
		},
		Temperature: 0.8,
		MaxTokens:   1000,
	})
	if err != nil {
		s.logger.Warn("Title/cover generation failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackTitle, fallbackPrompt
	}

	raw := textutil.ExtractJSONObject(response)
	if raw == "" {
		s.logger.Warn("No JSON object in title/cover response, using defaults", nil)
		return fallbackTitle, fallbackPrompt
	}

	var parsed titleCoverResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.logger.Warn("Failed to parse title/cover JSON, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackTitle, fallbackPrompt
	}

	title := strings.TrimSpace(parsed.AttractiveTitle)
	prompt := strings.TrimSpace(parsed.CoverPrompt)
	if title == "" {
		title = fallbackTitle
	}
	if prompt == "" {
		prompt = fallbackPrompt
	}

	return title, prompt
}
