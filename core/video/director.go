// ABOUTME: Director plans the video storyboard from the narration text
// ABOUTME: An LLM authors the segments when available; paragraph segmentation is the fallback

package video

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
	"blockchain-daily/pkg/utils/textutil"
)

const (
	// Reading speed assumed for fallback segment durations, runes per minute.
	readingSpeed = 250.0

	minSegmentSeconds = 5.0
	maxSegmentSeconds = 15.0

	// Segments never drop below this after audio sync.
	syncFloorSeconds = 3.0
)

// keywordMap translates storyboard topics into stock footage search terms.
var keywordMap = map[string]string{
	"比特币":  "bitcoin cryptocurrency",
	"以太坊":  "ethereum blockchain",
	"市场":   "stock market trading",
	"行情":   "financial charts",
	"监管":   "government building",
	"政策":   "law regulation",
	"DeFi": "digital finance network",
	"NFT":  "digital art",
	"技术":   "technology circuit",
	"投资":   "business investment",
	"融资":   "business handshake",
	"交易":   "trading screen",
	"安全":   "cyber security",
}

const defaultFootageKeyword = "blockchain technology abstract"

// Director builds storyboards for the daily video.
type Director struct {
	chat   interfaces.ChatClient
	model  string
	logger interfaces.Logger
}

// NewDirector creates a storyboard director. chat may be nil, in which
// case only the structural fallback is used.
func NewDirector(chat interfaces.ChatClient, model string, logger interfaces.Logger) *Director {
	return &Director{chat: chat, model: model, logger: logger}
}

// Plan produces the ordered storyboard segments for a narration text.
func (d *Director) Plan(ctx context.Context, narration string) []domain.StoryboardSegment {
	if d.chat != nil {
		if segments := d.aiStoryboard(ctx, narration); len(segments) > 0 {
			return segments
		}
	}
	return SegmentByParagraph(narration)
}

// aiStoryboard asks the model to split the narration into footage-ready
// segments. Returns nil on any failure so the caller falls back.
func (d *Director) aiStoryboard(ctx context.Context, narration string) []domain.StoryboardSegment {
	response, err := d.chat.Complete(ctx, interfaces.ChatRequest{
		Model: d.model,
		Messages: []interfaces.ChatMessage{
			{Role: "user", Content: buildStoryboardPrompt(narration)},
		},
		Temperature: 0.5,
		MaxTokens:   3000,
	})
	if err != nil {
		d.logger.Error("Storyboard generation failed, falling back", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	raw := textutil.ExtractJSONArray(response)
	if raw == "" {
		d.logger.Warn("No JSON array in storyboard response", nil)
		return nil
	}

	var segments []domain.StoryboardSegment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		d.logger.Error("Failed to parse storyboard JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	valid := segments[:0]
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if seg.Keyword == "" {
			seg.Keyword = FootageKeyword(seg.Text)
		}
		seg.Duration = clampDuration(seg.Duration)
		valid = append(valid, seg)
	}
	return valid
}

func buildStoryboardPrompt(narration string) string {
	return fmt.Sprintf(`将以下区块链新闻口播稿切分为视频分镜。每个分镜3-15秒，包含一句或几句连贯的话，并给出适合检索视频素材的英文关键词。

口播稿:
%s

以JSON数组返回:
[
  {"text": "分镜口播文字", "keyword": "english stock footage keyword", "duration": 8.0, "mood": "neutral"}
]

只输出JSON数组。`, narration)
}

// SegmentByParagraph is the structural fallback: one segment per
// paragraph, with durations estimated from reading speed.
func SegmentByParagraph(narration string) []domain.StoryboardSegment {
	var segments []domain.StoryboardSegment
	for _, para := range strings.Split(narration, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		segments = append(segments, domain.StoryboardSegment{
			Text:     para,
			Keyword:  FootageKeyword(para),
			Duration: estimateDuration(para),
			Mood:     "neutral",
		})
	}

	// A single-paragraph narration still gets split on sentence ends so
	// the video is not one static shot.
	if len(segments) == 1 && utf8.RuneCountInString(segments[0].Text) > 120 {
		segments = splitBySentence(segments[0].Text)
	}
	return segments
}

// splitBySentence breaks long prose on Chinese full stops.
func splitBySentence(text string) []domain.StoryboardSegment {
	var segments []domain.StoryboardSegment
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			segments = append(segments, domain.StoryboardSegment{
				Text:     s,
				Keyword:  FootageKeyword(s),
				Duration: estimateDuration(s),
				Mood:     "neutral",
			})
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		if r == '。' || r == '！' || r == '？' {
			if utf8.RuneCountInString(current.String()) >= 20 {
				flush()
			}
		}
	}
	flush()
	return segments
}

// estimateDuration converts text length to seconds at reading speed.
func estimateDuration(text string) float64 {
	seconds := float64(utf8.RuneCountInString(text)) / readingSpeed * 60.0
	return clampDuration(seconds)
}

func clampDuration(seconds float64) float64 {
	if seconds < minSegmentSeconds {
		return minSegmentSeconds
	}
	if seconds > maxSegmentSeconds {
		return maxSegmentSeconds
	}
	return seconds
}

// FootageKeyword maps segment text to a stock footage search term.
func FootageKeyword(text string) string {
	for kw, query := range keywordMap {
		if strings.Contains(text, kw) {
			return query
		}
	}
	return defaultFootageKeyword
}

// SyncWithAudio rescales segment durations so their sum matches the
// actual narration length, holding a per-segment floor.
func SyncWithAudio(segments []domain.StoryboardSegment, audioSeconds float64) []domain.StoryboardSegment {
	if len(segments) == 0 || audioSeconds <= 0 {
		return segments
	}

	total := 0.0
	for _, seg := range segments {
		total += seg.Duration
	}
	if total <= 0 {
		return segments
	}

	scale := audioSeconds / total
	synced := make([]domain.StoryboardSegment, len(segments))
	for i, seg := range segments {
		seg.Duration = seg.Duration * scale
		if seg.Duration < syncFloorSeconds {
			seg.Duration = syncFloorSeconds
		}
		synced[i] = seg
	}
	return synced
}
