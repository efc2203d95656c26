// ABOUTME: Structural image prompt templates used when AI prompt authoring is unavailable
// ABOUTME: Section headings are matched against category keywords to pick a scene

package images

import (
	"fmt"
	"strings"
)

// categoryScene maps a heading keyword to an English scene description.
type categoryScene struct {
	keywords []string
	scene    string
}

var categoryScenes = []categoryScene{
	{
		keywords: []string{"市场", "行情", "价格"},
		scene:    "cryptocurrency market dashboard with candlestick charts, price tickers and trend arrows",
	},
	{
		keywords: []string{"政策", "监管", "合规"},
		scene:    "government building with legal documents, gavel and regulatory compliance symbols",
	},
	{
		keywords: []string{"DeFi", "协议", "借贷"},
		scene:    "decentralized finance network diagram with interconnected protocol nodes and liquidity pools",
	},
	{
		keywords: []string{"NFT", "数字藏品", "元宇宙"},
		scene:    "digital art gallery with glowing NFT frames and metaverse landscape",
	},
	{
		keywords: []string{"技术", "开发", "升级"},
		scene:    "blockchain network visualization with code snippets, nodes and data blocks",
	},
	{
		keywords: []string{"投融资", "融资", "投资"},
		scene:    "venture capital boardroom with investment charts, handshake and funding milestones",
	},
}

const defaultScene = "abstract blockchain technology background with connected blocks and digital particles"

// fallbackPrompts builds slide-style prompts from section titles alone.
func fallbackPrompts(sections []section) []promptInfo {
	limited := sections
	if len(limited) > fallbackImageLimit {
		limited = limited[:fallbackImageLimit]
	}

	prompts := make([]promptInfo, 0, len(limited))
	for _, s := range limited {
		title := cleanSectionTitle(s.Title)
		if title == "" {
			continue
		}
		prompts = append(prompts, promptInfo{
			Section:     s.Title,
			Title:       title,
			Description: "板块配图: " + title,
			Prompt:      buildFallbackPrompt(title),
		})
	}

	return prompts
}

// cleanSectionTitle strips leading emoji and decoration from a heading.
func cleanSectionTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	fields := strings.Fields(trimmed)
	var kept []string
	for _, f := range fields {
		if isDecorative(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// isDecorative reports whether a token is pure emoji or symbols.
func isDecorative(token string) bool {
	for _, r := range token {
		if r < 0x2000 || (r >= 0x4E00 && r <= 0x9FFF) {
			return false
		}
	}
	return true
}

// buildFallbackPrompt renders the scene template matching the title.
func buildFallbackPrompt(title string) string {
	scene := defaultScene
	for _, c := range categoryScenes {
		for _, kw := range c.keywords {
			if strings.Contains(title, kw) {
				scene = c.scene
				break
			}
		}
	}

	return fmt.Sprintf(
		"Professional presentation slide, 16:9 aspect ratio, %s, "+
			"large Chinese title text \"%s\" prominently displayed, "+
			"modern business infographic style, high contrast color scheme, "+
			"clean minimal layout, corporate blue and white palette",
		scene, title)
}
