// ABOUTME: Text helpers shared across pipeline stages
// ABOUTME: Title extraction, filename sanitizing, and markdown-to-plain conversion

package textutil

import (
	"regexp"
	"strings"

	"blockchain-daily/pkg/utils/htmlutil"
)

// CleanText strips HTML and collapses whitespace in raw provider text.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return htmlutil.StripHTML(text)
}

// ExtractTitle derives a short title from body text when a provider has no
// explicit title field. The first sentence is preferred; otherwise the text
// is truncated with an ellipsis.
func ExtractTitle(content string, maxLength int) string {
	content = CleanText(content)
	runes := []rune(content)

	var title string
	if idx := strings.Index(content, "。"); idx >= 0 {
		title = content[:idx] + "。"
	} else if idx := strings.Index(content, "."); idx >= 0 && len([]rune(content[:idx])) < maxLength {
		title = content[:idx] + "."
	} else if len(runes) > maxLength {
		title = string(runes[:maxLength])
	} else {
		title = content
	}

	titleRunes := []rune(title)
	if len(titleRunes) >= maxLength && !hasSentenceEnd(title) {
		title = string(titleRunes[:maxLength-3]) + "..."
	}

	return title
}

func hasSentenceEnd(s string) bool {
	for _, suffix := range []string{"。", ".", "!", "！"} {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
	whitespaceRuns      = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a string safe for use as a filename component,
// limited to 50 runes.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, "_")
	runes := []rune(name)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

var (
	mdHeading   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	mdBold      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdItalic    = regexp.MustCompile(`\*([^*]+)\*`)
	mdLink      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdCodeBlock = regexp.MustCompile("```[^`]*```")
	mdCode      = regexp.MustCompile("`([^`]+)`")
	mdListItem  = regexp.MustCompile(`(?m)^[-*]\s+`)
	mdQuote     = regexp.MustCompile(`(?m)^>\s+`)
	mdRule      = regexp.MustCompile(`---+`)
	mdEmoji     = regexp.MustCompile(`[📊🏛️💰🎨🔧💼🌐📰✨✓⚠️❌✅]`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// StripMarkdown converts a Markdown article into plain narration text
// suitable for TTS input.
func StripMarkdown(text string) string {
	clean := mdHeading.ReplaceAllString(text, "")
	clean = mdCodeBlock.ReplaceAllString(clean, "")
	clean = mdBold.ReplaceAllString(clean, "$1")
	clean = mdItalic.ReplaceAllString(clean, "$1")
	clean = mdLink.ReplaceAllString(clean, "$1")
	clean = mdCode.ReplaceAllString(clean, "$1")
	clean = mdListItem.ReplaceAllString(clean, "")
	clean = mdQuote.ReplaceAllString(clean, "")
	clean = mdRule.ReplaceAllString(clean, "")
	clean = mdEmoji.ReplaceAllString(clean, "")
	clean = blankRuns.ReplaceAllString(clean, "\n\n")
	return strings.TrimSpace(clean)
}
