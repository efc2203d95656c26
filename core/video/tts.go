// ABOUTME: Narration step turns the article markdown into a spoken audio track
// ABOUTME: Markdown decoration is stripped so the voice reads plain prose

package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blockchain-daily/core/interfaces"
	"blockchain-daily/pkg/utils/textutil"
)

// Narration length is capped so the video stays in the short-form range.
const maxNarrationRunes = 2000

// Narrator synthesizes the narration audio for a daily video.
type Narrator struct {
	speech    interfaces.SpeechClient
	outputDir string
	logger    interfaces.Logger
}

// NewNarrator creates a narrator writing audio under outputDir.
func NewNarrator(speech interfaces.SpeechClient, outputDir string, logger interfaces.Logger) *Narrator {
	return &Narrator{speech: speech, outputDir: outputDir, logger: logger}
}

// Narrate builds the narration text from the article content, synthesizes
// it and writes the audio file. Returns the audio path and the narration
// text used, so the storyboard can segment against the same words.
func (n *Narrator) Narrate(ctx context.Context, title, content, dateStr string) (string, string, error) {
	text := BuildNarrationText(title, content)
	if text == "" {
		return "", "", fmt.Errorf("no narration text could be derived from article")
	}

	n.logger.Info("Synthesizing narration", map[string]interface{}{
		"chars": len([]rune(text)),
	})

	audio, err := n.speech.Synthesize(ctx, text)
	if err != nil {
		return "", "", fmt.Errorf("speech synthesis failed: %w", err)
	}
	if len(audio) == 0 {
		return "", "", fmt.Errorf("speech synthesis returned no audio")
	}

	if err := os.MkdirAll(n.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create audio output directory: %w", err)
	}

	audioPath := filepath.Join(n.outputDir, fmt.Sprintf("narration-%s.mp3", dateStr))
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to save narration audio: %w", err)
	}

	return audioPath, text, nil
}

// BuildNarrationText flattens the article into readable prose, with the
// title as the opening line.
func BuildNarrationText(title, content string) string {
	plain := textutil.StripMarkdown(content)
	if plain == "" {
		return ""
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(title)
		sb.WriteString("。")
	}
	sb.WriteString(plain)

	runes := []rune(sb.String())
	if len(runes) > maxNarrationRunes {
		runes = runes[:maxNarrationRunes]
	}
	return string(runes)
}
