// ABOUTME: Video stage orchestrator: narration, storyboard, footage, composition
// ABOUTME: Always returns a result value; failures are reported, never raised

package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

// Generator runs the full video production flow for a daily article.
type Generator struct {
	narrator  *Narrator
	director  *Director
	footage   *FootageProvider
	composer  *Composer
	outputDir string
	logger    interfaces.Logger
}

// NewGenerator wires the four video production steps together.
func NewGenerator(narrator *Narrator, director *Director, footage *FootageProvider, composer *Composer, outputDir string, logger interfaces.Logger) *Generator {
	return &Generator{
		narrator:  narrator,
		director:  director,
		footage:   footage,
		composer:  composer,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Generate produces the daily video. coverImage may be empty.
func (g *Generator) Generate(ctx context.Context, article domain.Article, dateStr, coverImage string) domain.VideoResult {
	audioPath, narration, err := g.narrator.Narrate(ctx, article.Title, article.Content, dateStr)
	if err != nil {
		return failure("narration", err)
	}

	segments := g.director.Plan(ctx, narration)
	if len(segments) == 0 {
		return failure("storyboard", fmt.Errorf("storyboard produced no segments"))
	}

	audioDuration, err := g.composer.ProbeDuration(ctx, audioPath)
	if err != nil {
		return failure("storyboard", err)
	}
	segments = SyncWithAudio(segments, audioDuration)

	fetched := 0
	for i := range segments {
		path, err := g.footage.Fetch(ctx, segments[i].Keyword)
		if err != nil {
			g.logger.Warn("No footage for segment", map[string]interface{}{
				"segment": i,
				"keyword": segments[i].Keyword,
			})
			continue
		}
		segments[i].VideoPath = path
		fetched++
	}
	if fetched == 0 {
		return failure("footage", ErrNoFootageAvailable)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return failure("compose", err)
	}
	videoPath := filepath.Join(g.outputDir, fmt.Sprintf("blockchain-daily-%s.mp4", dateStr))

	duration, err := g.composer.Compose(ctx, segments, audioPath, coverImage, videoPath)
	if err != nil {
		return failure("compose", err)
	}

	result := domain.VideoResult{
		Success:      true,
		VideoPath:    videoPath,
		AudioPath:    audioPath,
		Duration:     duration,
		SegmentCount: fetched,
	}
	if info, err := os.Stat(videoPath); err == nil {
		result.FileSizeMB = float64(info.Size()) / (1024 * 1024)
	}

	g.logger.Info("Video generated", map[string]interface{}{
		"path":     videoPath,
		"duration": duration,
		"segments": fetched,
		"size_mb":  result.FileSizeMB,
	})
	return result
}

func failure(step string, err error) domain.VideoResult {
	return domain.VideoResult{
		Success: false,
		Error:   fmt.Sprintf("%s: %v", step, err),
	}
}
