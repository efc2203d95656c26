// ABOUTME: Image stage generates a cover plus per-section images for the article
// ABOUTME: Prompt authoring is an LLM call with a structural fallback; every image failure is isolated

package images

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
	"blockchain-daily/pkg/utils/textutil"
)

const (
	// Content images are capped for a reasonable viewing experience.
	defaultMaxImages = 20

	// Prompt authoring only looks at the leading sections.
	promptSectionLimit = 6

	// Fallback prompts cover fewer sections than AI-authored ones.
	fallbackImageLimit = 5
)

// Generator produces article images through an image-generation provider.
type Generator struct {
	chat        interfaces.ChatClient
	imageClient interfaces.ImageClient
	promptModel string
	imageModel  string
	outputDir   string
	maxImages   int
	logger      interfaces.Logger
}

// NewGenerator creates an image generator saving under outputDir/<date>/.
func NewGenerator(chat interfaces.ChatClient, imageClient interfaces.ImageClient, promptModel, imageModel, outputDir string, logger interfaces.Logger) *Generator {
	return &Generator{
		chat:        chat,
		imageClient: imageClient,
		promptModel: promptModel,
		imageModel:  imageModel,
		outputDir:   outputDir,
		maxImages:   defaultMaxImages,
		logger:      logger,
	}
}

// section is one level-2 heading block of the article.
type section struct {
	Title   string
	Content string
}

// promptInfo is one AI-authored (or fallback) image prompt.
type promptInfo struct {
	Section     string `json:"section"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// GenerateForArticle generates the cover first (when the article carries a
// cover prompt), then up to the cap of per-section content images. Each
// individual generation failure is caught and the loop continues; the
// method never returns an error.
func (g *Generator) GenerateForArticle(ctx context.Context, article domain.Article, dateStr string) []domain.GeneratedImage {
	var generated []domain.GeneratedImage

	outputPath := filepath.Join(g.outputDir, dateStr)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		g.logger.Error("Failed to create image output directory", map[string]interface{}{
			"path":  outputPath,
			"error": err.Error(),
		})
		return generated
	}

	if article.CoverPrompt != "" && article.AttractiveTitle != "" {
		if cover, ok := g.generateCover(ctx, article.CoverPrompt, article.AttractiveTitle, outputPath); ok {
			generated = append(generated, cover)
		}
	}

	sections := ParseSections(article.Content)
	g.logger.Info("Parsed article sections", map[string]interface{}{"sections": len(sections)})
	if len(sections) > g.maxImages {
		sections = sections[:g.maxImages]
	}

	prompts := g.generatePrompts(ctx, sections, dateStr)
	g.logger.Info("Generated image prompts", map[string]interface{}{"prompts": len(prompts)})

	// Content images start from 01; 00 is reserved for the cover.
	for i, info := range prompts {
		index := i + 1
		g.logger.Info("Generating image", map[string]interface{}{
			"index": index,
			"total": len(prompts),
			"title": info.Title,
		})

		data, err := g.imageClient.GenerateImage(ctx, g.imageModel, info.Prompt)
		if err != nil {
			g.logger.Error("Error generating image", map[string]interface{}{
				"index": index,
				"error": err.Error(),
			})
			continue
		}
		if len(data) == 0 {
			g.logger.Warn("No image produced", map[string]interface{}{"title": info.Title})
			continue
		}

		filename := fmt.Sprintf("%02d_%s.png", index, textutil.SanitizeFilename(info.Title))
		imagePath := filepath.Join(outputPath, filename)
		if err := os.WriteFile(imagePath, data, 0o644); err != nil {
			g.logger.Error("Failed to save image", map[string]interface{}{
				"path":  imagePath,
				"error": err.Error(),
			})
			continue
		}

		generated = append(generated, domain.GeneratedImage{
			Path:        imagePath,
			Title:       info.Title,
			Description: info.Description,
			Section:     info.Section,
			IsCover:     false,
		})
	}

	g.logger.Info("Image generation complete", map[string]interface{}{"images": len(generated)})
	return generated
}

// generateCover produces the single distinguished lead image. Its filename
// prefix keeps it ordered before all content images.
func (g *Generator) generateCover(ctx context.Context, coverPrompt, attractiveTitle, outputPath string) (domain.GeneratedImage, bool) {
	g.logger.Info("Generating cover image", map[string]interface{}{"title": attractiveTitle})

	data, err := g.imageClient.GenerateImage(ctx, g.imageModel, coverPrompt)
	if err != nil {
		g.logger.Error("Error generating cover image", map[string]interface{}{"error": err.Error()})
		return domain.GeneratedImage{}, false
	}
	if len(data) == 0 {
		g.logger.Warn("Failed to generate cover image", nil)
		return domain.GeneratedImage{}, false
	}

	filename := fmt.Sprintf("00_COVER_%s.png", textutil.SanitizeFilename(attractiveTitle))
	imagePath := filepath.Join(outputPath, filename)
	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		g.logger.Error("Failed to save cover image", map[string]interface{}{"error": err.Error()})
		return domain.GeneratedImage{}, false
	}

	return domain.GeneratedImage{
		Path:        imagePath,
		Title:       attractiveTitle,
		Description: "封面图: " + attractiveTitle,
		Section:     "COVER",
		IsCover:     true,
	}, true
}

// ParseSections splits markdown content into level-2 heading blocks.
func ParseSections(content string) []section {
	var sections []section
	var current *section

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &section{Title: strings.TrimSpace(strings.TrimPrefix(line, "##"))}
			continue
		}
		if current != nil {
			if current.Content != "" {
				current.Content += "\n"
			}
			current.Content += line
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}

	return sections
}

// generatePrompts asks the prompt model to author one slide-style prompt
// per section. When that call fails or returns unparseable JSON, the
// structural fallback templates are used instead.
func (g *Generator) generatePrompts(ctx context.Context, sections []section, dateStr string) []promptInfo {
	if len(sections) == 0 {
		return nil
	}

	if g.chat == nil {
		return fallbackPrompts(sections)
	}

	limited := sections
	if len(limited) > promptSectionLimit {
		limited = limited[:promptSectionLimit]
	}

	response, err := g.chat.Complete(ctx, interfaces.ChatRequest{
		Model: g.promptModel,
		Messages: []interfaces.ChatMessage{
			{Role: "user", Content: buildPromptAuthoringPrompt(limited, dateStr)},
		},
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	if err != nil {
		g.logger.Error("Error generating image prompts, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackPrompts(sections)
	}

	raw := textutil.ExtractJSONArray(response)
	if raw == "" {
		g.logger.Warn("No JSON array in prompt response, using fallback", nil)
		return fallbackPrompts(sections)
	}

	var prompts []promptInfo
	if err := json.Unmarshal([]byte(raw), &prompts); err != nil {
		g.logger.Error("Failed to parse prompt JSON, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackPrompts(sections)
	}

	valid := prompts[:0]
	for _, p := range prompts {
		if p.Prompt != "" && p.Title != "" {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return fallbackPrompts(sections)
	}

	return valid
}

// buildPromptAuthoringPrompt assembles the prompt-authoring request.
func buildPromptAuthoringPrompt(sections []section, dateStr string) string {
	var sb strings.Builder
	for i, s := range sections {
		preview := []rune(s.Content)
		if len(preview) > 500 {
			preview = preview[:500]
		}
		sb.WriteString(fmt.Sprintf("Section %d: %s\n%s...\n\n", i+1, s.Title, string(preview)))
	}

	return fmt.Sprintf(`根据以下区块链新闻文章的各个板块，为每个板块生成专业的演示文稿风格信息图描述。

日期: %s

文章板块:
%s
要求: 16:9横屏布局、高对比度配色、大号中文标题、一张图一个核心信息、专业商务风格。

请以JSON格式返回，每个板块一个对象:
[
  {
    "section": "板块名称",
    "title": "中文标题",
    "description": "简短描述",
    "prompt": "详细的英文图片生成提示词"
  }
]

只输出JSON数组，不要其他文字。`, dateStr, sb.String())
}
