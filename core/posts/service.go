// ABOUTME: Posts service performs the slug-keyed idempotent upsert of the daily article
// ABOUTME: Also writes the local Markdown backup file that guards against data loss

package posts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

const slugPrefix = "blockchain-daily"

// Slug derives the deterministic upsert key for a date.
func Slug(date time.Time) string {
	return fmt.Sprintf("%s-%s", slugPrefix, date.Format("2006-01-02"))
}

// Service persists daily articles through a PostStore backend.
type Service struct {
	store     interfaces.PostStore
	outputDir string
	logger    interfaces.Logger
}

// NewService creates a posts service writing backups into outputDir.
func NewService(store interfaces.PostStore, outputDir string, logger interfaces.Logger) *Service {
	return &Service{
		store:     store,
		outputDir: outputDir,
		logger:    logger,
	}
}

// CreateDailyPost upserts the article keyed by the date-derived slug.
// A lookup miss (or lookup error) leads to an insert; an existing record
// is updated in place. Only a genuine storage failure returns an error,
// the one fatal condition of the pipeline.
func (s *Service) CreateDailyPost(ctx context.Context, article domain.Article, date time.Time) (*interfaces.Post, error) {
	dateStr := date.Format("2006-01-02")
	slug := Slug(date)

	tags := article.Tags
	if len(tags) == 0 {
		tags = []string{"区块链", "每日观察"}
	}

	description := article.Description
	if description == "" {
		description = "区块链每日观察 - " + dateStr
	}

	post := &interfaces.Post{
		Slug:        slug,
		Title:       cleanContent(article.Title),
		Date:        dateStr,
		Content:     cleanContent(article.Content),
		Description: cleanContent(description),
		Tags:        tags,
	}

	s.logger.Info("Saving daily post", map[string]interface{}{
		"slug":        slug,
		"content_len": len(post.Content),
	})

	existing, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		// A failed lookup is treated as a miss; the write decides fate.
		s.logger.Warn("Error checking post by slug", map[string]interface{}{
			"slug":  slug,
			"error": err.Error(),
		})
		existing = nil
	}

	var saved *interfaces.Post
	if existing != nil {
		s.logger.Info("Post already exists, updating", map[string]interface{}{"slug": slug})
		post.ID = existing.ID
		saved, err = s.store.Update(ctx, post)
	} else {
		s.logger.Info("Creating new post", map[string]interface{}{"slug": slug})
		saved, err = s.store.Insert(ctx, post)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating/updating post %s: %w", slug, err)
	}

	s.logger.Info("Successfully saved post", map[string]interface{}{
		"slug": saved.Slug,
		"id":   saved.ID,
	})
	return saved, nil
}

// WriteBackup writes the article to a local Markdown file so content is
// preserved even when the store write fails.
func (s *Service) WriteBackup(article domain.Article, dateStr string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("%s-%s.md", slugPrefix, dateStr))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", article.Title))
	sb.WriteString(fmt.Sprintf("> %s\n\n", article.Description))
	sb.WriteString(fmt.Sprintf("**Tags**: %s\n\n", strings.Join(article.Tags, ", ")))
	sb.WriteString("---\n\n")
	sb.WriteString(article.Content)

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", err
	}

	s.logger.Info("Backup saved", map[string]interface{}{"path": path})
	return path, nil
}

// cleanContent strips null bytes and invalid encoding that break JSON
// serialization in the store layer.
func cleanContent(content string) string {
	content = strings.ReplaceAll(content, "\x00", "")
	content = strings.ToValidUTF8(content, "")
	return strings.TrimSpace(content)
}
