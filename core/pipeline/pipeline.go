// ABOUTME: Pipeline orchestrates the daily run: fetch, filter, summarize, persist, then extras
// ABOUTME: Optional stages degrade gracefully; only the mandatory chain can fail the run

package pipeline

import (
	"context"
	"fmt"
	"time"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

// StageStatus is the outcome of one pipeline stage.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageSkipped   StageStatus = "skipped"
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
)

// StageResult records one stage's outcome for the run summary.
type StageResult struct {
	Name   string
	Status StageStatus
	Detail string
}

// Report summarizes a completed run.
type Report struct {
	Date      string
	NewsCount int
	Stages    []StageResult
}

// Fetcher produces raw news items for the lookback window.
type Fetcher interface {
	FetchAll(ctx context.Context, lookbackHours int) []domain.NewsItem
}

// Refiner dedupes, quality-filters and orders items.
type Refiner interface {
	Process(items []domain.NewsItem) []domain.NewsItem
}

// ArticleWriter turns the day's items into the publishable article.
type ArticleWriter interface {
	ProcessDailyNews(ctx context.Context, items []domain.NewsItem, dateStr string) domain.Article
	GenerateTitleAndCover(ctx context.Context, content, dateStr string) (string, string)
}

// Publisher persists the article and writes the local backup.
type Publisher interface {
	CreateDailyPost(ctx context.Context, article domain.Article, date time.Time) (*interfaces.Post, error)
	WriteBackup(article domain.Article, dateStr string) (string, error)
}

// ImageStage generates article images. Nil disables the stage.
type ImageStage interface {
	GenerateForArticle(ctx context.Context, article domain.Article, dateStr string) []domain.GeneratedImage
}

// PDFStage assembles the image report. Nil disables the stage.
type PDFStage interface {
	Generate(images []domain.GeneratedImage, dateStr string) (string, error)
}

// EmailStage delivers the report. Nil disables the stage.
type EmailStage interface {
	Send(article domain.Article, dateStr, pdfPath string, images []domain.GeneratedImage, newsCount int) bool
}

// VideoStage produces the daily video. Nil disables the stage.
type VideoStage interface {
	Generate(ctx context.Context, article domain.Article, dateStr, coverImage string) domain.VideoResult
}

// Pipeline runs one daily cycle end to end.
type Pipeline struct {
	fetcher   Fetcher
	refiner   Refiner
	writer    ArticleWriter
	publisher Publisher

	images ImageStage
	pdf    PDFStage
	email  EmailStage
	video  VideoStage

	lookbackHours int
	location      *time.Location
	now           func() time.Time
	logger        interfaces.Logger
}

// New creates a pipeline. Optional stages may be nil.
func New(fetcher Fetcher, refiner Refiner, writer ArticleWriter, publisher Publisher, lookbackHours int, location *time.Location, logger interfaces.Logger) *Pipeline {
	return &Pipeline{
		fetcher:       fetcher,
		refiner:       refiner,
		writer:        writer,
		publisher:     publisher,
		lookbackHours: lookbackHours,
		location:      location,
		now:           time.Now,
		logger:        logger,
	}
}

// WithImages enables image generation.
func (p *Pipeline) WithImages(stage ImageStage) *Pipeline { p.images = stage; return p }

// WithPDF enables PDF report assembly.
func (p *Pipeline) WithPDF(stage PDFStage) *Pipeline { p.pdf = stage; return p }

// WithEmail enables report delivery.
func (p *Pipeline) WithEmail(stage EmailStage) *Pipeline { p.email = stage; return p }

// WithVideo enables video production.
func (p *Pipeline) WithVideo(stage VideoStage) *Pipeline { p.video = stage; return p }

// Run executes one full cycle. It returns an error only when the
// mandatory chain fails; a day with no news is a clean no-op.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := p.now().In(p.location)
	dateStr := start.Format("2006-01-02")
	report := &Report{Date: dateStr}

	p.logger.Info("Starting daily run", map[string]interface{}{
		"date":     dateStr,
		"lookback": p.lookbackHours,
	})

	raw := p.fetcher.FetchAll(ctx, p.lookbackHours)
	report.record("fetch", StageSucceeded, fmt.Sprintf("%d items", len(raw)))
	if len(raw) == 0 {
		p.logger.Info("No news fetched, nothing to do", nil)
		p.summarize(report, start)
		return report, nil
	}

	items := p.refiner.Process(raw)
	report.record("filter", StageSucceeded, fmt.Sprintf("%d items kept", len(items)))
	if len(items) == 0 {
		p.logger.Info("All items filtered out, nothing to publish", nil)
		p.summarize(report, start)
		return report, nil
	}
	report.NewsCount = len(items)

	article := p.writer.ProcessDailyNews(ctx, items, dateStr)
	report.record("summarize", StageSucceeded, fmt.Sprintf("%d chars", len([]rune(article.Content))))

	if p.images != nil || p.video != nil {
		title, cover := p.writer.GenerateTitleAndCover(ctx, article.Content, dateStr)
		article.AttractiveTitle = title
		article.CoverPrompt = cover
	}

	if _, err := p.publisher.WriteBackup(article, dateStr); err != nil {
		p.logger.Warn("Local backup failed", map[string]interface{}{"error": err.Error()})
		report.record("backup", StageFailed, err.Error())
	} else {
		report.record("backup", StageSucceeded, "")
	}

	post, err := p.publisher.CreateDailyPost(ctx, article, start)
	if err != nil {
		report.record("persist", StageFailed, err.Error())
		p.summarize(report, start)
		return report, fmt.Errorf("failed to persist daily post: %w", err)
	}
	report.record("persist", StageSucceeded, post.Slug)

	generated := p.runImageStage(ctx, report, article, dateStr)
	pdfPath := p.runPDFStage(report, generated, dateStr)
	p.runEmailStage(report, article, dateStr, pdfPath, generated)
	p.runVideoStage(ctx, report, article, dateStr, coverPath(generated))

	p.summarize(report, start)
	return report, nil
}

func (p *Pipeline) runImageStage(ctx context.Context, report *Report, article domain.Article, dateStr string) []domain.GeneratedImage {
	if p.images == nil {
		report.record("images", StageSkipped, "disabled")
		return nil
	}
	generated := p.images.GenerateForArticle(ctx, article, dateStr)
	if len(generated) == 0 {
		report.record("images", StageFailed, "no images generated")
		return nil
	}
	report.record("images", StageSucceeded, fmt.Sprintf("%d images", len(generated)))
	return generated
}

func (p *Pipeline) runPDFStage(report *Report, generated []domain.GeneratedImage, dateStr string) string {
	if p.pdf == nil {
		report.record("pdf", StageSkipped, "disabled")
		return ""
	}
	if len(generated) == 0 {
		report.record("pdf", StageSkipped, "no images")
		return ""
	}
	pdfPath, err := p.pdf.Generate(generated, dateStr)
	if err != nil {
		p.logger.Error("PDF generation failed", map[string]interface{}{"error": err.Error()})
		report.record("pdf", StageFailed, err.Error())
		return ""
	}
	report.record("pdf", StageSucceeded, pdfPath)
	return pdfPath
}

func (p *Pipeline) runEmailStage(report *Report, article domain.Article, dateStr, pdfPath string, generated []domain.GeneratedImage) {
	if p.email == nil {
		report.record("email", StageSkipped, "disabled")
		return
	}
	if pdfPath == "" {
		report.record("email", StageSkipped, "no PDF to attach")
		return
	}
	if p.email.Send(article, dateStr, pdfPath, generated, report.NewsCount) {
		report.record("email", StageSucceeded, "")
	} else {
		report.record("email", StageFailed, "delivery failed")
	}
}

func (p *Pipeline) runVideoStage(ctx context.Context, report *Report, article domain.Article, dateStr, coverImage string) {
	if p.video == nil {
		report.record("video", StageSkipped, "disabled")
		return
	}
	result := p.video.Generate(ctx, article, dateStr, coverImage)
	if result.Success {
		report.record("video", StageSucceeded, result.VideoPath)
	} else {
		p.logger.Error("Video generation failed", map[string]interface{}{"error": result.Error})
		report.record("video", StageFailed, result.Error)
	}
}

// coverPath finds the cover image path in the generated set.
func coverPath(generated []domain.GeneratedImage) string {
	for _, img := range generated {
		if img.IsCover {
			return img.Path
		}
	}
	return ""
}

func (r *Report) record(name string, status StageStatus, detail string) {
	r.Stages = append(r.Stages, StageResult{Name: name, Status: status, Detail: detail})
}

// StageStatusOf returns the recorded status for a stage name, or
// StagePending when the stage never ran.
func (r *Report) StageStatusOf(name string) StageStatus {
	for _, s := range r.Stages {
		if s.Name == name {
			return s.Status
		}
	}
	return StagePending
}

func (p *Pipeline) summarize(report *Report, start time.Time) {
	fields := map[string]interface{}{
		"date":     report.Date,
		"news":     report.NewsCount,
		"duration": p.now().Sub(start).Round(time.Millisecond).String(),
	}
	for _, s := range report.Stages {
		fields["stage_"+s.Name] = string(s.Status)
	}
	p.logger.Info("Daily run finished", fields)
}
