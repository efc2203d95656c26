package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields map[string]interface{}) {}
func (noopLogger) Info(msg string, fields map[string]interface{})  {}
func (noopLogger) Warn(msg string, fields map[string]interface{})  {}
func (noopLogger) Error(msg string, fields map[string]interface{}) {}

// stubFetcher returns a fixed raw item set
type stubFetcher struct {
	items []domain.NewsItem
}

func (s *stubFetcher) FetchAll(ctx context.Context, lookbackHours int) []domain.NewsItem {
	return s.items
}

// stubRefiner passes items through unchanged unless a transform is set
type stubRefiner struct {
	transform func([]domain.NewsItem) []domain.NewsItem
}

func (s *stubRefiner) Process(items []domain.NewsItem) []domain.NewsItem {
	if s.transform != nil {
		return s.transform(items)
	}
	return items
}

// stubWriter records whether the title/cover call happened
type stubWriter struct {
	titleCoverCalled bool
}

func (s *stubWriter) ProcessDailyNews(ctx context.Context, items []domain.NewsItem, dateStr string) domain.Article {
	return domain.Article{
		Title:   "区块链每日观察 - " + dateStr,
		Content: "## 市场动态\n\n内容。",
	}
}

func (s *stubWriter) GenerateTitleAndCover(ctx context.Context, content, dateStr string) (string, string) {
	s.titleCoverCalled = true
	return "吸引人的标题", "cover prompt"
}

// stubPublisher can fail either the backup or the store write
type stubPublisher struct {
	backupErr  error
	persistErr error

	backupCalled  bool
	persistCalled bool
	persisted     domain.Article
}

func (s *stubPublisher) CreateDailyPost(ctx context.Context, article domain.Article, date time.Time) (*interfaces.Post, error) {
	s.persistCalled = true
	s.persisted = article
	if s.persistErr != nil {
		return nil, s.persistErr
	}
	return &interfaces.Post{ID: "id-1", Slug: "blockchain-daily-" + date.Format("2006-01-02")}, nil
}

func (s *stubPublisher) WriteBackup(article domain.Article, dateStr string) (string, error) {
	s.backupCalled = true
	if s.backupErr != nil {
		return "", s.backupErr
	}
	return "/tmp/backup.md", nil
}

type stubImageStage struct {
	images []domain.GeneratedImage
}

func (s *stubImageStage) GenerateForArticle(ctx context.Context, article domain.Article, dateStr string) []domain.GeneratedImage {
	return s.images
}

type stubPDFStage struct {
	path   string
	err    error
	called bool
}

func (s *stubPDFStage) Generate(images []domain.GeneratedImage, dateStr string) (string, error) {
	s.called = true
	return s.path, s.err
}

type stubEmailStage struct {
	ok      bool
	called  bool
	pdfPath string
}

func (s *stubEmailStage) Send(article domain.Article, dateStr, pdfPath string, images []domain.GeneratedImage, newsCount int) bool {
	s.called = true
	s.pdfPath = pdfPath
	return s.ok
}

type stubVideoStage struct {
	result domain.VideoResult
	cover  string
	called bool
}

func (s *stubVideoStage) Generate(ctx context.Context, article domain.Article, dateStr, coverImage string) domain.VideoResult {
	s.called = true
	s.cover = coverImage
	return s.result
}

func newsItems(n int) []domain.NewsItem {
	items := make([]domain.NewsItem, n)
	for i := range items {
		items[i] = domain.NewsItem{Title: "新闻", Body: "足够长的正文内容用于测试流水线。"}
	}
	return items
}

func testPipeline(fetcher Fetcher, publisher Publisher) (*Pipeline, *stubWriter) {
	writer := &stubWriter{}
	p := New(fetcher, &stubRefiner{}, writer, publisher, 24, time.UTC, noopLogger{})
	p.now = func() time.Time { return time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC) }
	return p, writer
}

func TestRun_NoNewsIsCleanNoOp(t *testing.T) {
	publisher := &stubPublisher{}
	p, _ := testPipeline(&stubFetcher{}, publisher)

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("Run returned error on empty day: %v", err)
	}
	if publisher.persistCalled {
		t.Error("persist must not run when nothing was fetched")
	}
	if report.Date != "2025-06-10" {
		t.Errorf("report date = %q", report.Date)
	}
	if report.StageStatusOf("summarize") != StagePending {
		t.Error("summarize must not run on an empty day")
	}
}

func TestRun_AllItemsFilteredOutIsCleanNoOp(t *testing.T) {
	publisher := &stubPublisher{}
	writer := &stubWriter{}
	refiner := &stubRefiner{transform: func([]domain.NewsItem) []domain.NewsItem { return nil }}
	p := New(&stubFetcher{items: newsItems(5)}, refiner, writer, publisher, 24, time.UTC, noopLogger{})

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if publisher.persistCalled {
		t.Error("persist must not run when everything was filtered out")
	}
	if report.StageStatusOf("filter") != StageSucceeded {
		t.Error("filter stage should still be recorded")
	}
}

func TestRun_MandatoryChainSucceeds(t *testing.T) {
	publisher := &stubPublisher{}
	p, writer := testPipeline(&stubFetcher{items: newsItems(3)}, publisher)

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !publisher.backupCalled || !publisher.persistCalled {
		t.Error("backup and persist must both run")
	}
	if report.NewsCount != 3 {
		t.Errorf("NewsCount = %d, want 3", report.NewsCount)
	}
	if report.StageStatusOf("persist") != StageSucceeded {
		t.Error("persist stage should succeed")
	}
	// No optional stage configured, so no title/cover call either.
	if writer.titleCoverCalled {
		t.Error("title/cover must not run without image or video stages")
	}
	for _, name := range []string{"images", "pdf", "email", "video"} {
		if report.StageStatusOf(name) != StageSkipped {
			t.Errorf("stage %s = %s, want skipped", name, report.StageStatusOf(name))
		}
	}
}

func TestRun_PersistFailureIsFatal(t *testing.T) {
	publisher := &stubPublisher{persistErr: errors.New("store down")}
	p, _ := testPipeline(&stubFetcher{items: newsItems(2)}, publisher)

	report, err := p.Run(context.Background())

	if err == nil {
		t.Fatal("Run must fail when the store write fails")
	}
	if report.StageStatusOf("persist") != StageFailed {
		t.Error("persist stage should be recorded as failed")
	}
}

func TestRun_BackupFailureOnlyWarns(t *testing.T) {
	publisher := &stubPublisher{backupErr: errors.New("disk full")}
	p, _ := testPipeline(&stubFetcher{items: newsItems(2)}, publisher)

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("backup failure must not fail the run: %v", err)
	}
	if report.StageStatusOf("backup") != StageFailed {
		t.Error("backup stage should be recorded as failed")
	}
	if !publisher.persistCalled {
		t.Error("persist must still run after a failed backup")
	}
}

func TestRun_ImageStageFailureIsIsolated(t *testing.T) {
	publisher := &stubPublisher{}
	p, _ := testPipeline(&stubFetcher{items: newsItems(2)}, publisher)
	pdf := &stubPDFStage{path: "/tmp/report.pdf"}
	email := &stubEmailStage{ok: true}
	p.WithImages(&stubImageStage{}).WithPDF(pdf).WithEmail(email)

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("optional stage failure must not fail the run: %v", err)
	}
	if report.StageStatusOf("images") != StageFailed {
		t.Error("empty image output should record a failed stage")
	}
	// Downstream consumers degrade: no images, so no PDF and no email.
	if pdf.called {
		t.Error("PDF stage must not run without images")
	}
	if report.StageStatusOf("pdf") != StageSkipped {
		t.Error("pdf stage should be skipped without images")
	}
	if email.called {
		t.Error("email stage must not run without a PDF")
	}
	if report.StageStatusOf("email") != StageSkipped {
		t.Error("email stage should be skipped without a PDF")
	}
}

func TestRun_PDFFailureSkipsEmail(t *testing.T) {
	publisher := &stubPublisher{}
	p, _ := testPipeline(&stubFetcher{items: newsItems(2)}, publisher)
	images := &stubImageStage{images: []domain.GeneratedImage{{Path: "/tmp/00_cover.png", IsCover: true}}}
	pdf := &stubPDFStage{err: errors.New("font missing")}
	email := &stubEmailStage{ok: true}
	p.WithImages(images).WithPDF(pdf).WithEmail(email)

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.StageStatusOf("pdf") != StageFailed {
		t.Error("pdf stage should be failed")
	}
	if email.called {
		t.Error("email must not be sent without a PDF attachment")
	}
	if report.StageStatusOf("email") != StageSkipped {
		t.Error("email stage should be skipped")
	}
}

func TestRun_FullOptionalChain(t *testing.T) {
	publisher := &stubPublisher{}
	p, writer := testPipeline(&stubFetcher{items: newsItems(2)}, publisher)
	cover := domain.GeneratedImage{Path: "/tmp/00_cover.png", IsCover: true}
	images := &stubImageStage{images: []domain.GeneratedImage{cover, {Path: "/tmp/01_section.png"}}}
	pdf := &stubPDFStage{path: "/tmp/report.pdf"}
	email := &stubEmailStage{ok: true}
	videoStage := &stubVideoStage{result: domain.VideoResult{Success: true, VideoPath: "/tmp/daily.mp4"}}
	p.WithImages(images).WithPDF(pdf).WithEmail(email).WithVideo(videoStage)

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !writer.titleCoverCalled {
		t.Error("title/cover should run when optional stages are enabled")
	}
	if publisher.persisted.AttractiveTitle != "吸引人的标题" {
		t.Error("attractive title not propagated to the persisted article")
	}
	if email.pdfPath != "/tmp/report.pdf" {
		t.Errorf("email received pdfPath %q", email.pdfPath)
	}
	if videoStage.cover != "/tmp/00_cover.png" {
		t.Errorf("video stage received cover %q, want the generated cover path", videoStage.cover)
	}
	for _, name := range []string{"images", "pdf", "email", "video"} {
		if report.StageStatusOf(name) != StageSucceeded {
			t.Errorf("stage %s = %s, want succeeded", name, report.StageStatusOf(name))
		}
	}
}

func TestRun_VideoFailureIsIsolated(t *testing.T) {
	publisher := &stubPublisher{}
	p, _ := testPipeline(&stubFetcher{items: newsItems(2)}, publisher)
	videoStage := &stubVideoStage{result: domain.VideoResult{Success: false, Error: "no footage available"}}
	p.WithVideo(videoStage)

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("video failure must not fail the run: %v", err)
	}
	if report.StageStatusOf("video") != StageFailed {
		t.Error("video stage should be recorded as failed")
	}
	if report.StageStatusOf("persist") != StageSucceeded {
		t.Error("persist already succeeded and must stay succeeded")
	}
}

func TestRun_EmailDeliveryFailureRecorded(t *testing.T) {
	publisher := &stubPublisher{}
	p, _ := testPipeline(&stubFetcher{items: newsItems(2)}, publisher)
	images := &stubImageStage{images: []domain.GeneratedImage{{Path: "/tmp/00_cover.png", IsCover: true}}}
	p.WithImages(images).WithPDF(&stubPDFStage{path: "/tmp/report.pdf"}).WithEmail(&stubEmailStage{ok: false})

	report, err := p.Run(context.Background())

	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.StageStatusOf("email") != StageFailed {
		t.Error("failed delivery should record a failed email stage")
	}
}
