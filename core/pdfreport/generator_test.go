// ABOUTME: Tests for the PDF report generator
// ABOUTME: Covers image ordering, empty input, unreadable file skipping and accent fallback

package pdfreport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blockchain-daily/core/domain"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields map[string]interface{}) {}
func (noopLogger) Info(msg string, fields map[string]interface{})  {}
func (noopLogger) Warn(msg string, fields map[string]interface{})  {}
func (noopLogger) Error(msg string, fields map[string]interface{}) {}

// writePNG writes a small solid-color PNG and returns its path.
func writePNG(t *testing.T, dir, name string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return path
}

func TestGenerate_NoImages(t *testing.T) {
	g := NewGenerator(t.TempDir(), noopLogger{})

	path, err := g.Generate(nil, "2025-06-10")
	if err == nil {
		t.Error("Generate should fail with no images")
	}
	if path != "" {
		t.Errorf("Expected empty path, got %q", path)
	}
}

func TestOrderImages_CoverFirst(t *testing.T) {
	images := []domain.GeneratedImage{
		{Path: "out/02_section.png"},
		{Path: "out/01_section.png"},
		{Path: "out/00_COVER_title.png", IsCover: true},
	}

	ordered := orderImages(images)

	if len(ordered) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(ordered))
	}
	if !ordered[0].IsCover {
		t.Error("Cover should sort first")
	}
	if ordered[1].Path != "out/01_section.png" || ordered[2].Path != "out/02_section.png" {
		t.Errorf("Content images not sorted by path: %q, %q", ordered[1].Path, ordered[2].Path)
	}

	// Input must not be reordered in place.
	if images[0].Path != "out/02_section.png" {
		t.Error("orderImages should not mutate its input")
	}
}

func TestGenerate_WritesPDF(t *testing.T) {
	dir := t.TempDir()
	cover := writePNG(t, dir, "00_COVER_test.png", color.RGBA{R: 200, G: 30, B: 30, A: 255})
	content := writePNG(t, dir, "01_market.png", color.RGBA{R: 30, G: 30, B: 200, A: 255})

	outDir := filepath.Join(dir, "out")
	g := NewGenerator(outDir, noopLogger{})

	path, err := g.Generate([]domain.GeneratedImage{
		{Path: content},
		{Path: cover, IsCover: true},
	}, "2025-06-10")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasSuffix(path, "blockchain-daily-2025-06-10.pdf") {
		t.Errorf("Unexpected PDF path: %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("PDF file is empty")
	}
}

func TestGenerate_SkipsUnreadableImage(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "01_good.png", color.RGBA{R: 10, G: 100, B: 10, A: 255})

	bogus := filepath.Join(dir, "02_bogus.png")
	if err := os.WriteFile(bogus, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write bogus file: %v", err)
	}

	g := NewGenerator(filepath.Join(dir, "out"), noopLogger{})
	path, err := g.Generate([]domain.GeneratedImage{
		{Path: good},
		{Path: bogus},
	}, "2025-06-10")
	if err != nil {
		t.Fatalf("Generate should skip the unreadable image, got error: %v", err)
	}
	if path == "" {
		t.Error("Expected a PDF path")
	}
}

func TestGenerate_AllUnreadable(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "01_bogus.png")
	if err := os.WriteFile(bogus, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write bogus file: %v", err)
	}

	g := NewGenerator(filepath.Join(dir, "out"), noopLogger{})
	_, err := g.Generate([]domain.GeneratedImage{{Path: bogus}}, "2025-06-10")
	if err == nil {
		t.Error("Generate should fail when no image is readable")
	}
}

func TestAccentColor_FallsBackWithoutCover(t *testing.T) {
	g := NewGenerator(t.TempDir(), noopLogger{})

	accent := g.accentColor([]domain.GeneratedImage{{Path: "01_section.png"}})
	if accent != defaultAccent {
		t.Errorf("Expected default accent without a cover, got %+v", accent)
	}
}

func TestAccentColor_FallsBackOnUnreadableCover(t *testing.T) {
	g := NewGenerator(t.TempDir(), noopLogger{})

	accent := g.accentColor([]domain.GeneratedImage{
		{Path: filepath.Join(t.TempDir(), "missing.png"), IsCover: true},
	})
	if accent != defaultAccent {
		t.Errorf("Expected default accent for unreadable cover, got %+v", accent)
	}
}
