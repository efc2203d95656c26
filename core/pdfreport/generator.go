// ABOUTME: PDF report stage assembles generated images into a landscape slideshow document
// ABOUTME: The cover image leads and its dominant color drives the page accent bar

package pdfreport

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/go-pdf/fpdf"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

// A4 landscape in millimeters.
const (
	pageWidth  = 297.0
	pageHeight = 210.0
	margin     = 8.0
	accentBarH = 3.0
)

var defaultAccent = domain.RGBColor{R: 30, G: 64, B: 175}

// Generator builds the daily PDF report from the image stage output.
type Generator struct {
	outputDir string
	logger    interfaces.Logger
}

// NewGenerator creates a PDF generator writing under outputDir.
func NewGenerator(outputDir string, logger interfaces.Logger) *Generator {
	return &Generator{outputDir: outputDir, logger: logger}
}

// Generate writes the report PDF and returns its path. An empty image
// list is an error so downstream delivery can skip the attachment.
func (g *Generator) Generate(images []domain.GeneratedImage, dateStr string) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("no images to assemble into PDF")
	}

	ordered := orderImages(images)
	accent := g.accentColor(ordered)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pages := 0
	for _, img := range ordered {
		w, h, err := imageDimensions(img.Path)
		if err != nil {
			g.logger.Warn("Skipping unreadable image", map[string]interface{}{
				"path":  img.Path,
				"error": err.Error(),
			})
			continue
		}

		pdf.AddPage()
		placeCentered(pdf, img.Path, w, h)

		// Accent bar along the bottom edge.
		pdf.SetFillColor(int(accent.R), int(accent.G), int(accent.B))
		pdf.Rect(0, pageHeight-accentBarH, pageWidth, accentBarH, "F")
		pages++
	}

	if pages == 0 {
		return "", fmt.Errorf("no readable images for PDF")
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create PDF output directory: %w", err)
	}

	pdfPath := filepath.Join(g.outputDir, fmt.Sprintf("blockchain-daily-%s.pdf", dateStr))
	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}

	g.logger.Info("PDF report generated", map[string]interface{}{
		"path":  pdfPath,
		"pages": pages,
	})
	return pdfPath, nil
}

// orderImages puts the cover first, then content images by path so the
// NN_ filename prefixes keep the section order.
func orderImages(images []domain.GeneratedImage) []domain.GeneratedImage {
	ordered := make([]domain.GeneratedImage, len(images))
	copy(ordered, images)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].IsCover != ordered[j].IsCover {
			return ordered[i].IsCover
		}
		return ordered[i].Path < ordered[j].Path
	})
	return ordered
}

// accentColor extracts the dominant color of the cover image. Any failure
// falls back to the default accent.
func (g *Generator) accentColor(images []domain.GeneratedImage) domain.RGBColor {
	var coverPath string
	for _, img := range images {
		if img.IsCover {
			coverPath = img.Path
			break
		}
	}
	if coverPath == "" {
		return defaultAccent
	}

	f, err := os.Open(coverPath)
	if err != nil {
		return defaultAccent
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return defaultAccent
	}

	colors, err := prominentcolor.Kmeans(decoded)
	if err != nil || len(colors) == 0 {
		g.logger.Warn("Dominant color extraction failed, using default accent", nil)
		return defaultAccent
	}

	c := colors[0].Color
	return domain.RGBColor{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B)}
}

// placeCentered fits an image inside the page margins preserving its
// aspect ratio.
func placeCentered(pdf *fpdf.Fpdf, path string, imgW, imgH int) {
	availW := pageWidth - 2*margin
	availH := pageHeight - 2*margin - accentBarH

	scale := availW / float64(imgW)
	if s := availH / float64(imgH); s < scale {
		scale = s
	}

	w := float64(imgW) * scale
	h := float64(imgH) * scale
	x := (pageWidth - w) / 2
	y := (pageHeight - accentBarH - h) / 2

	pdf.ImageOptions(path, x, y, w, h, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
}

// imageDimensions reads just the image header for its pixel size.
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
