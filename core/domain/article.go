// ABOUTME: Article domain model is the summarizer output persisted once per day
// ABOUTME: Also defines the generated image artifact attached to an article

package domain

// Article is the daily digest article produced by the summarizer.
type Article struct {
	// Title is the canonical post title
	Title string

	// Content is the Markdown body
	Content string

	// Description is a short summary, capped at 200 characters
	Description string

	// Tags are deduplicated category labels
	Tags []string

	// AttractiveTitle is an optional punchier title for covers/thumbnails
	AttractiveTitle string

	// CoverPrompt is an optional image-generation prompt for the cover
	CoverPrompt string
}

// GeneratedImage describes one image produced for an article.
// At most one image per run has IsCover set; the cover always sorts first.
type GeneratedImage struct {
	// Path is the local file the image was saved to
	Path string

	// Title is the image headline (section title or attractive title)
	Title string

	// Description is a short caption used in the PDF
	Description string

	// Section names the article heading the image illustrates
	Section string

	// IsCover marks the single lead image of a run
	IsCover bool
}

// RGBColor represents an RGB color value extracted from an image
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}
