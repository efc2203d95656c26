// ABOUTME: Video domain models for the optional narrated-video stage
// ABOUTME: Defines storyboard segments and the tagged video result type

package domain

// StoryboardSegment is one unit of the narration plan: a script excerpt,
// the English stock-footage search keyword, and the target duration.
type StoryboardSegment struct {
	// Text is the narration excerpt (Chinese)
	Text string `json:"text"`

	// Keyword is the English search term for the stock-footage provider
	Keyword string `json:"keyword"`

	// Duration is the target clip duration in seconds
	Duration float64 `json:"duration"`

	// Mood is an optional tone hint from the director
	Mood string `json:"mood,omitempty"`

	// VideoPath is filled in once footage has been retrieved
	VideoPath string `json:"-"`
}

// VideoResult is the tagged outcome of the video stage. The stage never
// raises past its boundary; failures are reported through this value.
type VideoResult struct {
	Success      bool
	VideoPath    string
	AudioPath    string
	Duration     float64
	FileSizeMB   float64
	SegmentCount int
	Error        string
}
