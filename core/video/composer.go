// ABOUTME: Composer renders the final video by driving ffmpeg over the storyboard clips
// ABOUTME: Each clip gets a random start, slight speed jitter, center crop and fades before concat

package video

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

const (
	coverIntroSeconds = 3.0
	fadeSeconds       = 0.4
)

// Composer turns storyboard segments plus narration into one video file.
type Composer struct {
	ffmpegPath  string
	ffprobePath string
	width       int
	height      int
	fps         int
	workDir     string
	logger      interfaces.Logger
}

// NewComposer creates a composer. Binary paths default to the ones on PATH.
func NewComposer(ffmpegPath, ffprobePath string, width, height, fps int, workDir string, logger interfaces.Logger) *Composer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Composer{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		width:       width,
		height:      height,
		fps:         fps,
		workDir:     workDir,
		logger:      logger,
	}
}

// Compose renders the final video. coverImage may be empty, in which
// case no intro card is prepended.
func (c *Composer) Compose(ctx context.Context, segments []domain.StoryboardSegment, audioPath, coverImage, outputPath string) (float64, error) {
	if len(segments) == 0 {
		return 0, fmt.Errorf("no segments to compose")
	}

	tmpDir, err := os.MkdirTemp(c.workDir, "compose-")
	if err != nil {
		return 0, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var clipPaths []string

	if coverImage != "" {
		coverClip := filepath.Join(tmpDir, "clip_cover.mp4")
		if err := c.renderCoverClip(ctx, coverImage, coverClip); err != nil {
			c.logger.Warn("Cover intro failed, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			clipPaths = append(clipPaths, coverClip)
		}
	}

	for i, seg := range segments {
		if seg.VideoPath == "" {
			continue
		}
		clipPath := filepath.Join(tmpDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := c.renderSegmentClip(ctx, seg, clipPath); err != nil {
			c.logger.Warn("Segment render failed, skipping", map[string]interface{}{
				"segment": i,
				"error":   err.Error(),
			})
			continue
		}
		clipPaths = append(clipPaths, clipPath)
	}

	if len(clipPaths) == 0 {
		return 0, fmt.Errorf("no segment clips rendered")
	}

	silent := filepath.Join(tmpDir, "silent.mp4")
	if err := c.concat(ctx, clipPaths, silent, tmpDir); err != nil {
		return 0, fmt.Errorf("failed to concatenate clips: %w", err)
	}

	audioDuration, err := c.ProbeDuration(ctx, audioPath)
	if err != nil {
		return 0, fmt.Errorf("failed to probe narration duration: %w", err)
	}

	if err := c.mux(ctx, silent, audioPath, audioDuration, outputPath); err != nil {
		return 0, fmt.Errorf("failed to mux audio: %w", err)
	}

	return audioDuration, nil
}

// renderSegmentClip cuts a segment-length slice out of the source
// footage, with a random start point, speed jitter, crop and fades.
func (c *Composer) renderSegmentClip(ctx context.Context, seg domain.StoryboardSegment, outPath string) error {
	sourceDuration, err := c.ProbeDuration(ctx, seg.VideoPath)
	if err != nil {
		return err
	}

	speed := 0.95 + rand.Float64()*0.10
	needed := seg.Duration * speed

	start := 0.0
	if sourceDuration > needed {
		start = rand.Float64() * (sourceDuration - needed)
	}

	fadeOutStart := seg.Duration - fadeSeconds
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}

	filter := fmt.Sprintf(
		"setpts=PTS/%0.4f,scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,"+
			"fade=t=in:st=0:d=%0.2f,fade=t=out:st=%0.2f:d=%0.2f",
		speed, c.width, c.height, c.width, c.height, c.fps,
		fadeSeconds, fadeOutStart, fadeSeconds)

	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-i", seg.VideoPath,
		"-t", formatSeconds(seg.Duration),
		"-vf", filter,
		"-an",
		"-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p",
		outPath,
	}
	return c.runFFmpeg(ctx, args)
}

// renderCoverClip turns the cover image into a short opening card.
func (c *Composer) renderCoverClip(ctx context.Context, coverImage, outPath string) error {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d,"+
			"fade=t=in:st=0:d=%0.2f,fade=t=out:st=%0.2f:d=%0.2f",
		c.width, c.height, c.width, c.height, c.fps,
		fadeSeconds, coverIntroSeconds-fadeSeconds, fadeSeconds)

	args := []string{
		"-y",
		"-loop", "1",
		"-i", coverImage,
		"-t", formatSeconds(coverIntroSeconds),
		"-vf", filter,
		"-an",
		"-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p",
		outPath,
	}
	return c.runFFmpeg(ctx, args)
}

// concat joins clips with the concat demuxer.
func (c *Composer) concat(ctx context.Context, clips []string, outPath, tmpDir string) error {
	listPath := filepath.Join(tmpDir, "concat.txt")
	var sb strings.Builder
	for _, clip := range clips {
		fmt.Fprintf(&sb, "file '%s'\n", clip)
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0o644); err != nil {
		return err
	}

	args := []string{
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
	return c.runFFmpeg(ctx, args)
}

// mux lays the narration over the video, looping the video when it is
// shorter than the audio and trimming when longer.
func (c *Composer) mux(ctx context.Context, videoPath, audioPath string, audioDuration float64, outPath string) error {
	videoDuration, err := c.ProbeDuration(ctx, videoPath)
	if err != nil {
		return err
	}

	args := []string{"-y"}
	if videoDuration < audioDuration {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", videoPath,
		"-i", audioPath,
		"-t", formatSeconds(audioDuration),
		"-map", "0:v", "-map", "1:a",
		"-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		outPath,
	)
	return c.runFFmpeg(ctx, args)
}

// ProbeDuration reads a media file's duration in seconds via ffprobe.
func (c *Composer) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", string(out), err)
	}
	return duration, nil
}

func (c *Composer) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		tail := stderr.String()
		if len(tail) > 500 {
			tail = tail[len(tail)-500:]
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tail)
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
