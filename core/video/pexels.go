// ABOUTME: Stock footage provider backed by the Pexels video search API
// ABOUTME: Downloads are cached on disk and a cascading fallback chain keeps the composer fed

package video

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"blockchain-daily/core/interfaces"
)

// ErrNoFootageAvailable means every fallback tier came up empty.
var ErrNoFootageAvailable = errors.New("no stock footage available")

const pexelsSearchURL = "https://api.pexels.com/videos/search"

// fallbackQueries are generic scenes tried when the segment keyword
// yields nothing.
var fallbackQueries = []string{
	"blockchain technology",
	"digital network",
	"financial data",
	"city skyline night",
	"abstract particles",
	"computer code screen",
	"stock exchange",
	"futuristic technology",
	"data visualization",
	"glowing circuit board",
}

// FootageProvider fetches clips for storyboard segments.
type FootageProvider struct {
	apiKey      string
	orientation string
	cacheDir    string
	fallbackDir string
	httpClient  interfaces.HTTPClient
	logger      interfaces.Logger
}

// NewFootageProvider creates a provider. fallbackDir may be empty.
func NewFootageProvider(apiKey, orientation, cacheDir, fallbackDir string, httpClient interfaces.HTTPClient, logger interfaces.Logger) *FootageProvider {
	if orientation == "" {
		orientation = "landscape"
	}
	return &FootageProvider{
		apiKey:      apiKey,
		orientation: orientation,
		cacheDir:    cacheDir,
		fallbackDir: fallbackDir,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// pexelsVideoFile is one downloadable rendition of a clip.
type pexelsVideoFile struct {
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Link    string `json:"link"`
}

type pexelsVideo struct {
	ID         int               `json:"id"`
	Duration   int               `json:"duration"`
	VideoFiles []pexelsVideoFile `json:"video_files"`
}

type pexelsSearchResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

// Fetch returns a local path to footage for the query, walking the
// fallback chain: disk cache, API search, local fallback directory, any
// cached clip, then the generic query pool.
func (p *FootageProvider) Fetch(ctx context.Context, query string) (string, error) {
	if cached := p.cachedPath(query); cached != "" {
		return cached, nil
	}

	if path, err := p.searchAndDownload(ctx, query); err == nil {
		return path, nil
	} else {
		p.logger.Warn("Footage search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
	}

	if path := p.localFallback(); path != "" {
		return path, nil
	}

	if path := p.anyCached(); path != "" {
		return path, nil
	}

	for _, i := range rand.Perm(len(fallbackQueries)) {
		fq := fallbackQueries[i]
		if cached := p.cachedPath(fq); cached != "" {
			return cached, nil
		}
		if path, err := p.searchAndDownload(ctx, fq); err == nil {
			return path, nil
		}
	}

	return "", ErrNoFootageAvailable
}

// cachedPath returns the cache file for a query when it exists.
func (p *FootageProvider) cachedPath(query string) string {
	path := p.cacheFile(query)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path
	}
	return ""
}

func (p *FootageProvider) cacheFile(query string) string {
	sum := fmt.Sprintf("%x", md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query)))))
	return filepath.Join(p.cacheDir, sum[:16]+".mp4")
}

// searchAndDownload queries the API and caches the best rendition.
func (p *FootageProvider) searchAndDownload(ctx context.Context, query string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	searchURL := fmt.Sprintf("%s?query=%s&orientation=%s&per_page=5",
		pexelsSearchURL, strings.ReplaceAll(query, " ", "+"), p.orientation)

	resp, err := p.httpClient.GetWithHeaders(ctx, searchURL, map[string]string{
		"Authorization": p.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode())
	}

	var result pexelsSearchResponse
	if err := json.NewDecoder(resp.Body()).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse search response: %w", err)
	}
	if len(result.Videos) == 0 {
		return "", fmt.Errorf("no results for %q", query)
	}

	link := bestRendition(result.Videos[0].VideoFiles)
	if link == "" {
		return "", fmt.Errorf("no downloadable rendition for %q", query)
	}

	download, err := p.httpClient.Get(ctx, link)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer download.Body().Close()

	if download.StatusCode() != 200 {
		return "", fmt.Errorf("download returned status %d", download.StatusCode())
	}

	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create footage cache dir: %w", err)
	}

	path := p.cacheFile(query)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to cache footage: %w", err)
	}
	written, err := io.Copy(f, download.Body())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to cache footage: %w", err)
	}
	if written == 0 {
		os.Remove(path)
		return "", fmt.Errorf("empty footage download for %q", query)
	}

	p.logger.Info("Footage downloaded", map[string]interface{}{
		"query": query,
		"bytes": written,
	})
	return path, nil
}

// bestRendition prefers HD files, largest width first.
func bestRendition(files []pexelsVideoFile) string {
	best := ""
	bestWidth := 0
	for _, f := range files {
		if f.Quality == "hd" && f.Width > bestWidth {
			best = f.Link
			bestWidth = f.Width
		}
	}
	if best != "" {
		return best
	}
	for _, f := range files {
		if f.Width > bestWidth {
			best = f.Link
			bestWidth = f.Width
		}
	}
	return best
}

// localFallback picks a random clip from the configured fallback dir.
func (p *FootageProvider) localFallback() string {
	if p.fallbackDir == "" {
		return ""
	}
	return randomClip(p.fallbackDir)
}

// anyCached picks a random previously downloaded clip.
func (p *FootageProvider) anyCached() string {
	return randomClip(p.cacheDir)
}

func randomClip(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var clips []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".mp4" || ext == ".mov" || ext == ".webm" {
			clips = append(clips, filepath.Join(dir, e.Name()))
		}
	}
	if len(clips) == 0 {
		return ""
	}
	return clips[rand.Intn(len(clips))]
}
