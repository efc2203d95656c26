// ABOUTME: Tests for the stock footage provider's cache keying
// ABOUTME: Cache files are named by a truncated hash of the normalized query

package video

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheFile_TruncatedHashKey(t *testing.T) {
	p := NewFootageProvider("", "", "cache/pexels", "", nil, noopLogger{})

	path := p.cacheFile("bitcoin trading")

	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".mp4") {
		t.Fatalf("Expected .mp4 cache file, got %q", name)
	}
	key := strings.TrimSuffix(name, ".mp4")
	if len(key) != 16 {
		t.Errorf("Cache key should be 16 hex chars, got %d (%q)", len(key), key)
	}
	for _, r := range key {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("Cache key contains non-hex character %q", r)
		}
	}
}

func TestCacheFile_NormalizesQuery(t *testing.T) {
	p := NewFootageProvider("", "", "cache/pexels", "", nil, noopLogger{})

	base := p.cacheFile("bitcoin trading")

	if got := p.cacheFile("  Bitcoin Trading  "); got != base {
		t.Errorf("Case and whitespace should not change the cache file: %q vs %q", got, base)
	}
	if got := p.cacheFile("ethereum network"); got == base {
		t.Error("Different queries should map to different cache files")
	}
}
