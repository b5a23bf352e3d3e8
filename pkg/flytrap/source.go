// source.go loads source files and extracts line windows around stack frames.

package flytrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// DefaultContextLines is the size of the window around a frame's line.
	DefaultContextLines = 10

	defaultMaxSourceSize   = 1 << 20
	defaultMaxCacheEntries = 256
)

// SourceReader loads the contents of a source file.
// Implementations must be safe for concurrent use and must report
// unavailable files with ok=false rather than failing.
type SourceReader interface {
	Read(ctx context.Context, path string) (contents string, ok bool)
}

// FileReader reads source files from the local file system and caches
// their contents by path.
type FileReader struct {
	maxSize    int64
	maxEntries int

	mu    sync.Mutex
	cache map[string]string
}

// NewFileReader creates a FileReader with a 1 MiB per-file limit.
func NewFileReader() *FileReader {
	return &FileReader{
		maxSize:    defaultMaxSourceSize,
		maxEntries: defaultMaxCacheEntries,
		cache:      make(map[string]string),
	}
}

// Read returns the file contents, or ok=false when the path is not a local
// regular file, is too large, or cannot be read.
func (r *FileReader) Read(ctx context.Context, path string) (string, bool) {
	path = strings.TrimPrefix(path, "file://")
	if !isFileLocation(path) || !filepath.IsAbs(path) {
		return "", false
	}

	r.mu.Lock()
	contents, hit := r.cache[path]
	r.mu.Unlock()
	if hit {
		return contents, true
	}

	if ctx.Err() != nil {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > r.maxSize {
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	contents = string(data)

	r.mu.Lock()
	if len(r.cache) >= r.maxEntries {
		// Evict an arbitrary entry; map order is random enough here.
		for k := range r.cache {
			delete(r.cache, k)
			break
		}
	}
	r.cache[path] = contents
	r.mu.Unlock()

	return contents, true
}

// ExtractContext returns the lines [targetLine-windowSize/2, targetLine+windowSize/2]
// of contents (1-based, inclusive), clipped to the file. A target outside the
// file yields an empty string.
func ExtractContext(contents string, targetLine, windowSize int) string {
	if contents == "" {
		return ""
	}
	if windowSize < 0 {
		windowSize = 0
	}

	lines := strings.Split(strings.TrimSuffix(contents, "\n"), "\n")
	half := windowSize / 2

	if targetLine < 1 || targetLine > len(lines) {
		return ""
	}
	start := max(targetLine-half, 1)
	end := min(targetLine+half, len(lines))

	return strings.Join(lines[start-1:end], "\n")
}
