// Package images registers remote cover images under opaque local ids.
// Registration failures are non-fatal: callers receive an empty id and leave
// the image field unset.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"quarto/internal/logging"
)

// Registrar resolves a remote image URL into an opaque local image id.
// Implementations are internally synchronized and safe for use from
// concurrent adapter jobs.
type Registrar interface {
	// AddImage downloads and registers the image at url, returning its id.
	// Failure returns an empty id; when quiet is false the failure is also
	// logged at warning level.
	AddImage(ctx context.Context, url string, quiet bool) string
}

// Directory stores registered images as files in a single directory, named
// by the content hash.
type Directory struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

// NewDirectory creates a directory-backed registrar.
func NewDirectory(dir string, logger *slog.Logger) (*Directory, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("image directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure image directory: %w", err)
	}
	return &Directory{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logging.NewComponentLogger(logger, "images"),
	}, nil
}

// AddImage implements Registrar.
func (d *Directory) AddImage(ctx context.Context, url string, quiet bool) string {
	id, err := d.fetch(ctx, url)
	if err != nil {
		if !quiet {
			d.logger.Warn("image registration failed",
				logging.String("url", url),
				logging.Error(err))
		}
		return ""
	}
	return id
}

func (d *Directory) fetch(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("image url required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download returned %d", resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty image body")
	}

	id := fmt.Sprintf("%016x%s", xxhash.Sum64(payload), extensionFor(resp.Header.Get("Content-Type")))
	path := filepath.Join(d.dir, id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return id, nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".img"
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}

// Nop is a registrar that reports failure for every URL. Useful in tests and
// when no image directory is configured.
type Nop struct{}

// AddImage implements Registrar.
func (Nop) AddImage(context.Context, string, bool) string { return "" }

// Memory registers images without network access, mapping URLs to synthetic
// ids. It records every requested URL; tests use it to assert registration.
type Memory struct {
	mu   sync.Mutex
	urls []string
}

// NewMemory creates an in-memory registrar.
func NewMemory() *Memory {
	return &Memory{}
}

// AddImage implements Registrar.
func (m *Memory) AddImage(_ context.Context, url string, _ bool) string {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()
	return fmt.Sprintf("mem-%016x", xxhash.Sum64String(url))
}

// URLs returns the URLs registered so far.
func (m *Memory) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.urls...)
}
