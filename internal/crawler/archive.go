package crawler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Archiver stores a raw snapshot of a fetched page.
type Archiver interface {
	SaveHTML(ctx context.Context, page Page) (string, error)
}

// FileSystemArchive writes HTML snapshots to disk, one file per page,
// named by host, path, and a URL hash.
type FileSystemArchive struct {
	root     string
	maxBytes int64
	logger   *zap.Logger
}

// NewFileSystemArchive returns an archive rooted at dir.
func NewFileSystemArchive(root string, maxBytes int64, logger *zap.Logger) (*FileSystemArchive, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", root, err)
	}
	return &FileSystemArchive{
		root:     root,
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// SaveHTML writes the page body to disk and returns the target path.
func (a *FileSystemArchive) SaveHTML(ctx context.Context, page Page) (string, error) {
	if len(page.Body) == 0 {
		return "", fmt.Errorf("empty page body")
	}
	if int64(len(page.Body)) > a.maxBytes {
		return "", fmt.Errorf("page size %d exceeds max %d", len(page.Body), a.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	target := filepath.Join(a.root, fmt.Sprintf("%s.html", safeBasename(page.snapshotURL())))
	if err := os.WriteFile(target, page.Body, 0o600); err != nil {
		return "", fmt.Errorf("writing HTML to %s: %w", target, err)
	}
	return target, nil
}

func (p Page) snapshotURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safeBasename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return hashURL(raw)
	}
	host := invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
	p := strings.Trim(u.EscapedPath(), "/")
	if p == "" {
		p = "root"
	}
	p = invalidFilenameChars.ReplaceAllString(p, "_")
	return fmt.Sprintf("%s_%s_%s", host, p, hashURL(raw)[:16])
}

func hashURL(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
