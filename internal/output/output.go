// Package output writes generation results into the output directory.
package output

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Downloader fetches remote content. *genapi.Client implements it.
type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// SaveVideo downloads the result of jobID into dir and returns the file path.
// The download lands in a temporary file first so a failed transfer never
// leaves a truncated video behind.
func SaveVideo(ctx context.Context, d Downloader, dir, jobID, resultURL string) (string, error) {
	if strings.TrimSpace(resultURL) == "" {
		return "", fmt.Errorf("job %s has no result url", jobID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	dest := filepath.Join(dir, "reel-"+sanitize(jobID)+extension(resultURL, ".mp4"))
	tmp, err := os.CreateTemp(dir, ".reel-download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := d.Download(ctx, resultURL, tmp); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("download result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("move download: %w", err)
	}
	return dest, nil
}

// SaveImage writes decoded image bytes into dir, naming the file after now.
func SaveImage(dir, mime string, data []byte, now time.Time) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("reel-image-%s%s", now.Format("20060102-150405"), mimeExtension(mime))
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return dest, nil
}

func extension(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".mp4", ".webm", ".gif", ".mov":
		return ext
	}
	return fallback
}

func mimeExtension(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "result"
	}
	return b.String()
}
