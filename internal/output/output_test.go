package output

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	body string
	err  error
	url  string
}

func (f *fakeDownloader) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	f.url = rawURL
	n, _ := io.WriteString(w, f.body)
	return int64(n), f.err
}

func TestSaveVideo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "videos")
	d := &fakeDownloader{body: "mp4-bytes"}

	path, err := SaveVideo(context.Background(), d, dir, "abc-123", "/download/abc-123")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reel-abc-123.mp4"), path)
	assert.Equal(t, "/download/abc-123", d.url)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mp4-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be cleaned up")
}

func TestSaveVideoKeepsKnownExtensionAndSanitizesID(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveVideo(context.Background(), &fakeDownloader{body: "x"}, dir, "../evil id", "http://cdn/out/clip.WEBM?sig=1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reel-___evil_id.webm"), path)
}

func TestSaveVideoFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := SaveVideo(context.Background(), &fakeDownloader{body: "partial", err: errors.New("reset")}, dir, "j", "/download/j")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download result")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = SaveVideo(context.Background(), &fakeDownloader{}, dir, "j", " ")
	assert.Error(t, err)
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)

	path, err := SaveImage(dir, "image/png", []byte{0x89, 'P', 'N', 'G'}, now)
	require.NoError(t, err)
	assert.Equal(t, "reel-image-20240501-130405.png", filepath.Base(path))

	path, err = SaveImage(dir, "image/jpeg", []byte{1}, now)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	_, err = SaveImage(dir, "image/png", nil, now)
	assert.Error(t, err)
}
