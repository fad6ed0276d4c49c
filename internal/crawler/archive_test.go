package crawler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileSystemArchiveSaveHTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive, err := NewFileSystemArchive(dir, 1<<20, zap.NewNop())
	require.NoError(t, err)

	page := Page{
		URL:      "https://type.jp/rank/development/",
		FinalURL: "https://type.jp/rank/development/",
		Body:     []byte("<html><body>ranking</body></html>"),
	}
	path, err := archive.SaveHTML(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))

	name := filepath.Base(path)
	require.True(t, strings.HasPrefix(name, "type.jp_rank_development_"), name)
	require.True(t, strings.HasSuffix(name, ".html"), name)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, page.Body, written)
}

func TestFileSystemArchiveSamePageSameFile(t *testing.T) {
	t.Parallel()

	archive, err := NewFileSystemArchive(t.TempDir(), 1<<20, zap.NewNop())
	require.NoError(t, err)

	page := Page{URL: "https://type.jp/rank/", Body: []byte("first")}
	first, err := archive.SaveHTML(context.Background(), page)
	require.NoError(t, err)

	page.Body = []byte("second")
	second, err := archive.SaveHTML(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, first, second, "recrawling a URL overwrites its snapshot")

	written, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), written)
}

func TestFileSystemArchiveRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	archive, err := NewFileSystemArchive(t.TempDir(), 1<<20, zap.NewNop())
	require.NoError(t, err)

	_, err = archive.SaveHTML(context.Background(), Page{URL: "https://type.jp/"})
	require.Error(t, err)
}

func TestFileSystemArchiveRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	archive, err := NewFileSystemArchive(t.TempDir(), 8, zap.NewNop())
	require.NoError(t, err)

	_, err = archive.SaveHTML(context.Background(), Page{
		URL:  "https://type.jp/",
		Body: []byte("well past eight bytes"),
	})
	require.ErrorContains(t, err, "exceeds max")
}

func TestSafeBasename(t *testing.T) {
	t.Parallel()

	a := safeBasename("https://type.jp/job-11/1343474_detail/?pathway=39")
	b := safeBasename("https://type.jp/job-11/1343474_detail/?pathway=40")
	require.NotEqual(t, a, b, "query strings must produce distinct names")
	require.True(t, strings.HasPrefix(a, "type.jp_job-11_1343474_detail_"), a)
	require.NotContains(t, a, "/")
	require.NotContains(t, a, "?")
}
