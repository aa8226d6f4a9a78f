package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content.
// Names may contain slashes; parent directories are created.
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// CreateTestFilesWithDefault creates a text file, a document and an image.
func CreateTestFilesWithDefault(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"test1.txt":  "test content 1",
		"report.pdf": "pdf content",
		"photo.jpg":  "image content",
	}
	CreateTestFilesWithContent(t, dir, files)
}

// WriteFileAt writes a file and sets its modification time to mtime.
func WriteFileAt(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

// StripANSI removes terminal escape sequences from styled output.
func StripANSI(str string) string {
	return ansi.Strip(str)
}
