package crawl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlFindsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.rs"), []byte("pub fn main() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not indexed"), 0o644))

	files, err := Dir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0], "main.rs"))
}

func TestCrawlIgnoresNodeModules(t *testing.T) {
	dir := t.TempDir()
	nm := filepath.Join(dir, "node_modules")
	require.NoError(t, os.MkdirAll(nm, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nm, "lib.js"), []byte("module.exports = {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.ts"), []byte("const x = 1;"), 0o644))

	files, err := Dir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0], "app.ts"))
}

func TestSupportedExtensionsCheck(t *testing.T) {
	assert.True(t, isSupportedFile("lib.rs"))
	assert.True(t, isSupportedFile("bar.tsx"))
	assert.True(t, isSupportedFile("doc.md"))
	assert.False(t, isSupportedFile("foo.go"))
	assert.False(t, isSupportedFile("config.yaml"))
	assert.False(t, isSupportedFile("config.yml"))
	assert.False(t, isSupportedFile("image.png"))
	assert.False(t, isSupportedFile("data.csv"))
}

func TestCrawlMissingOrNonDirectoryReturnsEmpty(t *testing.T) {
	files, err := Dir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, files)

	file := filepath.Join(t.TempDir(), "plain.rs")
	require.NoError(t, os.WriteFile(file, []byte("pub fn main() {}"), 0o644))
	files, err = Dir(file)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCrawlResultsAreSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "z.rs"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.rs"), []byte(""), 0o644))

	files, err := Dir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[0], "a.rs"))
	assert.True(t, strings.HasSuffix(files[1], "z.rs"))
}
