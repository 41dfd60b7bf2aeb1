package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", []byte("second document"))
	writeFile(t, dir, "a.txt", []byte("first document"))
	writeFile(t, dir, "notes.md", []byte("ignored"))
	writeFile(t, dir, filepath.Join("nested", "c.txt"), []byte("third document"))

	docs, warnings, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, docs, 3)

	// Path-sorted, ids stable.
	assert.Equal(t, "doc_000000", docs[0].ID)
	assert.Equal(t, "a.txt", docs[0].Filename)
	assert.Equal(t, "first document", docs[0].Text)
	assert.Equal(t, "doc_000001", docs[1].ID)
	assert.Equal(t, "b.txt", docs[1].Filename)
	assert.Equal(t, "doc_000002", docs[2].ID)
	assert.Equal(t, "c.txt", docs[2].Filename)
}

func TestLoadDirEmpty(t *testing.T) {
	docs, warnings, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Empty(t, warnings)
}

func TestLoadDirMissing(t *testing.T) {
	_, _, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadInvalidUTF8FallsBack(t *testing.T) {
	dir := t.TempDir()
	// Latin-1 bytes that are invalid UTF-8.
	writeFile(t, dir, "latin.txt", []byte{'c', 'a', 'f', 0xE9, ' ', 'm', 'e', 'n', 'u'})

	docs, warnings, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, docs, 1)

	// Whatever charset was detected, the text must be valid UTF-8 and
	// keep the ASCII around the non-ASCII byte.
	assert.Contains(t, docs[0].Text, "caf")
	assert.Contains(t, docs[0].Text, "menu")
	assert.NotEmpty(t, docs[0].Encoding)
}

func TestDocID(t *testing.T) {
	assert.Equal(t, "doc_000000", DocID(0))
	assert.Equal(t, "doc_000042", DocID(42))
	assert.Equal(t, "doc_123456", DocID(123456))
}
