package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.json"))
	touch(t, filepath.Join(root, "a.HCL"))
	touch(t, filepath.Join(root, "nested", "c.json"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".git", "d.json"))

	files, err := FindFilesByExtension(root, ".json", ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.HCL"),
		filepath.Join(root, "b.json"),
		filepath.Join(root, "nested", "c.json"),
	}, files)
}

func TestFindFilesByExtension_Errors(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".json")
	assert.Error(t, err)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir()) })
}
