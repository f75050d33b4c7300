package fsobj_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/fsobj"
)

func TestSizeAndModeOfRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	f := fsobj.New(path)

	assert.True(t, f.Exists())
	assert.False(t, f.IsDir())
	size, err := f.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
	assert.Equal(t, "hello.txt", f.Name())
}

func TestMissingPathExistsIsFalse(t *testing.T) {
	f := fsobj.New("/no/such/path/at/all")
	assert.False(t, f.Exists())
	_, err := f.Size()
	assert.Error(t, err)
}

func TestIsDirForDirectory(t *testing.T) {
	dir := t.TempDir()
	f := fsobj.New(dir)
	assert.True(t, f.IsDir())
}

func TestStatIsCachedAfterFirstCall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	f := fsobj.New(path)
	require.True(t, f.Exists())
	require.NoError(t, os.Remove(path))

	// Cached from the first stat, so a later call doesn't notice the
	// file is now gone.
	assert.True(t, f.Exists())
}
