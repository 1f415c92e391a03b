package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlet/internal/errors"
)

func TestLocalWorkspace(t *testing.T) {
	root := t.TempDir()
	w, err := NewLocalWorkspace(root)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, MetaDir, "objects"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, MetaDir, "HEAD"), []byte("master"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("x"), 0644))

	t.Run("write and read", func(t *testing.T) {
		require.NoError(t, w.Write("a.txt", []byte("A")))
		require.NoError(t, w.Write("dir/sub/b.txt", []byte("B")))

		data, err := w.Read("dir/sub/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "B", string(data))
		assert.True(t, w.Exists("a.txt"))
		assert.False(t, w.Exists("dir"))
	})

	t.Run("files skips metadata and hidden entries", func(t *testing.T) {
		files, err := w.Files()
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "dir/sub/b.txt"}, files)
	})

	t.Run("read missing", func(t *testing.T) {
		_, err := w.Read("nope")
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("remove prunes empty dirs", func(t *testing.T) {
		require.NoError(t, w.Remove("dir/sub/b.txt"))
		require.NoError(t, w.Remove("dir/sub/b.txt"))
		_, err := os.Stat(filepath.Join(root, "dir"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("clean", func(t *testing.T) {
		name, err := w.Clean("./dir/../a.txt")
		require.NoError(t, err)
		assert.Equal(t, "a.txt", name)

		name, err = w.Clean(filepath.Join(root, "x", "y.txt"))
		require.NoError(t, err)
		assert.Equal(t, "x/y.txt", name)

		for _, bad := range []string{"../escape", ".", ".gitlet/HEAD"} {
			_, err := w.Clean(bad)
			assert.True(t, errors.Is(err, errors.ErrInvalidOperation), bad)
		}
	})
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, MetaDir), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindRoot(nested)
	require.NoError(t, err)
	want, _ := filepath.Abs(root)
	assert.Equal(t, want, found)

	_, err = FindRoot(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
