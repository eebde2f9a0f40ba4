package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quandary-app/quandary/internal/apperr"
)

func TestDiskStorage_StoreAndDelete(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	d, err := NewDiskStorage(root)
	require.NoError(t, err)

	path, err := d.Store([]byte("png bytes"), ".png")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)

	require.NoError(t, d.Delete(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStorage_StoreNormalizesExtension(t *testing.T) {
	d, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	path, err := d.Store([]byte("x"), "jpg")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(path))
}

func TestDiskStorage_UniqueNames(t *testing.T) {
	d, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	a, err := d.Store([]byte("a"), ".png")
	require.NoError(t, err)
	b, err := d.Store([]byte("b"), ".png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDiskStorage_DeleteMissingIsOK(t *testing.T) {
	d, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, d.Delete(filepath.Join(t.TempDir(), "gone.png")))
	assert.NoError(t, d.Delete(""))
}

func TestDiskStorage_DeleteFailureIsSideEffect(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	d, err := NewDiskStorage(root)
	require.NoError(t, err)

	path, err := d.Store([]byte("x"), ".png")
	require.NoError(t, err)

	// Removing write permission on the directory makes the unlink fail.
	require.NoError(t, os.Chmod(root, 0o555))
	t.Cleanup(func() { os.Chmod(root, 0o755) })

	err = d.Delete(path)
	require.Error(t, err)
	assert.True(t, apperr.IsSideEffect(err))
}
