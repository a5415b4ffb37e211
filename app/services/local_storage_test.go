package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndRemove(t *testing.T) {
	base := t.TempDir()
	svc, err := NewLocalStorageService(base)
	require.NoError(t, err)

	url, err := svc.Save("photo", "a1b2.jpg", []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photo/a1b2.jpg", url)

	data, err := os.ReadFile(filepath.Join(base, "photo", "a1b2.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	require.NoError(t, svc.Remove("photo", "a1b2.jpg"))
	_, err = os.Stat(filepath.Join(base, "photo", "a1b2.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Removing a missing file is not an error.
	assert.NoError(t, svc.Remove("photo", "gone.jpg"))
}

func TestLocalStorageSanitizesTraversal(t *testing.T) {
	base := t.TempDir()
	svc, err := NewLocalStorageService(base)
	require.NoError(t, err)

	// Traversal components collapse to their base name.
	url, err := svc.Save("photo", "../../etc/passwd.jpg", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photo/passwd.jpg", url)

	_, err = os.Stat(filepath.Join(base, "photo", "passwd.jpg"))
	assert.NoError(t, err)

	// Pure traversal segments are rejected outright.
	_, err = svc.Save("..", "file.jpg", []byte("x"))
	assert.Error(t, err)
	_, err = svc.Save("photo", "..", []byte("x"))
	assert.Error(t, err)
}

func TestLocalStoragePath(t *testing.T) {
	base := t.TempDir()
	svc, err := NewLocalStorageService(base)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "video", "clip.mp4"), svc.Path("video", "clip.mp4"))
}
