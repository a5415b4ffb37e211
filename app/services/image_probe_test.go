package services

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestImageDimensions(t *testing.T) {
	width, height, ok := ImageDimensions(pngBytes(t, 640, 480))
	require.True(t, ok)
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)

	_, _, ok = ImageDimensions([]byte("not an image"))
	assert.False(t, ok)

	_, _, ok = ImageDimensions(nil)
	assert.False(t, ok)
}

func TestImageThumbnailDownscales(t *testing.T) {
	thumb, err := ImageThumbnail(pngBytes(t, 1024, 256), 512)
	require.NoError(t, err)

	width, height, ok := ImageDimensions(thumb)
	require.True(t, ok)
	assert.Equal(t, 512, width)
	assert.Equal(t, 128, height)

	// JPEG SOI marker.
	assert.Equal(t, []byte{0xFF, 0xD8}, thumb[:2])
}

func TestImageThumbnailKeepsSmallImages(t *testing.T) {
	thumb, err := ImageThumbnail(pngBytes(t, 100, 80), 512)
	require.NoError(t, err)

	width, height, ok := ImageDimensions(thumb)
	require.True(t, ok)
	assert.Equal(t, 100, width)
	assert.Equal(t, 80, height)
}

func TestImageThumbnailRejectsGarbage(t *testing.T) {
	thumb, err := ImageThumbnail([]byte("definitely not pixels"), 512)
	assert.Error(t, err)
	assert.Nil(t, thumb)
}
