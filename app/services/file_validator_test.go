package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal real file signatures for the sniffing tests.
var (
	jpegContent = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
	pngContent  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, make([]byte, 64)...)
	gifContent  = append([]byte("GIF89a"), make([]byte, 64)...)
	pdfContent  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF")
	mp3Content  = append([]byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, make([]byte, 64)...)
	svgContent  = []byte(`<?xml version="1.0" encoding="UTF-8"?><svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"></svg>`)
	// No known magic bytes, sniffs as application/octet-stream.
	binaryContent = append([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x55}, make([]byte, 64)...)
	// EBML header with a matroska DocType, sniffs as video/x-matroska.
	mkvContent = append(append([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x01, 0x42, 0x82, 0x88}, []byte("matroska")...), make([]byte, 64)...)
	// FLV magic, sniffs as video/x-flv.
	flvContent = append([]byte{'F', 'L', 'V', 0x01, 0x05, 0x00, 0x00, 0x00, 0x09}, make([]byte, 64)...)
)

func TestValidateAcceptsAllowedTypes(t *testing.T) {
	v := NewFileValidator(true)

	tests := []struct {
		name     string
		content  []byte
		filename string
		category string
		wantMime string
	}{
		{"jpeg photo", jpegContent, "portrait.jpg", MediaCategoryPhoto, "image/jpeg"},
		{"jpeg with jpeg extension", jpegContent, "portrait.jpeg", MediaCategoryPhoto, "image/jpeg"},
		{"png photo", pngContent, "logo.png", MediaCategoryPhoto, "image/png"},
		{"gif photo", gifContent, "anim.gif", MediaCategoryPhoto, "image/gif"},
		{"pdf document", pdfContent, "resume.pdf", MediaCategoryPDF, "application/pdf"},
		{"mp3 audio", mp3Content, "track.mp3", MediaCategoryAudio, "audio/mpeg"},
		{"matroska video", mkvContent, "clip.mkv", MediaCategoryVideo, "video/x-matroska"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Validate(tt.content, tt.filename, "", tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, result.DetectedMime)
			assert.Equal(t, tt.category, result.Category)
		})
	}
}

func TestValidateRejections(t *testing.T) {
	v := NewFileValidator(true)

	tests := []struct {
		name     string
		content  []byte
		filename string
		category string
	}{
		{"empty file", nil, "empty.jpg", MediaCategoryPhoto},
		{"unsupported category", jpegContent, "a.jpg", "document"},
		{"svg as photo", svgContent, "icon.svg", MediaCategoryPhoto},
		{"pdf as photo", pdfContent, "sneaky.jpg", MediaCategoryPhoto},
		{"jpeg as audio", jpegContent, "song.mp3", MediaCategoryAudio},
		{"unknown binary as photo", binaryContent, "blob.jpg", MediaCategoryPhoto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.content, tt.filename, "", tt.category)
			assert.Error(t, err)
		})
	}
}

func TestValidateExtensionCrossCheck(t *testing.T) {
	v := NewFileValidator(true)

	// PNG bytes wearing a .jpg extension must not pass.
	_, err := v.Validate(pngContent, "photo.jpg", "", MediaCategoryPhoto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	// Same content passes when the cross-check is disabled.
	lenient := NewFileValidator(false)
	result, err := lenient.Validate(pngContent, "photo.jpg", "", MediaCategoryPhoto)
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.DetectedMime)
}

func TestValidateGenericVideoFallback(t *testing.T) {
	v := NewFileValidator(true)

	// Browsers sometimes hand over video containers as a generic stream.
	// A recognized video extension lets it through.
	result, err := v.Validate(binaryContent, "clip.mkv", "", MediaCategoryVideo)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", result.DetectedMime)
	assert.Equal(t, ".mkv", result.Extension)

	// The fallback is extension gated.
	_, err = v.Validate(binaryContent, "clip.txt", "", MediaCategoryVideo)
	assert.Error(t, err)

	// And only applies to the video category.
	_, err = v.Validate(binaryContent, "clip.mkv", "", MediaCategoryAudio)
	assert.Error(t, err)
}

func TestValidateDeclaredOctetStreamFallback(t *testing.T) {
	v := NewFileValidator(true)

	// A video container outside the allow-list gets the extension fallback
	// when the client declared it a generic binary stream.
	result, err := v.Validate(flvContent, "clip.mp4", "application/octet-stream", MediaCategoryVideo)
	require.NoError(t, err)
	assert.Equal(t, "video/x-flv", result.DetectedMime)
	assert.Equal(t, ".mp4", result.Extension)

	// Without the generic declaration the same content is rejected.
	_, err = v.Validate(flvContent, "clip.mp4", "video/mp4", MediaCategoryVideo)
	assert.Error(t, err)

	// The declaration never widens the fallback to non-video content.
	_, err = v.Validate(jpegContent, "clip.mp4", "application/octet-stream", MediaCategoryVideo)
	assert.Error(t, err)
}

func TestIsSVG(t *testing.T) {
	v := NewFileValidator(true)

	assert.True(t, v.IsSVG(svgContent))
	assert.False(t, v.IsSVG(jpegContent))
	assert.False(t, v.IsSVG(pngContent))

	// Generic XML without an svg tag in the leading bytes is not SVG.
	xml := []byte(`<?xml version="1.0"?><note><to>someone</to></note>`)
	assert.False(t, v.IsSVG(xml))
}

func TestAllowedTypes(t *testing.T) {
	v := NewFileValidator(true)

	assert.Contains(t, v.AllowedTypes(MediaCategoryPhoto), "image/jpeg")
	assert.Contains(t, v.AllowedTypes(MediaCategoryVideo), "video/mp4")
	assert.Contains(t, v.AllowedTypes(MediaCategoryAudio), "audio/mpeg")
	assert.Contains(t, v.AllowedTypes(MediaCategoryPDF), "application/pdf")
	assert.Nil(t, v.AllowedTypes("spreadsheet"))
}
