package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Media categories accepted by the upload pipeline.
const (
	MediaCategoryPhoto = "photo"
	MediaCategoryVideo = "video"
	MediaCategoryAudio = "audio"
	MediaCategoryPDF   = "pdf"
)

// FileValidator validates uploads by sniffing content signatures. The
// client-declared content type and the filename extension are both
// untrusted inputs.
type FileValidator interface {
	Validate(content []byte, filename, declaredType, category string) (*FileValidationResult, error)
	IsSVG(content []byte) bool
	AllowedTypes(category string) map[string][]string
}

// FileValidationResult carries the sniffed type of an accepted upload.
type FileValidationResult struct {
	DetectedMime string
	Extension    string
	Category     string
}

// Allowed MIME types per category with their registered extensions.
var (
	allowedImageTypes = map[string][]string{
		"image/jpeg": {".jpg", ".jpeg"},
		"image/png":  {".png"},
		"image/webp": {".webp"},
		"image/gif":  {".gif"},
	}

	allowedVideoTypes = map[string][]string{
		"video/mp4":        {".mp4"},
		"video/webm":       {".webm"},
		"video/quicktime":  {".mov"},
		"video/x-msvideo":  {".avi"},
		"video/mpeg":       {".mpeg", ".mpg"},
		"video/x-matroska": {".mkv"},
	}

	allowedAudioTypes = map[string][]string{
		"audio/mpeg":  {".mp3"},
		"audio/mp4":   {".m4a"},
		"audio/x-m4a": {".m4a"},
		"audio/wav":   {".wav"},
		"audio/ogg":   {".ogg"},
	}

	allowedDocumentTypes = map[string][]string{
		"application/pdf": {".pdf"},
	}
)

// Extensions accepted when a browser reports a generic binary stream
// type for a video container.
var genericVideoExtensions = []string{".mp4", ".mov", ".avi", ".webm", ".mpeg", ".mpg", ".mkv"}

type FileValidatorImpl struct {
	checkExtension bool
}

func NewFileValidator(checkExtension bool) FileValidator {
	return &FileValidatorImpl{checkExtension: checkExtension}
}

// AllowedTypes returns the allow-list for a category, nil for unknown categories.
func (v *FileValidatorImpl) AllowedTypes(category string) map[string][]string {
	switch category {
	case MediaCategoryPhoto:
		return allowedImageTypes
	case MediaCategoryVideo:
		return allowedVideoTypes
	case MediaCategoryAudio:
		return allowedAudioTypes
	case MediaCategoryPDF:
		return allowedDocumentTypes
	default:
		return nil
	}
}

// Validate sniffs the leading bytes of content and checks the detected type
// against the category allow-list. The SVG check runs before the allow-list:
// SVG carries active script content and is rejected no matter what.
// declaredType is the client-reported content type; it is never trusted for
// acceptance, but a declared generic binary stream widens the video path to
// the extension fallback.
func (v *FileValidatorImpl) Validate(content []byte, filename, declaredType, category string) (*FileValidationResult, error) {
	allowed := v.AllowedTypes(category)
	if allowed == nil {
		return nil, fmt.Errorf("unsupported media category %q", category)
	}

	if len(content) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	if v.IsSVG(content) {
		return nil, fmt.Errorf("SVG files are not allowed")
	}

	detected := mimetype.Detect(content)
	mime := normalizeMime(detected.String())
	ext := strings.ToLower(filepath.Ext(filename))

	registeredExts, ok := allowed[mime]
	if !ok {
		// Some browsers hand over video containers as a generic binary
		// stream. When either the sniff or the declaration is that generic
		// type, fall back to the extension before rejecting. A declared
		// octet-stream only helps when the sniffed type is still video.
		genericSniff := mime == "application/octet-stream"
		genericDeclared := normalizeMime(declaredType) == "application/octet-stream" && strings.HasPrefix(mime, "video/")
		if category == MediaCategoryVideo && (genericSniff || genericDeclared) {
			for _, videoExt := range genericVideoExtensions {
				if ext == videoExt {
					return &FileValidationResult{
						DetectedMime: mime,
						Extension:    ext,
						Category:     category,
					}, nil
				}
			}
		}
		return nil, fmt.Errorf("file type %q is not allowed", mime)
	}

	if v.checkExtension {
		matched := false
		for _, registered := range registeredExts {
			if ext == registered {
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("file extension %q does not match detected type %q, expected: %s",
				ext, mime, strings.Join(registeredExts, ", "))
		}
	}

	return &FileValidationResult{
		DetectedMime: mime,
		Extension:    ext,
		Category:     category,
	}, nil
}

// IsSVG reports whether content sniffs as SVG, or as generic XML with an
// embedded <svg> tag in the leading bytes.
func (v *FileValidatorImpl) IsSVG(content []byte) bool {
	detected := mimetype.Detect(content)
	mime := normalizeMime(detected.String())

	if mime == "image/svg+xml" {
		return true
	}
	if mime == "text/xml" || mime == "application/xml" {
		head := content
		if len(head) > 1000 {
			head = head[:1000]
		}
		return bytes.Contains(head, []byte("<svg"))
	}
	return false
}

// normalizeMime strips any parameters like "; charset=utf-8" from a sniffed type.
func normalizeMime(mime string) string {
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}
