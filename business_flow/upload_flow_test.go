package businessflow

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstar-labs/webstar/app/services"
	"github.com/webstar-labs/webstar/models"
)

// stubValidator accepts or rejects every file with a canned answer.
type stubValidator struct {
	result *services.FileValidationResult
	err    error
	calls  int
}

func (s *stubValidator) Validate(content []byte, filename, declaredType, category string) (*services.FileValidationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubValidator) IsSVG(content []byte) bool { return false }

func (s *stubValidator) AllowedTypes(category string) map[string][]string { return nil }

// stubCompression returns the same result from every operation and records
// which preset it was handed.
type stubCompression struct {
	available  bool
	result     *services.CompressionResult
	frame      []byte
	frameErr   error
	calls      int
	lastPreset string
}

func (s *stubCompression) IsAvailable() bool { return s.available }

func (s *stubCompression) CompressVideo(ctx context.Context, content []byte, originalFilename, preset string) *services.CompressionResult {
	s.calls++
	s.lastPreset = preset
	return s.result
}

func (s *stubCompression) CompressImage(ctx context.Context, content []byte, originalFilename, preset, outputFormat string) *services.CompressionResult {
	s.calls++
	s.lastPreset = preset
	return s.result
}

func (s *stubCompression) CompressAudio(ctx context.Context, content []byte, originalFilename, preset string) *services.CompressionResult {
	s.calls++
	s.lastPreset = preset
	return s.result
}

func (s *stubCompression) ExtractVideoFrame(ctx context.Context, content []byte, originalFilename string, maxEdge int) ([]byte, error) {
	s.calls++
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return s.frame, nil
}

// stubStorage mimics the durable storage gateway.
type stubStorage struct {
	available   bool
	uploadErr   error
	uploadedKey string
	uploaded    []byte
}

func (s *stubStorage) IsAvailable() bool { return s.available }

func (s *stubStorage) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploadedKey = key
	s.uploaded = content
	return "https://cdn.example.com/" + key, nil
}

func (s *stubStorage) Delete(ctx context.Context, key string) error { return nil }

func (s *stubStorage) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

func (s *stubStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", nil
}

// stubLocalStorage mimics the local fallback directory.
type stubLocalStorage struct {
	baseDir  string
	saveErr  error
	savedKey string
	saved    []byte
}

func (s *stubLocalStorage) Save(category, filename string, content []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.savedKey = category + "/" + filename
	s.saved = content
	return "/uploads/" + category + "/" + filename, nil
}

func (s *stubLocalStorage) Remove(category, filename string) error { return nil }

func (s *stubLocalStorage) Path(category, filename string) string {
	return filepath.Join(s.baseDir, category, filename)
}

// stubMediaAssetRepo serves a single canned asset from ByUUID.
type stubMediaAssetRepo struct {
	asset *models.MediaAsset
}

func (s *stubMediaAssetRepo) ByID(ctx context.Context, id uint) (*models.MediaAsset, error) {
	return nil, nil
}

func (s *stubMediaAssetRepo) ByFilter(ctx context.Context, filter models.MediaAssetFilter, orderBy string, limit, offset int) ([]*models.MediaAsset, error) {
	return nil, nil
}

func (s *stubMediaAssetRepo) Save(ctx context.Context, entity *models.MediaAsset) error { return nil }

func (s *stubMediaAssetRepo) SaveBatch(ctx context.Context, entities []*models.MediaAsset) error {
	return nil
}

func (s *stubMediaAssetRepo) Update(ctx context.Context, entity *models.MediaAsset) error {
	return nil
}

func (s *stubMediaAssetRepo) Count(ctx context.Context, filter models.MediaAssetFilter) (int64, error) {
	return 0, nil
}

func (s *stubMediaAssetRepo) Exists(ctx context.Context, filter models.MediaAssetFilter) (bool, error) {
	return false, nil
}

func (s *stubMediaAssetRepo) ByUUID(ctx context.Context, uuid string) (*models.MediaAsset, error) {
	return s.asset, nil
}

func (s *stubMediaAssetRepo) ByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.MediaAsset, error) {
	return nil, nil
}

func (s *stubMediaAssetRepo) Delete(ctx context.Context, assetID uint) error { return nil }

func defaultSettings() UploadSettings {
	return UploadSettings{
		CompressionEnabled: true,
		DefaultVideoPreset: "standard",
		DefaultImagePreset: "standard",
		DefaultAudioPreset: "standard",
		ImageOutputFormat:  "webp",
	}
}

func newTestPipeline(validator services.FileValidator, compression services.CompressionService, storage services.StorageService, local services.LocalStorageService, settings UploadSettings) UploadFlow {
	return NewUploadFlow(nil, nil, validator, compression, storage, local, settings, nil)
}

func acceptingValidator(mime string) *stubValidator {
	return &stubValidator{result: &services.FileValidationResult{DetectedMime: mime}}
}

func TestProcessAndStoreRejections(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		category string
		check    func(error) bool
	}{
		{
			name:     "unsupported category",
			content:  []byte("data"),
			category: "hologram",
			check:    IsUnsupportedCategory,
		},
		{
			name:     "empty file",
			content:  nil,
			category: services.MediaCategoryPhoto,
			check:    IsFileEmpty,
		},
		{
			name:     "oversized photo",
			content:  make([]byte, MaxPhotoSizeBytes+1),
			category: services.MediaCategoryPhoto,
			check:    IsFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := acceptingValidator("image/jpeg")
			flow := newTestPipeline(validator, &stubCompression{}, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

			stored, err := flow.ProcessAndStore(context.Background(), tt.content, "file.jpg", "", tt.category, false, "")
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.Nil(t, stored)
			// Rejected before the validator ever sees the bytes.
			assert.Zero(t, validator.calls)
		})
	}
}

func TestProcessAndStoreValidationFailure(t *testing.T) {
	validator := &stubValidator{err: errors.New("detected type application/pdf is not allowed for category photo")}
	flow := newTestPipeline(validator, &stubCompression{}, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), []byte("%PDF-1.4"), "report.pdf", "", services.MediaCategoryPhoto, false, "")
	require.Error(t, err)
	assert.Nil(t, stored)
	assert.True(t, IsFileTypeNotAllowed(err))
	assert.Contains(t, err.Error(), "not allowed for category photo")
}

func TestProcessAndStoreWithoutCompression(t *testing.T) {
	content := []byte("jpeg bytes")
	storage := &stubStorage{available: true}
	compression := &stubCompression{available: true}
	flow := newTestPipeline(acceptingValidator("image/jpeg"), compression, storage, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), content, "portrait.JPEG", "", services.MediaCategoryPhoto, false, "")
	require.NoError(t, err)

	assert.Zero(t, compression.calls)
	assert.False(t, stored.CompressionApplied)
	assert.Equal(t, int64(len(content)), stored.OriginalSize)
	assert.Equal(t, int64(len(content)), stored.FinalSize)
	assert.Equal(t, "image/jpeg", stored.MimeType)
	assert.False(t, stored.StoredLocally)

	// Stored under a generated name that keeps the lowercased extension.
	assert.True(t, strings.HasPrefix(stored.Key, "photo/"))
	assert.True(t, strings.HasSuffix(stored.Filename, ".jpeg"))
	assert.Equal(t, stored.Key, storage.uploadedKey)
	assert.Equal(t, content, storage.uploaded)
	assert.Equal(t, "https://cdn.example.com/"+stored.Key, stored.URL)
}

func TestProcessAndStoreCompressionApplied(t *testing.T) {
	original := []byte("aaaaaaaaaaaaaaaaaaaa")
	compressed := []byte("aaaaa")
	compression := &stubCompression{
		available: true,
		result: &services.CompressionResult{
			Success:        true,
			Content:        compressed,
			OutputFilename: "out.webp",
			OriginalSize:   len(original),
			CompressedSize: len(compressed),
			ContentType:    "image/webp",
		},
	}
	storage := &stubStorage{available: true}
	flow := newTestPipeline(acceptingValidator("image/png"), compression, storage, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), original, "shot.png", "", services.MediaCategoryPhoto, true, "")
	require.NoError(t, err)

	assert.Equal(t, 1, compression.calls)
	assert.Equal(t, "standard", compression.lastPreset)
	assert.True(t, stored.CompressionApplied)
	assert.Equal(t, "75.0%", stored.CompressionSavings)
	assert.Equal(t, "out.webp", stored.Filename)
	assert.Equal(t, "image/webp", stored.MimeType)
	assert.Equal(t, int64(len(original)), stored.OriginalSize)
	assert.Equal(t, int64(len(compressed)), stored.FinalSize)
	assert.Equal(t, compressed, storage.uploaded)
}

func TestProcessAndStoreExplicitQualityOverridesDefault(t *testing.T) {
	compression := &stubCompression{
		available: true,
		result: &services.CompressionResult{
			Success:        true,
			Content:        []byte("x"),
			OutputFilename: "out.webp",
			OriginalSize:   4,
			CompressedSize: 1,
			ContentType:    "image/webp",
		},
	}
	flow := newTestPipeline(acceptingValidator("image/png"), compression, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

	_, err := flow.ProcessAndStore(context.Background(), []byte("data"), "shot.png", "", services.MediaCategoryPhoto, true, "high")
	require.NoError(t, err)
	assert.Equal(t, "high", compression.lastPreset)
}

func TestProcessAndStoreNoShrinkKeepsOriginal(t *testing.T) {
	original := []byte("already tiny")
	compression := &stubCompression{
		available: true,
		result: &services.CompressionResult{
			Success:        true,
			Content:        original,
			OutputFilename: "kept.png",
			OriginalSize:   len(original),
			CompressedSize: len(original),
			ContentType:    "image/png",
		},
	}
	flow := newTestPipeline(acceptingValidator("image/png"), compression, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), original, "icon.png", "", services.MediaCategoryPhoto, true, "")
	require.NoError(t, err)

	assert.False(t, stored.CompressionApplied)
	assert.Empty(t, stored.CompressionSavings)
	assert.Equal(t, stored.OriginalSize, stored.FinalSize)
}

func TestProcessAndStoreCompressionFailureIsAdvisory(t *testing.T) {
	original := []byte("video bytes")
	compression := &stubCompression{
		available: true,
		result:    &services.CompressionResult{Error: "Video compression failed: moov atom not found", OriginalSize: len(original)},
	}
	storage := &stubStorage{available: true}
	flow := newTestPipeline(acceptingValidator("video/mp4"), compression, storage, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), original, "clip.mp4", "", services.MediaCategoryVideo, true, "")
	require.NoError(t, err)

	assert.False(t, stored.CompressionApplied)
	assert.Equal(t, "Video compression failed: moov atom not found", stored.CompressionError)
	assert.Equal(t, original, storage.uploaded)
	assert.Equal(t, int64(len(original)), stored.FinalSize)
}

func TestProcessAndStoreSkipsCompressionForPDF(t *testing.T) {
	compression := &stubCompression{available: true}
	flow := newTestPipeline(acceptingValidator("application/pdf"), compression, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), []byte("%PDF-1.4"), "doc.pdf", "", services.MediaCategoryPDF, true, "")
	require.NoError(t, err)
	assert.Zero(t, compression.calls)
	assert.False(t, stored.CompressionApplied)
}

func TestProcessAndStorePassesThroughWhenEngineUnavailable(t *testing.T) {
	content := []byte("video bytes")
	compression := &stubCompression{available: false}
	flow := newTestPipeline(acceptingValidator("video/mp4"), compression, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), content, "clip.mp4", "", services.MediaCategoryVideo, true, "")
	require.NoError(t, err)
	assert.Zero(t, compression.calls)
	assert.False(t, stored.CompressionApplied)
	assert.Equal(t, stored.OriginalSize, stored.FinalSize)
}

func TestProcessAndStoreSkipsCompressionWhenDisabled(t *testing.T) {
	compression := &stubCompression{available: true}
	settings := defaultSettings()
	settings.CompressionEnabled = false
	flow := newTestPipeline(acceptingValidator("image/png"), compression, &stubStorage{available: true}, &stubLocalStorage{}, settings)

	_, err := flow.ProcessAndStore(context.Background(), []byte("data"), "shot.png", "", services.MediaCategoryPhoto, true, "")
	require.NoError(t, err)
	assert.Zero(t, compression.calls)
}

func TestProcessAndStoreLocalFallbackWhenStorageUnavailable(t *testing.T) {
	local := &stubLocalStorage{}
	flow := newTestPipeline(acceptingValidator("image/png"), &stubCompression{}, &stubStorage{available: false}, local, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), []byte("data"), "shot.png", "", services.MediaCategoryPhoto, false, "")
	require.NoError(t, err)

	assert.True(t, stored.StoredLocally)
	assert.Equal(t, stored.Key, local.savedKey)
	assert.Equal(t, "/uploads/"+stored.Key, stored.URL)
}

func TestProcessAndStoreLocalFallbackWhenUploadFails(t *testing.T) {
	local := &stubLocalStorage{}
	storage := &stubStorage{available: true, uploadErr: errors.New("connection reset")}
	flow := newTestPipeline(acceptingValidator("image/png"), &stubCompression{}, storage, local, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), []byte("data"), "shot.png", "", services.MediaCategoryPhoto, false, "")
	require.NoError(t, err)

	assert.True(t, stored.StoredLocally)
	assert.Equal(t, []byte("data"), local.saved)
}

func TestProcessAndStoreFailsWhenAllStorageFails(t *testing.T) {
	storage := &stubStorage{available: true, uploadErr: errors.New("connection reset")}
	local := &stubLocalStorage{saveErr: errors.New("disk full")}
	flow := newTestPipeline(acceptingValidator("image/png"), &stubCompression{}, storage, local, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), []byte("data"), "shot.png", "", services.MediaCategoryPhoto, false, "")
	require.Error(t, err)
	assert.Nil(t, stored)

	var businessErr *BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "STORAGE_FAILED", businessErr.Code)
}

func TestProcessAndStoreFailsWithoutFallback(t *testing.T) {
	flow := NewUploadFlow(nil, nil, acceptingValidator("image/png"), &stubCompression{}, &stubStorage{available: false}, nil, defaultSettings(), nil)

	stored, err := flow.ProcessAndStore(context.Background(), []byte("data"), "shot.png", "", services.MediaCategoryPhoto, false, "")
	require.Error(t, err)
	assert.Nil(t, stored)
	assert.True(t, IsStorageUploadFailed(err))
}

func TestProcessAndStoreRecordsPhotoDimensions(t *testing.T) {
	// Minimal GIF logical screen descriptor: 3 wide, 2 tall, no color table.
	gif := []byte{'G', 'I', 'F', '8', '9', 'a', 0x03, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00}
	flow := newTestPipeline(acceptingValidator("image/gif"), &stubCompression{}, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), gif, "anim.gif", "", services.MediaCategoryPhoto, false, "")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Width)
	assert.Equal(t, 2, stored.Height)
}

func TestProcessAndStoreDefaultExtensionWhenMissing(t *testing.T) {
	flow := newTestPipeline(acceptingValidator("video/mp4"), &stubCompression{}, &stubStorage{available: true}, &stubLocalStorage{}, defaultSettings())

	stored, err := flow.ProcessAndStore(context.Background(), []byte("video"), "rawclip", "", services.MediaCategoryVideo, false, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.Filename, ".mp4"))
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func writeLocalAsset(t *testing.T, baseDir, category, filename string, content []byte) {
	t.Helper()
	dir := filepath.Join(baseDir, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), content, 0o600))
}

func newPreviewFlow(asset *models.MediaAsset, compression *stubCompression, baseDir string) UploadFlow {
	return NewUploadFlow(&stubMediaAssetRepo{asset: asset}, nil, acceptingValidator("image/png"), compression,
		&stubStorage{available: true}, &stubLocalStorage{baseDir: baseDir}, defaultSettings(), nil)
}

func TestPreviewMediaPhoto(t *testing.T) {
	baseDir := t.TempDir()
	writeLocalAsset(t, baseDir, "photo", "pic.png", encodePNG(t, 64, 48))

	asset := &models.MediaAsset{
		UserID:        1,
		MediaType:     services.MediaCategoryPhoto,
		StoredLocally: true,
		StorageKey:    "photo/pic.png",
	}
	flow := newPreviewFlow(asset, &stubCompression{}, baseDir)

	preview, err := flow.PreviewMedia(context.Background(), 1, "any")
	require.NoError(t, err)
	assert.Empty(t, preview.RedirectURL)
	assert.Equal(t, "image/jpeg", preview.ContentType)
	// JPEG SOI marker.
	require.True(t, len(preview.Content) > 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, preview.Content[:2])
}

func TestPreviewMediaVideoFrameGrab(t *testing.T) {
	baseDir := t.TempDir()
	writeLocalAsset(t, baseDir, "video", "clip.mp4", []byte("mp4 bytes"))

	asset := &models.MediaAsset{
		UserID:           1,
		MediaType:        services.MediaCategoryVideo,
		StoredLocally:    true,
		StorageKey:       "video/clip.mp4",
		OriginalFilename: "clip.mp4",
	}
	frame := []byte{0xFF, 0xD8, 0x01, 0x02}
	compression := &stubCompression{frame: frame}
	flow := newPreviewFlow(asset, compression, baseDir)

	preview, err := flow.PreviewMedia(context.Background(), 1, "any")
	require.NoError(t, err)
	assert.Equal(t, frame, preview.Content)
	assert.Equal(t, "image/jpeg", preview.ContentType)
	assert.Equal(t, 1, compression.calls)
}

func TestPreviewMediaRemoteRedirect(t *testing.T) {
	asset := &models.MediaAsset{
		UserID:    1,
		MediaType: services.MediaCategoryPhoto,
		PublicURL: "https://cdn.example.com/photo/pic.webp",
	}
	flow := newPreviewFlow(asset, &stubCompression{}, t.TempDir())

	preview, err := flow.PreviewMedia(context.Background(), 1, "any")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/photo/pic.webp", preview.RedirectURL)
	assert.Nil(t, preview.Content)
}

func TestPreviewMediaRejections(t *testing.T) {
	tests := []struct {
		name   string
		asset  *models.MediaAsset
		userID uint
		check  func(error) bool
	}{
		{
			name:   "asset not found",
			asset:  nil,
			userID: 1,
			check:  IsMediaAssetNotFound,
		},
		{
			name:   "not the owner",
			asset:  &models.MediaAsset{UserID: 2, MediaType: services.MediaCategoryPhoto},
			userID: 1,
			check:  IsMediaAssetAccessDenied,
		},
		{
			name:   "audio has no preview",
			asset:  &models.MediaAsset{UserID: 1, MediaType: services.MediaCategoryAudio},
			userID: 1,
			check:  IsPreviewUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := newPreviewFlow(tt.asset, &stubCompression{}, t.TempDir())
			preview, err := flow.PreviewMedia(context.Background(), tt.userID, "any")
			require.Error(t, err)
			assert.Nil(t, preview)
			assert.True(t, tt.check(err))
		})
	}
}

func TestCompressionStatus(t *testing.T) {
	flow := newTestPipeline(acceptingValidator("image/png"), &stubCompression{available: true}, &stubStorage{available: false}, &stubLocalStorage{}, defaultSettings())

	status := flow.CompressionStatus()
	assert.True(t, status.CompressionAvailable)
	assert.True(t, status.CompressionEnabled)
	assert.False(t, status.StorageAvailable)
	assert.Equal(t, []string{
		services.MediaCategoryPhoto,
		services.MediaCategoryVideo,
		services.MediaCategoryAudio,
		services.MediaCategoryPDF,
	}, status.SupportedCategories)
}
