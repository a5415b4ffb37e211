package businessflow

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/webstar-labs/webstar/app/dto"
	"github.com/webstar-labs/webstar/app/services"
	"github.com/webstar-labs/webstar/models"
	"github.com/webstar-labs/webstar/repository"
	"github.com/webstar-labs/webstar/utils"
	"gorm.io/gorm"
)

// Size ceilings per category, enforced before any transcoding attempt.
const (
	MaxPhotoSizeBytes = 20 * 1024 * 1024
	MaxVideoSizeBytes = 1024 * 1024 * 1024
	MaxAudioSizeBytes = 100 * 1024 * 1024
	MaxPDFSizeBytes   = 50 * 1024 * 1024
)

var categorySizeLimits = map[string]int64{
	services.MediaCategoryPhoto: MaxPhotoSizeBytes,
	services.MediaCategoryVideo: MaxVideoSizeBytes,
	services.MediaCategoryAudio: MaxAudioSizeBytes,
	services.MediaCategoryPDF:   MaxPDFSizeBytes,
}

// UploadSettings holds the operator-facing knobs of the upload pipeline.
type UploadSettings struct {
	CompressionEnabled bool
	DefaultVideoPreset string
	DefaultImagePreset string
	DefaultAudioPreset string
	ImageOutputFormat  string // webp or jpeg
}

// MediaPipeline is the validate/transcode/store portion of the upload flow,
// reused by the profile and project flows for their image uploads.
type MediaPipeline interface {
	ProcessAndStore(ctx context.Context, content []byte, originalFilename, declaredType, category string, compress bool, quality string) (*StoredFile, error)
}

// UploadFlow orchestrates the media pipeline: validate, optionally
// transcode, store durably, record the asset.
type UploadFlow interface {
	MediaPipeline
	UploadMedia(ctx context.Context, request *dto.UploadMediaRequest, metadata *ClientMetadata) (*dto.UploadMediaResponse, error)
	ListMedia(ctx context.Context, userID uint, page, pageSize int) (*dto.ListMediaResponse, error)
	DeleteMedia(ctx context.Context, userID uint, assetUUID string) error
	PreviewMedia(ctx context.Context, userID uint, assetUUID string) (*MediaPreview, error)
	CompressionStatus() *dto.CompressionStatusResponse
}

// UploadFlowImpl implements the upload business flow
type UploadFlowImpl struct {
	mediaAssetRepo repository.MediaAssetRepository
	pointsRepo     repository.PointsRepository
	validator      services.FileValidator
	compression    services.CompressionService
	storage        services.StorageService
	localStorage   services.LocalStorageService
	settings       UploadSettings
	db             *gorm.DB
}

// NewUploadFlow creates a new upload flow instance
func NewUploadFlow(
	mediaAssetRepo repository.MediaAssetRepository,
	pointsRepo repository.PointsRepository,
	validator services.FileValidator,
	compression services.CompressionService,
	storage services.StorageService,
	localStorage services.LocalStorageService,
	settings UploadSettings,
	db *gorm.DB,
) UploadFlow {
	return &UploadFlowImpl{
		mediaAssetRepo: mediaAssetRepo,
		pointsRepo:     pointsRepo,
		validator:      validator,
		compression:    compression,
		storage:        storage,
		localStorage:   localStorage,
		settings:       settings,
		db:             db,
	}
}

// StoredFile is the outcome of the validate/compress/store portion of the
// pipeline, shared with the profile and project flows.
type StoredFile struct {
	URL                string
	Key                string
	Filename           string
	MimeType           string
	OriginalSize       int64
	FinalSize          int64
	CompressionApplied bool
	CompressionSavings string
	CompressionError   string
	StoredLocally      bool
	Width              int
	Height             int
}

// UploadMedia runs the full pipeline and records the asset. A compression
// failure is surfaced as an advisory field, never as a request failure.
func (uf *UploadFlowImpl) UploadMedia(ctx context.Context, request *dto.UploadMediaRequest, metadata *ClientMetadata) (*dto.UploadMediaResponse, error) {
	stored, err := uf.ProcessAndStore(ctx, request.Content, request.OriginalFilename, request.DeclaredType, request.Category, request.Compress, request.Quality)
	if err != nil {
		return nil, err
	}

	asset := &models.MediaAsset{
		UUID:               uuid.New(),
		UserID:             request.UserID,
		OriginalFilename:   request.OriginalFilename,
		StorageKey:         stored.Key,
		PublicURL:          stored.URL,
		MediaType:          request.Category,
		MimeType:           stored.MimeType,
		Width:              stored.Width,
		Height:             stored.Height,
		OriginalSizeBytes:  stored.OriginalSize,
		StoredSizeBytes:    stored.FinalSize,
		CompressionApplied: stored.CompressionApplied,
		StoredLocally:      stored.StoredLocally,
	}

	err = repository.WithTransaction(ctx, uf.db, func(txCtx context.Context) error {
		if err := uf.mediaAssetRepo.Save(txCtx, asset); err != nil {
			return err
		}
		return uf.pointsRepo.AwardPoints(txCtx, request.UserID, utils.PointsMediaUpload,
			models.PointsActionMediaUpload, "Media upload: "+request.OriginalFilename)
	})
	if err != nil {
		return nil, NewBusinessError("MEDIA_RECORD_FAILED", "Failed to record media asset", err)
	}

	return &dto.UploadMediaResponse{
		Message:            "File uploaded successfully",
		UUID:               asset.UUID.String(),
		URL:                stored.URL,
		MediaType:          request.Category,
		MimeType:           stored.MimeType,
		Filename:           stored.Filename,
		Width:              stored.Width,
		Height:             stored.Height,
		OriginalSize:       stored.OriginalSize,
		FinalSize:          stored.FinalSize,
		CompressionApplied: stored.CompressionApplied,
		CompressionSavings: stored.CompressionSavings,
		CompressionError:   stored.CompressionError,
		StoredLocally:      stored.StoredLocally,
	}, nil
}

// processAndStore runs validate -> transcode -> store and returns where the
// bytes ended up.
func (uf *UploadFlowImpl) ProcessAndStore(ctx context.Context, content []byte, originalFilename, declaredType, category string, compress bool, quality string) (*StoredFile, error) {
	limit, ok := categorySizeLimits[category]
	if !ok {
		return nil, NewBusinessErrorf("UNSUPPORTED_CATEGORY", "Unsupported media category %q", ErrUnsupportedCategory, category)
	}

	originalSize := int64(len(content))
	if originalSize == 0 {
		return nil, NewBusinessError("FILE_EMPTY", "File is empty", ErrFileEmpty)
	}

	// Size gate before any transcoding: never spend CPU on something
	// that will be rejected anyway.
	if originalSize > limit {
		return nil, NewBusinessErrorf("FILE_TOO_LARGE", "File exceeds the %dMB limit for category %q",
			ErrFileTooLarge, limit/1024/1024, category)
	}

	validation, err := uf.validator.Validate(content, originalFilename, declaredType, category)
	if err != nil {
		return nil, NewBusinessError("FILE_VALIDATION_FAILED", err.Error(), ErrFileTypeNotAllowed)
	}

	finalContent := content
	mimeType := validation.DetectedMime
	filename := uuid.New().String() + inputExtensionOrDefault(originalFilename, category)

	stored := &StoredFile{
		OriginalSize: originalSize,
	}

	if compress && uf.settings.CompressionEnabled && uf.compression.IsAvailable() && category != services.MediaCategoryPDF {
		result := uf.compressFor(ctx, category, content, originalFilename, quality)
		if result.Success {
			finalContent = result.Content
			filename = result.OutputFilename
			mimeType = result.ContentType
			stored.CompressionApplied = result.CompressedSize < result.OriginalSize
			if stored.CompressionApplied {
				stored.CompressionSavings = result.SavingsPercent()
			}
		} else {
			// Non-fatal: store the original bytes and surface the
			// reason as a diagnostic.
			stored.CompressionError = result.Error
		}
	}

	stored.Filename = filename
	stored.MimeType = mimeType
	stored.FinalSize = int64(len(finalContent))
	stored.Key = category + "/" + filename

	if category == services.MediaCategoryPhoto {
		if w, h, ok := services.ImageDimensions(finalContent); ok {
			stored.Width = w
			stored.Height = h
		}
	}

	url, storedLocally, err := uf.store(ctx, stored.Key, category, filename, finalContent, mimeType)
	if err != nil {
		return nil, err
	}
	stored.URL = url
	stored.StoredLocally = storedLocally

	return stored, nil
}

// compressFor dispatches to the engine operation for the category.
func (uf *UploadFlowImpl) compressFor(ctx context.Context, category string, content []byte, originalFilename, quality string) *services.CompressionResult {
	switch category {
	case services.MediaCategoryPhoto:
		if quality == "" {
			quality = uf.settings.DefaultImagePreset
		}
		return uf.compression.CompressImage(ctx, content, originalFilename, quality, uf.settings.ImageOutputFormat)
	case services.MediaCategoryVideo:
		if quality == "" {
			quality = uf.settings.DefaultVideoPreset
		}
		return uf.compression.CompressVideo(ctx, content, originalFilename, quality)
	case services.MediaCategoryAudio:
		if quality == "" {
			quality = uf.settings.DefaultAudioPreset
		}
		return uf.compression.CompressAudio(ctx, content, originalFilename, quality)
	default:
		return &services.CompressionResult{Error: fmt.Sprintf("no compressor for category %q", category), OriginalSize: len(content)}
	}
}

// store writes to durable storage, falling back to the local directory when
// the gateway is unavailable or the remote call fails.
func (uf *UploadFlowImpl) store(ctx context.Context, key, category, filename string, content []byte, contentType string) (url string, storedLocally bool, err error) {
	if uf.storage.IsAvailable() {
		url, uploadErr := uf.storage.Upload(ctx, key, content, contentType)
		if uploadErr == nil {
			return url, false, nil
		}
		log.Printf("WARNING: durable storage upload failed for %s, falling back to local storage: %v", key, uploadErr)
	} else {
		log.Printf("WARNING: durable storage unavailable, storing %s locally", key)
	}

	if uf.localStorage == nil {
		return "", false, NewBusinessError("STORAGE_FAILED", "Storage upload failed and no local fallback is configured", ErrStorageUploadFailed)
	}

	localURL, saveErr := uf.localStorage.Save(category, filename, content)
	if saveErr != nil {
		return "", false, NewBusinessError("STORAGE_FAILED", "Storage upload failed", saveErr)
	}
	return localURL, true, nil
}

// ListMedia returns a page of the user's media assets.
func (uf *UploadFlowImpl) ListMedia(ctx context.Context, userID uint, page, pageSize int) (*dto.ListMediaResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	assets, err := uf.mediaAssetRepo.ByUserID(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("MEDIA_LIST_FAILED", "Failed to list media assets", err)
	}

	total, err := uf.mediaAssetRepo.Count(ctx, models.MediaAssetFilter{UserID: &userID})
	if err != nil {
		return nil, NewBusinessError("MEDIA_LIST_FAILED", "Failed to count media assets", err)
	}

	resp := &dto.ListMediaResponse{
		Assets: make([]dto.MediaAssetInfo, 0, len(assets)),
		Total:  total,
	}
	for _, asset := range assets {
		resp.Assets = append(resp.Assets, dto.MediaAssetInfo{
			UUID:               asset.UUID.String(),
			URL:                asset.PublicURL,
			MediaType:          asset.MediaType,
			MimeType:           asset.MimeType,
			OriginalFilename:   asset.OriginalFilename,
			OriginalSize:       asset.OriginalSizeBytes,
			StoredSize:         asset.StoredSizeBytes,
			CompressionApplied: asset.CompressionApplied,
			StoredLocally:      asset.StoredLocally,
			CreatedAt:          asset.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return resp, nil
}

// DeleteMedia removes an asset the user owns, from storage and the database.
func (uf *UploadFlowImpl) DeleteMedia(ctx context.Context, userID uint, assetUUID string) error {
	asset, err := uf.mediaAssetRepo.ByUUID(ctx, assetUUID)
	if err != nil {
		return NewBusinessError("MEDIA_DELETE_FAILED", "Failed to load media asset", err)
	}
	if asset == nil {
		return NewBusinessError("MEDIA_NOT_FOUND", "Media asset not found", ErrMediaAssetNotFound)
	}
	if asset.UserID != userID {
		return NewBusinessError("MEDIA_ACCESS_DENIED", "Media asset access denied", ErrMediaAssetAccessDenied)
	}

	if asset.StoredLocally {
		parts := strings.SplitN(asset.StorageKey, "/", 2)
		if len(parts) == 2 {
			if err := uf.localStorage.Remove(parts[0], parts[1]); err != nil {
				log.Printf("WARNING: failed to remove local file %s: %v", asset.StorageKey, err)
			}
		}
	} else if uf.storage.IsAvailable() {
		if err := uf.storage.Delete(ctx, asset.StorageKey); err != nil {
			log.Printf("WARNING: failed to delete %s from durable storage: %v", asset.StorageKey, err)
		}
	}

	if err := uf.mediaAssetRepo.Delete(ctx, asset.ID); err != nil {
		return NewBusinessError("MEDIA_DELETE_FAILED", "Failed to delete media asset", err)
	}
	return nil
}

// Longest edge of a rendered preview, in pixels.
const previewMaxEdge = 512

// MediaPreview carries either rendered thumbnail bytes or, for remotely
// stored assets, the URL to redirect to.
type MediaPreview struct {
	Content     []byte
	ContentType string
	RedirectURL string
}

// PreviewMedia renders a JPEG thumbnail for an asset the user owns. Photos
// are scaled in-process, videos get a frame grab. Remotely stored assets are
// answered with their public URL instead of re-fetching the bytes.
func (uf *UploadFlowImpl) PreviewMedia(ctx context.Context, userID uint, assetUUID string) (*MediaPreview, error) {
	asset, err := uf.mediaAssetRepo.ByUUID(ctx, assetUUID)
	if err != nil {
		return nil, NewBusinessError("MEDIA_PREVIEW_FAILED", "Failed to load media asset", err)
	}
	if asset == nil {
		return nil, NewBusinessError("MEDIA_NOT_FOUND", "Media asset not found", ErrMediaAssetNotFound)
	}
	if asset.UserID != userID {
		return nil, NewBusinessError("MEDIA_ACCESS_DENIED", "Media asset access denied", ErrMediaAssetAccessDenied)
	}

	if asset.MediaType != services.MediaCategoryPhoto && asset.MediaType != services.MediaCategoryVideo {
		return nil, NewBusinessError("PREVIEW_UNSUPPORTED", "Previews are only rendered for photos and videos", ErrPreviewUnsupported)
	}

	if !asset.StoredLocally {
		return &MediaPreview{RedirectURL: asset.PublicURL}, nil
	}

	parts := strings.SplitN(asset.StorageKey, "/", 2)
	if len(parts) != 2 || uf.localStorage == nil {
		return nil, NewBusinessError("MEDIA_PREVIEW_FAILED", "Stored file location is unknown", nil)
	}
	content, err := os.ReadFile(uf.localStorage.Path(parts[0], parts[1]))
	if err != nil {
		return nil, NewBusinessError("MEDIA_PREVIEW_FAILED", "Failed to read stored file", err)
	}

	var thumbnail []byte
	if asset.MediaType == services.MediaCategoryPhoto {
		thumbnail, err = services.ImageThumbnail(content, previewMaxEdge)
	} else {
		thumbnail, err = uf.compression.ExtractVideoFrame(ctx, content, asset.OriginalFilename, previewMaxEdge)
	}
	if err != nil {
		return nil, NewBusinessError("MEDIA_PREVIEW_FAILED", "Failed to render preview", err)
	}

	return &MediaPreview{Content: thumbnail, ContentType: "image/jpeg"}, nil
}

// CompressionStatus reports pipeline availability.
func (uf *UploadFlowImpl) CompressionStatus() *dto.CompressionStatusResponse {
	return &dto.CompressionStatusResponse{
		CompressionAvailable: uf.compression.IsAvailable(),
		CompressionEnabled:   uf.settings.CompressionEnabled,
		StorageAvailable:     uf.storage.IsAvailable(),
		SupportedCategories: []string{
			services.MediaCategoryPhoto,
			services.MediaCategoryVideo,
			services.MediaCategoryAudio,
			services.MediaCategoryPDF,
		},
	}
}

// inputExtensionOrDefault keeps the original extension, with a per-category
// default when the filename has none.
func inputExtensionOrDefault(filename, category string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		return ext
	}
	switch category {
	case services.MediaCategoryPhoto:
		return ".jpg"
	case services.MediaCategoryVideo:
		return ".mp4"
	case services.MediaCategoryAudio:
		return ".mp3"
	case services.MediaCategoryPDF:
		return ".pdf"
	default:
		return ""
	}
}
