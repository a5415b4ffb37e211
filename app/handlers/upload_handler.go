package handlers

import (
	"context"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/webstar-labs/webstar/app/dto"
	"github.com/webstar-labs/webstar/app/middleware"
	businessflow "github.com/webstar-labs/webstar/business_flow"
	"github.com/webstar-labs/webstar/utils"
)

// UploadHandlerInterface defines the contract for media upload handlers
type UploadHandlerInterface interface {
	UploadMedia(c fiber.Ctx) error
	ListMedia(c fiber.Ctx) error
	DeleteMedia(c fiber.Ctx) error
	PreviewMedia(c fiber.Ctx) error
	CompressionStatus(c fiber.Ctx) error
}

// UploadHandler handles media upload HTTP requests
type UploadHandler struct {
	uploadFlow businessflow.UploadFlow
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadFlow businessflow.UploadFlow) *UploadHandler {
	return &UploadHandler{uploadFlow: uploadFlow}
}

func (h *UploadHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *UploadHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// UploadMedia accepts a multipart file together with media_type, compress
// and quality form fields, runs it through the pipeline and records the asset.
func (h *UploadHandler) UploadMedia(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "File is required", "MISSING_FILE", nil)
	}

	category := c.FormValue("media_type")
	if category == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "media_type is required", "MISSING_MEDIA_TYPE", nil)
	}

	compress := true
	if v := c.FormValue("compress"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "compress must be a boolean", "INVALID_COMPRESS", nil)
		}
		compress = parsed
	}
	quality := c.FormValue("quality")

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unable to read uploaded file", "UNREADABLE_FILE", nil)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unable to read uploaded file", "UNREADABLE_FILE", nil)
	}

	req := &dto.UploadMediaRequest{
		UserID:           userID,
		OriginalFilename: fileHeader.Filename,
		DeclaredType:     fileHeader.Header.Get("Content-Type"),
		Category:         category,
		Content:          content,
		Compress:         compress,
		Quality:          quality,
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	// Video transcodes can run for up to ten minutes.
	result, err := h.uploadFlow.UploadMedia(h.createRequestContextWithTimeout(c, "/api/v1/media", 15*time.Minute), req, metadata)
	if err != nil {
		if businessflow.IsFileTooLarge(err) {
			return h.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, err.Error(), "FILE_TOO_LARGE", nil)
		}
		if businessflow.IsUnsupportedCategory(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "UNSUPPORTED_MEDIA_TYPE", nil)
		}
		if businessflow.IsFileEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Empty file", "EMPTY_FILE", nil)
		}
		if businessflow.IsFileTypeNotAllowed(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "FILE_TYPE_NOT_ALLOWED", nil)
		}
		if businessflow.IsStorageUploadFailed(err) {
			log.Println("Media upload storage failure", err)
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store file", "STORAGE_FAILED", nil)
		}

		log.Println("Media upload failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Upload failed", "UPLOAD_FAILED", nil)
	}

	middleware.RecordMediaUpload(category, result.OriginalSize, result.FinalSize, result.StoredLocally)

	return h.SuccessResponse(c, fiber.StatusCreated, "File uploaded successfully", result)
}

// ListMedia returns a page of the caller's media assets
func (h *UploadHandler) ListMedia(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "page must be a number", "INVALID_PAGINATION", nil)
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "20"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "page_size must be a number", "INVALID_PAGINATION", nil)
	}

	result, err := h.uploadFlow.ListMedia(h.createRequestContext(c, "/api/v1/media"), userID, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PAGINATION", nil)
		}

		log.Println("Listing media failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list media", "LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Media retrieved", result)
}

// DeleteMedia removes an asset the caller owns
func (h *UploadHandler) DeleteMedia(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	assetUUID := c.Params("uuid")
	if assetUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Asset UUID is required", "MISSING_UUID", nil)
	}

	if err := h.uploadFlow.DeleteMedia(h.createRequestContext(c, "/api/v1/media/:uuid"), userID, assetUUID); err != nil {
		if businessflow.IsMediaAssetNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Media asset not found", "ASSET_NOT_FOUND", nil)
		}
		if businessflow.IsMediaAssetAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied", "ASSET_ACCESS_DENIED", nil)
		}

		log.Println("Deleting media failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete media", "DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Media deleted", nil)
}

// PreviewMedia serves a JPEG thumbnail for an asset the caller owns,
// redirecting to the public URL for assets held in durable storage
func (h *UploadHandler) PreviewMedia(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	assetUUID := c.Params("uuid")
	if assetUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Asset UUID is required", "MISSING_UUID", nil)
	}

	// Video frame grabs shell out to ffmpeg.
	preview, err := h.uploadFlow.PreviewMedia(h.createRequestContextWithTimeout(c, "/api/v1/media/:uuid/preview", 2*time.Minute), userID, assetUUID)
	if err != nil {
		if businessflow.IsMediaAssetNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Media asset not found", "ASSET_NOT_FOUND", nil)
		}
		if businessflow.IsMediaAssetAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied", "ASSET_ACCESS_DENIED", nil)
		}
		if businessflow.IsPreviewUnsupported(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Previews are only available for photos and videos", "PREVIEW_UNSUPPORTED", nil)
		}

		log.Println("Rendering preview failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to render preview", "PREVIEW_FAILED", nil)
	}

	if preview.RedirectURL != "" {
		return c.Redirect().Status(fiber.StatusFound).To(preview.RedirectURL)
	}

	c.Set(fiber.HeaderContentType, preview.ContentType)
	return c.Status(fiber.StatusOK).Send(preview.Content)
}

// CompressionStatus reports whether the transcoder and durable storage are up
func (h *UploadHandler) CompressionStatus(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Compression status", h.uploadFlow.CompressionStatus())
}

func (h *UploadHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *UploadHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
