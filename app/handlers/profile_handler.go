package handlers

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/webstar-labs/webstar/app/dto"
	businessflow "github.com/webstar-labs/webstar/business_flow"
	"github.com/webstar-labs/webstar/utils"
)

// ProfileHandlerInterface defines the contract for profile handlers
type ProfileHandlerInterface interface {
	GetMyProfile(c fiber.Ctx) error
	GetProfileByUsername(c fiber.Ctx) error
	UpdateProfile(c fiber.Ctx) error
	UpdateProfilePicture(c fiber.Ctx) error
	UpdateBannerImage(c fiber.Ctx) error
}

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	profileFlow businessflow.ProfileFlow
	validator   *validator.Validate
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileFlow businessflow.ProfileFlow) *ProfileHandler {
	return &ProfileHandler{
		profileFlow: profileFlow,
		validator:   validator.New(),
	}
}

func (h *ProfileHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProfileHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetMyProfile returns the caller's own profile
func (h *ProfileHandler) GetMyProfile(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	result, err := h.profileFlow.GetProfile(h.createRequestContext(c, "/api/v1/profile/me"), userID)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}

		log.Println("Fetching profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch profile", "PROFILE_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved", result)
}

// GetProfileByUsername returns a public profile by username
func (h *ProfileHandler) GetProfileByUsername(c fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Username is required", "MISSING_USERNAME", nil)
	}

	result, err := h.profileFlow.GetProfileByUsername(h.createRequestContext(c, "/api/v1/profile/:username"), username)
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}

		log.Println("Fetching profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch profile", "PROFILE_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved", result)
}

// UpdateProfile applies a partial update to the caller's profile
func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.profileFlow.UpdateProfile(h.createRequestContext(c, "/api/v1/profile/me"), userID, &req)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}

		log.Println("Updating profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", "PROFILE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile updated", result)
}

// UpdateProfilePicture uploads a new profile picture through the media pipeline
func (h *ProfileHandler) UpdateProfilePicture(c fiber.Ctx) error {
	return h.uploadProfileImage(c, "/api/v1/profile/me/picture", h.profileFlow.UpdateProfilePicture)
}

// UpdateBannerImage uploads a new banner image through the media pipeline
func (h *ProfileHandler) UpdateBannerImage(c fiber.Ctx) error {
	return h.uploadProfileImage(c, "/api/v1/profile/me/banner", h.profileFlow.UpdateBannerImage)
}

func (h *ProfileHandler) uploadProfileImage(
	c fiber.Ctx,
	endpoint string,
	apply func(ctx context.Context, userID uint, content []byte, filename string) (*dto.UpdateProfileImageResponse, error),
) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "File is required", "MISSING_FILE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unable to read uploaded file", "UNREADABLE_FILE", nil)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unable to read uploaded file", "UNREADABLE_FILE", nil)
	}

	result, err := apply(h.createRequestContextWithTimeout(c, endpoint, 2*time.Minute), userID, content, fileHeader.Filename)
	if err != nil {
		if businessflow.IsFileTooLarge(err) {
			return h.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, err.Error(), "FILE_TOO_LARGE", nil)
		}
		if businessflow.IsFileEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Empty file", "EMPTY_FILE", nil)
		}
		if businessflow.IsFileTypeNotAllowed(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "FILE_TYPE_NOT_ALLOWED", nil)
		}
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsStorageUploadFailed(err) {
			log.Println("Profile image storage failure", err)
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store file", "STORAGE_FAILED", nil)
		}

		log.Println("Profile image upload failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Upload failed", "UPLOAD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Image updated", result)
}

func (h *ProfileHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ProfileHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
