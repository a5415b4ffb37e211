package handlers

import (
	"context"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/webstar-labs/webstar/app/dto"
	businessflow "github.com/webstar-labs/webstar/business_flow"
	"github.com/webstar-labs/webstar/utils"
)

// ProjectHandlerInterface defines the contract for project handlers
type ProjectHandlerInterface interface {
	CreateProject(c fiber.Ctx) error
	UpdateProject(c fiber.Ctx) error
	DeleteProject(c fiber.Ctx) error
	GetProject(c fiber.Ctx) error
	ListProjects(c fiber.Ctx) error
	UploadProjectCover(c fiber.Ctx) error
	AddProjectMedia(c fiber.Ctx) error
}

// ProjectHandler handles portfolio project HTTP requests
type ProjectHandler struct {
	projectFlow businessflow.ProjectFlow
	validator   *validator.Validate
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectFlow businessflow.ProjectFlow) *ProjectHandler {
	return &ProjectHandler{
		projectFlow: projectFlow,
		validator:   validator.New(),
	}
}

func (h *ProjectHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProjectHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateProject creates a new portfolio project for the caller
func (h *ProjectHandler) CreateProject(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	var req dto.CreateProjectRequest
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

	result, err := h.projectFlow.CreateProject(h.createRequestContext(c, "/api/v1/projects"), userID, &req)
	if err != nil {
		if businessflow.IsProjectTitleRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Project title is required", "TITLE_REQUIRED", nil)
		}

		log.Println("Creating project failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create project", "PROJECT_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Project created", result)
}

// UpdateProject applies a partial update to a project the caller owns
func (h *ProjectHandler) UpdateProject(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	projectUUID := c.Params("uuid")

	var req dto.UpdateProjectRequest
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

	result, err := h.projectFlow.UpdateProject(h.createRequestContext(c, "/api/v1/projects/:uuid"), userID, projectUUID, &req)
	if err != nil {
		return h.projectError(c, err, "Updating project failed", "PROJECT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Project updated", result)
}

// DeleteProject removes a project the caller owns
func (h *ProjectHandler) DeleteProject(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	projectUUID := c.Params("uuid")

	if err := h.projectFlow.DeleteProject(h.createRequestContext(c, "/api/v1/projects/:uuid"), userID, projectUUID); err != nil {
		return h.projectError(c, err, "Deleting project failed", "PROJECT_DELETE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Project deleted", nil)
}

// GetProject returns a single project by UUID
func (h *ProjectHandler) GetProject(c fiber.Ctx) error {
	projectUUID := c.Params("uuid")

	result, err := h.projectFlow.GetProject(h.createRequestContext(c, "/api/v1/projects/:uuid"), projectUUID)
	if err != nil {
		return h.projectError(c, err, "Fetching project failed", "PROJECT_FETCH_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Project retrieved", result)
}

// ListProjects returns a page of the caller's projects
func (h *ProjectHandler) ListProjects(c fiber.Ctx) error {
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

	result, err := h.projectFlow.ListProjects(h.createRequestContext(c, "/api/v1/projects"), userID, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PAGINATION", nil)
		}

		log.Println("Listing projects failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list projects", "PROJECT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Projects retrieved", result)
}

// UploadProjectCover replaces the cover image of a project the caller owns
func (h *ProjectHandler) UploadProjectCover(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	projectUUID := c.Params("uuid")

	content, filename, err := h.readUpload(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "A readable file is required", "MISSING_FILE", nil)
	}

	result, err := h.projectFlow.UploadProjectCover(h.createRequestContextWithTimeout(c, "/api/v1/projects/:uuid/cover", 2*time.Minute), userID, projectUUID, content, filename)
	if err != nil {
		return h.projectError(c, err, "Uploading project cover failed", "COVER_UPLOAD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Cover uploaded", result)
}

// AddProjectMedia appends a gallery item to a project the caller owns
func (h *ProjectHandler) AddProjectMedia(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	projectUUID := c.Params("uuid")
	category := c.FormValue("media_type")
	caption := c.FormValue("caption")

	content, filename, err := h.readUpload(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "A readable file is required", "MISSING_FILE", nil)
	}

	result, err := h.projectFlow.AddProjectMedia(h.createRequestContextWithTimeout(c, "/api/v1/projects/:uuid/media", 15*time.Minute), userID, projectUUID, content, filename, category, caption)
	if err != nil {
		return h.projectError(c, err, "Adding project media failed", "PROJECT_MEDIA_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Media added", result)
}

func (h *ProjectHandler) readUpload(c fiber.Ctx) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	return content, fileHeader.Filename, nil
}

func (h *ProjectHandler) projectError(c fiber.Ctx, err error, logMessage, fallbackCode string) error {
	if businessflow.IsProjectNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", "PROJECT_NOT_FOUND", nil)
	}
	if businessflow.IsProjectAccessDenied(err) {
		return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied", "PROJECT_ACCESS_DENIED", nil)
	}
	if businessflow.IsFileTooLarge(err) {
		return h.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, err.Error(), "FILE_TOO_LARGE", nil)
	}
	if businessflow.IsFileEmpty(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Empty file", "EMPTY_FILE", nil)
	}
	if businessflow.IsFileTypeNotAllowed(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "FILE_TYPE_NOT_ALLOWED", nil)
	}
	if businessflow.IsUnsupportedCategory(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "UNSUPPORTED_MEDIA_TYPE", nil)
	}
	if businessflow.IsStorageUploadFailed(err) {
		log.Println(logMessage, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store file", "STORAGE_FAILED", nil)
	}

	log.Println(logMessage, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Request failed", fallbackCode, nil)
}

func (h *ProjectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ProjectHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
