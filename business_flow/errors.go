// Package businessflow contains the core business logic and use cases for the platform
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound          = errors.New("user not found")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrIncorrectPassword     = errors.New("incorrect password")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionExpired        = errors.New("session has expired")

	// Upload pipeline errors
	ErrUnsupportedCategory = errors.New("unsupported media category")
	ErrFileTooLarge        = errors.New("file exceeds the size limit for its category")
	ErrFileEmpty           = errors.New("file is empty")
	ErrFileTypeNotAllowed  = errors.New("file type is not allowed")
	ErrStorageUnavailable  = errors.New("durable storage is not available")
	ErrStorageUploadFailed = errors.New("storage upload failed")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Project errors
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectAccessDenied  = errors.New("project access denied")
	ErrProjectTitleRequired = errors.New("project title is required")

	// Media asset errors
	ErrMediaAssetNotFound     = errors.New("media asset not found")
	ErrMediaAssetAccessDenied = errors.New("media asset access denied")
	ErrPreviewUnsupported     = errors.New("preview is not supported for this media type")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsPasswordTooShort(err error) bool {
	return errors.Is(err, ErrPasswordTooShort)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsUsernameAlreadyExists(err error) bool {
	return errors.Is(err, ErrUsernameAlreadyExists)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsUnsupportedCategory(err error) bool {
	return errors.Is(err, ErrUnsupportedCategory)
}

func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

func IsFileEmpty(err error) bool {
	return errors.Is(err, ErrFileEmpty)
}

func IsFileTypeNotAllowed(err error) bool {
	return errors.Is(err, ErrFileTypeNotAllowed)
}

func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

func IsStorageUploadFailed(err error) bool {
	return errors.Is(err, ErrStorageUploadFailed)
}

func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func IsProjectNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}

func IsProjectAccessDenied(err error) bool {
	return errors.Is(err, ErrProjectAccessDenied)
}

func IsProjectTitleRequired(err error) bool {
	return errors.Is(err, ErrProjectTitleRequired)
}

func IsMediaAssetNotFound(err error) bool {
	return errors.Is(err, ErrMediaAssetNotFound)
}

func IsMediaAssetAccessDenied(err error) bool {
	return errors.Is(err, ErrMediaAssetAccessDenied)
}

func IsPreviewUnsupported(err error) bool {
	return errors.Is(err, ErrPreviewUnsupported)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
