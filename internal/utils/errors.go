package utils

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorCodeValidationError     ErrorCode = "VALIDATION_ERROR"
	ErrorCodeUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrorCodeDownloadFailed      ErrorCode = "DOWNLOAD_FAILED"
	ErrorCodeFileTooLarge        ErrorCode = "FILE_TOO_LARGE"
	ErrorCodeRateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// AppError is a request-terminating failure. Message is what the user sees.
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, details map[string]interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func NewValidationError(text string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeValidationError,
		"❌ Please send a valid video link (it must start with http:// or https://).",
		map[string]interface{}{
			"provided": text,
		},
	)
}

func NewUnsupportedPlatformError(link string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeUnsupportedPlatform,
		"❌ Unsupported platform. Use YouTube, TikTok or Instagram.",
		map[string]interface{}{
			"link": link,
		},
	)
}

func NewDownloadError(err error, hint string) *AppError {
	message := fmt.Sprintf("❌ Error downloading video: %v", err)
	if hint != "" {
		message += "\n\n" + hint
	}
	return &AppError{
		Code:    ErrorCodeDownloadFailed,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

func NewFileTooLargeError(size, limit int64) *AppError {
	return NewErrorWithDetails(
		ErrorCodeFileTooLarge,
		fmt.Sprintf("❌ The file is too large to send via Telegram (maximum %dMB).", limit/(1024*1024)),
		map[string]interface{}{
			"size":  size,
			"limit": limit,
		},
	)
}

func NewRateLimitError() *AppError {
	return NewError(
		ErrorCodeRateLimitExceeded,
		"⏳ Too many requests. Please wait a moment and try again.",
	)
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrorCodeInternalError,
		Message: "❌ Something went wrong while processing your video. Please try again.",
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// ErrorCodeOf returns the code of the first AppError in err's chain.
func ErrorCodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCodeInternalError
}
