package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrValidation   = errors.New("validation failed")
)

// Document-scoped errors. Each ends up as one entry in BatchResult.Failures.
var (
	ErrUnsupportedMediaType   = errors.New("unsupported media type")
	ErrCorruptedDocument      = errors.New("corrupted or unsupported format")
	ErrEmptyText              = errors.New("could not extract text or file is empty")
	ErrUnparseableResponse    = errors.New("unparseable response")
	ErrInvalidShape           = errors.New("response is not a JSON object")
	ErrServiceBlocked         = errors.New("service blocked the request")
	ErrEmptyResponse          = errors.New("empty response")
	ErrMalformedResponseShape = errors.New("malformed response shape")
)

// Run-scoped errors. These abort a batch before any document is attempted.
var (
	ErrEmptyArchive         = errors.New("archive contains no supported files")
	ErrClientNotInitialized = errors.New("extraction service client is not initialized")
)

// Error codes carried by AppError.
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeInput      = "INPUT_ERROR"
	CodeExtraction = "EXTRACTION_ERROR"
	CodeService    = "SERVICE_ERROR"
	CodeResponse   = "RESPONSE_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage returns the human-readable text for err: the AppError message when
// one is in the chain, else err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
