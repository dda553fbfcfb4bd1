package services

import (
	"errors"
	"net/http"

	"yatube/app/models"
	"yatube/app/repositories"
)

// AppError is the error type every service returns. Fields carries per-field
// messages for INVALID_INPUT so forms can be re-rendered.
type AppError struct {
	Code    string
	Message string
	Fields  map[string]string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Standard error codes for the application
const (
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE"
	ErrInvalidInput = "INVALID_INPUT"
	ErrUnauthorized = "UNAUTHORIZED"
	ErrForbidden    = "FORBIDDEN" // User is authenticated but doesn't have permission
	ErrDatabase     = "DATABASE_ERROR"
)

func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func newNotFoundError(what string) *AppError {
	return &AppError{Code: ErrNotFound, Message: what + " not found"}
}

func newInvalidInputError(fields map[string]string) *AppError {
	return &AppError{Code: ErrInvalidInput, Message: "invalid input", Fields: fields}
}

// validationError converts a model validation failure, renaming model fields
// to the form fields users see.
func validationError(err error, rename map[string]string) *AppError {
	fields := models.FieldErrors(err)
	for from, to := range rename {
		if msg, ok := fields[from]; ok {
			delete(fields, from)
			fields[to] = msg
		}
	}
	if msg, ok := fields[""]; ok {
		delete(fields, "")
		fields["__all__"] = msg
	}
	return newInvalidInputError(fields)
}

// storageError maps repository sentinels onto application codes.
func storageError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return &AppError{Code: ErrNotFound, Message: what + " not found", Origin: err}
	case errors.Is(err, repositories.ErrDuplicate):
		return &AppError{Code: ErrDuplicate, Message: what + " already exists", Origin: err}
	default:
		return NewAppError(ErrDatabase, "storage failure", err)
	}
}

// IsErrorCode reports whether err is an AppError with the given code.
func IsErrorCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FieldErrorsOf returns the per-field messages of an INVALID_INPUT error.
func FieldErrorsOf(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// HTTPStatus converts an AppError code to an HTTP status code.
func HTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// StatusOf is HTTPStatus for an arbitrary error.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPStatus(appErr.Code)
	}
	return http.StatusInternalServerError
}
