package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by DomainError.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeDuplicate          = "DUPLICATE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// Client-facing messages.
const (
	MsgFieldsRequired     = "All fields required"
	MsgEntryNoExists      = "Entry No already exists"
	MsgInvalidCredentials = "Invalid Credentials"
	MsgSessionExpired     = "Unauthorized or Session Expired"
	MsgServerError        = "Server error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(message string) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest)
}

// NewDuplicate reports a unique-key violation. It stays a 400 so existing
// clients keep working.
func NewDuplicate(message string, err error) error {
	return &DomainError{Code: CodeDuplicate, Message: message, HTTPStatus: http.StatusBadRequest, Err: err}
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, MsgInvalidCredentials, http.StatusUnauthorized)
}

func NewUnauthorized(err error) error {
	return &DomainError{Code: CodeUnauthorized, Message: MsgSessionExpired, HTTPStatus: http.StatusUnauthorized, Err: err}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    MsgServerError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := CodeInternal
		switch {
		case fiberErr.Code == http.StatusNotFound:
			code = CodeNotFound
		case fiberErr.Code < http.StatusInternalServerError:
			code = CodeValidation
		}
		return &DomainError{Code: code, Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    MsgServerError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
