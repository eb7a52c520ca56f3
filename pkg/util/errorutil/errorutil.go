package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/gateway"
	"github.com/spec-kit/ticket-portal/internal/policy"
	"github.com/spec-kit/ticket-portal/internal/session"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
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
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusUnprocessableEntity, details)
}

func NewBadRequest(message string) error {
	return NewDomainError("BAD_REQUEST", message, http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewUpstreamError wraps a failed call to the ticketing API with the message
// shown to the user.
func NewUpstreamError(message string, err error) error {
	return &DomainError{
		Code:       "UPSTREAM_ERROR",
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts any error into a DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var rejection *policy.Rejection
	if errors.As(err, &rejection) {
		details := map[string]any{"reason_code": rejection.Code}
		if rejection.Kind == policy.KindValidation {
			return NewDomainError("VALIDATION_FAILED", rejection.Reason, http.StatusUnprocessableEntity, details)
		}
		return NewDomainError("FORBIDDEN", rejection.Reason, http.StatusForbidden, details)
	}

	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr)
	}

	switch {
	case errors.Is(err, session.ErrInflight):
		return &DomainError{Code: "CONFLICT", Message: session.ErrInflight.Error(), HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrUnseal):
		return &DomainError{Code: "UNAUTHORIZED", Message: "session expired, please log in again", HTTPStatus: http.StatusUnauthorized, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &DomainError{Code: "UPSTREAM_TIMEOUT", Message: "the ticketing service did not answer in time", HTTPStatus: http.StatusGatewayTimeout, Err: err}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromAPIError(apiErr *gateway.APIError) *DomainError {
	message := apiErr.Message
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		if message == "" {
			message = "the ticketing service rejected the credentials"
		}
		return &DomainError{Code: "UNAUTHORIZED", Message: message, HTTPStatus: http.StatusUnauthorized, Err: apiErr}
	case http.StatusNotFound:
		if message == "" {
			message = "ticket not found"
		}
		return &DomainError{Code: "NOT_FOUND", Message: message, HTTPStatus: http.StatusNotFound, Err: apiErr}
	}
	if message == "" {
		message = "the ticketing service failed"
	}
	return &DomainError{
		Code:       "UPSTREAM_ERROR",
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"upstream_status": apiErr.StatusCode},
		Err:        apiErr,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return "REQUEST_FAILED"
}

func MapError(err error) error {
	return ToDomainError(err)
}
