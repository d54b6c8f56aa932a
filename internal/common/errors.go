package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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
	ErrConfig       = errors.New("configuration error")
	ErrUpstream     = errors.New("upstream extraction failure")
	ErrInternal     = errors.New("internal error")
	ErrStore        = errors.New("store error")
)

// Error codes carried on AppError.Code and rendered to API clients.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConfig       = "CONFIG_ERROR"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InvalidInput builds an AppError wrapping ErrInvalidInput.
func InvalidInput(format string, args ...any) *AppError {
	return NewAppError(CodeInvalidInput, fmt.Sprintf(format, args...), ErrInvalidInput)
}

// NotFound builds an AppError wrapping ErrNotFound.
func NotFound(what, id string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s %q not found", what, id), ErrNotFound)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf returns the API error code for err.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrConfig):
		return CodeConfig
	case errors.Is(err, ErrUpstream):
		return CodeUpstream
	default:
		return CodeInternal
	}
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	if CodeOf(err) == CodeInternal {
		return "internal error"
	}
	return err.Error()
}

// GRPCError maps err onto a gRPC status.
func GRPCError(err error) error {
	if err == nil {
		return nil
	}
	var c codes.Code
	switch CodeOf(err) {
	case CodeNotFound:
		c = codes.NotFound
	case CodeInvalidInput:
		c = codes.InvalidArgument
	case CodeConfig:
		c = codes.FailedPrecondition
	case CodeUpstream:
		c = codes.Unavailable
	default:
		c = codes.Internal
	}
	return status.Error(c, MessageOf(err))
}
