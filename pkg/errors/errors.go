package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput marks a request the client has to fix
	ErrInvalidInput = errors.New("invalid input")

	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrUpstream marks a failure of an external dependency such as the inference API
	ErrUpstream = errors.New("upstream failure")

	ErrInternal = errors.New("internal error")
)

// InvalidInputError names the offending field and why it was rejected
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

func MethodNotAllowedError(method string) error {
	return fmt.Errorf("%s: %w", method, ErrMethodNotAllowed)
}

// UpstreamError keeps both ErrUpstream and the cause in the chain
func UpstreamError(service string, err error) error {
	return fmt.Errorf("%s: %w: %w", service, ErrUpstream, err)
}

// InternalError wraps cause as ErrInternal; a nil cause yields a plain message
func InternalError(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, ErrInternal)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrInternal, cause)
}

// HTTPStatus maps an error chain to the status code the API answers with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}
