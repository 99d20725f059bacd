package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidInputError(t *testing.T) {
	err := InvalidInputError("idea", "must not be blank")
	assert.True(t, Is(err, ErrInvalidInput))
	assert.Equal(t, "idea: must not be blank: invalid input", err.Error())
}

func TestUpstreamError_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamError("huggingface", cause)

	assert.True(t, Is(err, ErrUpstream))
	assert.True(t, Is(err, cause))
	assert.Equal(t, "huggingface: upstream failure: connection refused", err.Error())
}

func TestInternalError(t *testing.T) {
	cause := errors.New("score out of range")

	err := InternalError("scoring with random", cause)
	assert.True(t, Is(err, ErrInternal))
	assert.True(t, Is(err, cause))

	assert.Equal(t, "nothing scored: internal error", InternalError("nothing scored", nil).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid input", InvalidInputError("plan", "empty"), http.StatusBadRequest},
		{"method", MethodNotAllowedError("GET"), http.StatusMethodNotAllowed},
		{"upstream", UpstreamError("huggingface", errors.New("503")), http.StatusBadGateway},
		{"internal", InternalError("boom", nil), http.StatusInternalServerError},
		{"wrapped invalid", fmt.Errorf("handler: %w", InvalidInputError("idea", "empty")), http.StatusBadRequest},
		{"unknown", errors.New("unclassified"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
