package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NotFound("cart", "client-1")
	assert.Equal(t, "NOT_FOUND: cart with id client-1 not found: resource not found", err.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	err := LoginRequired("")
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestLoginRequired_DefaultMessage(t *testing.T) {
	err := LoginRequired("")
	assert.Equal(t, "please login to continue", err.Message)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
}

func TestRemoteRejected_ServerMessagePreserved(t *testing.T) {
	err := RemoteRejected("category already exists")
	assert.Equal(t, "category already exists", err.Message)
	assert.ErrorIs(t, err, ErrRemoteRejected)
}

func TestRemoteRejected_FallbackMessage(t *testing.T) {
	err := RemoteRejected("")
	assert.Equal(t, "the request was rejected", err.Message)
}

func TestUpstreamUnavailable_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamUnavailable(cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"login required", ErrLoginRequired, http.StatusUnauthorized},
		{"remote rejected", ErrRemoteRejected, http.StatusUnprocessableEntity},
		{"upstream", ErrUpstream, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"app error", Conflict("cart type"), http.StatusConflict},
		{"wrapped", Wrap(ErrNotFound, "get cart"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
