package client_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-student-portal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status   int
		category goerrors.Category
	}{
		{status: http.StatusBadRequest, category: goerrors.CategoryBadInput},
		{status: http.StatusUnauthorized, category: goerrors.CategoryAuth},
		{status: http.StatusForbidden, category: goerrors.CategoryAuthz},
		{status: http.StatusNotFound, category: goerrors.CategoryNotFound},
		{status: http.StatusConflict, category: goerrors.CategoryConflict},
		{status: http.StatusTooManyRequests, category: goerrors.CategoryRateLimit},
		{status: http.StatusBadGateway, category: goerrors.CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := client.StatusError("get student", tt.status, "")
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.status, err.Code)
			assert.Equal(t, tt.status, client.StatusCode(err))
			assert.Equal(t, "get student", client.Operation(err))
			assert.Equal(t, "fallback", client.Message(err, "fallback"))
		})
	}
}

func TestStatusErrorServerMessage(t *testing.T) {
	err := client.StatusError("register", http.StatusConflict, "Student already exists")

	assert.Equal(t, "Student already exists", err.Message)
	assert.Equal(t, "Student already exists", client.Message(fmt.Errorf("wrapped: %w", err), "fallback"))
	assert.True(t, client.IsNotFound(client.StatusError("x", http.StatusNotFound, "")))
	assert.False(t, client.IsNotFound(err))
}

func TestErrorHelpersOnPlainErrors(t *testing.T) {
	err := errors.New("plain")

	assert.Equal(t, 0, client.StatusCode(err))
	assert.Equal(t, "", client.Operation(err))
	assert.Equal(t, "fallback", client.Message(err, "fallback"))
	assert.False(t, client.IsUnauthorized(err))
	assert.False(t, client.IsUnauthorized(nil))
}

func TestTransportErrorKeepsMissingCredential(t *testing.T) {
	err := client.TransportError("list notices", fmt.Errorf("Get \"/api/notice\": %w", client.ErrNoCredential))

	assert.ErrorIs(t, err, client.ErrNoCredential)
	assert.Equal(t, goerrors.CategoryAuth, err.Category)
	assert.True(t, client.IsUnauthorized(err))
	assert.Nil(t, client.ErrNoCredential.Metadata)
}

func TestDecodeErrorWrapsCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := client.DecodeError("attendance", http.StatusOK, cause)

	assert.ErrorIs(t, err, client.ErrDecodeResponse)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, client.TextCodeDecodeResponse, err.TextCode)
	assert.Equal(t, http.StatusOK, client.StatusCode(err))

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, "attendance", richErr.Metadata[client.MetaOp])
}

func TestRequestError(t *testing.T) {
	err := client.RequestError("upload submission", errors.New("missing file"))

	assert.Equal(t, goerrors.CategoryBadInput, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, 0, client.StatusCode(err))
}
