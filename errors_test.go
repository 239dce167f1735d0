package portal

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestIsDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "malformed", err: ErrMalformed, expected: true},
		{name: "encoding with source", err: invalidEncoding(errors.New("bad byte")), expected: true},
		{name: "wrapped encoding", err: fmt.Errorf("decode: %w", invalidEncoding(errors.New("bad byte"))), expected: true},
		{name: "no identity", err: ErrNoIdentity, expected: false},
		{name: "other rich error", err: goerrors.New("boom", goerrors.CategoryInternal), expected: false},
		{name: "other", err: errors.New("boom"), expected: false},
		{name: "nil", err: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDecodeError(tt.err))
		})
	}
}

func TestInvalidEncodingKeepsSource(t *testing.T) {
	cause := errors.New("illegal base64 data")
	err := invalidEncoding(cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrInvalidEncoding.Source)
	assert.Equal(t, TextCodeCredentialEncoding, err.TextCode)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Unable to read your identity. Please log in again.", userMessage(ErrNoIdentity, "fallback"))
	assert.Equal(t, "Unable to read your identity. Please log in again.", userMessage(fmt.Errorf("dashboard: %w", ErrNoIdentity), "fallback"))
	assert.Equal(t, "fallback", userMessage(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", userMessage(nil, "fallback"))
}
