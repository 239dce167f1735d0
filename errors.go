package portal

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeCredentialMalformed = "CREDENTIAL_MALFORMED"
	TextCodeCredentialEncoding  = "CREDENTIAL_INVALID_ENCODING"
	TextCodeNoIdentity          = "NO_IDENTITY"
)

// ErrMalformed is returned when a credential has fewer than two segments
var ErrMalformed = goerrors.New("credential is malformed", goerrors.CategoryBadInput).
	WithTextCode(TextCodeCredentialMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidEncoding is returned when the claims segment is not base64 encoded JSON
var ErrInvalidEncoding = goerrors.New("credential claims have invalid encoding", goerrors.CategoryBadInput).
	WithTextCode(TextCodeCredentialEncoding).
	WithCode(goerrors.CodeBadRequest)

// ErrNoIdentity is returned when a protected page needs a subject id and the
// stored credential does not carry one. Its message is shown to the user.
var ErrNoIdentity = goerrors.New("Unable to read your identity. Please log in again.", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoIdentity).
	WithCode(goerrors.CodeUnauthorized)

func invalidEncoding(err error) *goerrors.Error {
	clone := ErrInvalidEncoding.Clone()
	clone.Source = err
	return clone
}

// IsDecodeError reports whether err came from DecodeCredential
func IsDecodeError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	switch richErr.TextCode {
	case TextCodeCredentialMalformed, TextCodeCredentialEncoding:
		return true
	}
	return false
}

// userMessage returns the message of a rich error, or fallback
func userMessage(err error, fallback string) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return fallback
}
