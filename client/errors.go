package client

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/oauth2"
)

const (
	TextCodeNoCredential   = "NO_CREDENTIAL"
	TextCodeTokenMissing   = "TOKEN_MISSING"
	TextCodeDecodeResponse = "API_DECODE_RESPONSE"
	TextCodeUnreachable    = "API_UNREACHABLE"
	TextCodeRequest        = "API_REQUEST"
)

// Metadata keys set on every API error
const (
	MetaOp            = "op"
	MetaStatus        = "status"
	MetaServerMessage = "server_message"
)

// ErrNoCredential is returned by protected calls when no credential is stored
var ErrNoCredential = goerrors.New("no credential stored", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoCredential).
	WithCode(goerrors.CodeUnauthorized)

// ErrDecodeResponse marks a response body that could not be parsed
var ErrDecodeResponse = goerrors.New("unable to decode response", goerrors.CategoryInternal).
	WithTextCode(TextCodeDecodeResponse).
	WithCode(goerrors.CodeInternal)

// ErrTokenMissing is returned by Login when the server answered without a token
var ErrTokenMissing = goerrors.New("token missing from response", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(goerrors.CodeUnauthorized)

// StatusError describes a non 2xx answer. The category follows the status
// and serverMessage, when present, is what the user sees.
func StatusError(op string, status int, serverMessage string) *goerrors.Error {
	message := serverMessage
	if message == "" {
		message = op + ": " + http.StatusText(status)
	}

	meta := map[string]any{MetaOp: op, MetaStatus: status}
	if serverMessage != "" {
		meta[MetaServerMessage] = serverMessage
	}

	return goerrors.New(message, goerrors.HTTPStatusToCategory(status)).
		WithTextCode(goerrors.HTTPStatusToTextCode(status)).
		WithCode(status).
		WithMetadata(meta)
}

// TransportError describes a call that never got an answer
func TransportError(op string, err error) *goerrors.Error {
	if goerrors.Is(err, ErrNoCredential) {
		return wrapCause(op, ErrNoCredential, err)
	}

	e := goerrors.New(op+": API unreachable", goerrors.CategoryOperation).
		WithTextCode(TextCodeUnreachable).
		WithCode(http.StatusBadGateway).
		WithMetadata(map[string]any{MetaOp: op})
	e.Source = err
	return e
}

// RequestError describes a request that could not be built
func RequestError(op string, err error) *goerrors.Error {
	e := goerrors.New(op+": invalid request", goerrors.CategoryBadInput).
		WithTextCode(TextCodeRequest).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{MetaOp: op})
	e.Source = err
	return e
}

// DecodeError describes a 2xx answer whose body could not be parsed
func DecodeError(op string, status int, err error) *goerrors.Error {
	return wrapCause(op, ErrDecodeResponse, fmt.Errorf("%w: %w", ErrDecodeResponse, err)).
		WithMetadata(map[string]any{MetaStatus: status})
}

// wrapCause clones a sentinel for op. source must wrap the sentinel so
// errors.Is keeps finding it.
func wrapCause(op string, cause *goerrors.Error, source error) *goerrors.Error {
	clone := cause.Clone()
	clone.Message = op + ": " + cause.Message
	clone.Source = source
	return clone.WithMetadata(map[string]any{MetaOp: op})
}

// StatusCode returns the HTTP status carried by err, or zero
func StatusCode(err error) int {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return 0
	}
	status, _ := richErr.Metadata[MetaStatus].(int)
	return status
}

// Operation returns the client operation that produced err
func Operation(err error) string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	op, _ := richErr.Metadata[MetaOp].(string)
	return op
}

// IsNotFound reports a 404 answer
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports a 401 answer or a missing credential
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized || goerrors.Is(err, ErrNoCredential)
}

// Message returns the message the API sent with err, or fallback
func Message(err error, fallback string) string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return fallback
	}
	if msg, _ := richErr.Metadata[MetaServerMessage].(string); msg != "" {
		return msg
	}
	return fallback
}

// CredentialTokenSource adapts a CredentialSource to oauth2 so the
// credential is read on every request instead of being cached.
func CredentialTokenSource(src CredentialSource) oauth2.TokenSource {
	return credentialTokenSource{src: src}
}

type credentialTokenSource struct {
	src CredentialSource
}

func (s credentialTokenSource) Token() (*oauth2.Token, error) {
	if s.src == nil {
		return nil, ErrNoCredential
	}

	credential, ok := s.src.Get()
	if !ok || credential == "" {
		return nil, ErrNoCredential
	}

	return &oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	}, nil
}
