// Package client talks to the remote school REST API.
//
// Requests that need authentication carry the stored credential as an
// "Authorization: Bearer" header. The header is attached by an
// oauth2.Transport whose TokenSource reads the credential slot on every
// request, so a login or logout takes effect on the next call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the address of the API in a local development setup
const DefaultBaseURL = "https://localhost:7072"

// CredentialSource gives read access to the stored bearer credential
type CredentialSource interface {
	Get() (string, bool)
}

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type authMode int

const (
	// authNone never sends a credential
	authNone authMode = iota
	// authOptional sends the credential when one is stored
	authOptional
	// authRequired fails with ErrNoCredential when nothing is stored
	authRequired
)

// Client is the typed API client. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	creds     CredentialSource
	public    *http.Client
	protected *http.Client
	logger    Logger
}

type Option func(*Client)

// WithHTTPClient sets the base client. Its Transport is wrapped for
// protected calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.public = hc
		}
	}
}

// WithTimeout sets the overall timeout for each request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.public.Timeout = d
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the API rooted at baseURL
func New(baseURL string, creds CredentialSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		creds:   creds,
		public:  &http.Client{Timeout: 30 * time.Second},
		logger:  nopLogger{},
	}

	for _, opt := range opts {
		opt(c)
	}

	base := c.public.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c.protected = &http.Client{
		Timeout:       c.public.Timeout,
		CheckRedirect: c.public.CheckRedirect,
		Jar:           c.public.Jar,
		Transport: &oauth2.Transport{
			Source: CredentialTokenSource(creds),
			Base:   base,
		},
	}

	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FileURL resolves a server relative file path, such as a submission path,
// against the API root.
func (c *Client) FileURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL.String() + path
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	auth        authMode
	body        io.Reader
	contentType string
}

func (c *Client) jsonRequest(op, method, path string, auth authMode, payload any) (request, error) {
	req := request{
		op:     op,
		method: method,
		path:   path,
		auth:   auth,
	}

	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return req, RequestError(op, fmt.Errorf("encode body: %w", err))
		}
		req.body = bytes.NewReader(buf)
		req.contentType = "application/json"
	}

	return req, nil
}

// do executes r and decodes a JSON response into out when out is not nil.
// It returns the response status code.
func (c *Client) do(ctx context.Context, r request, out any) (int, error) {
	endpoint := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		endpoint.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint.String(), r.body)
	if err != nil {
		return 0, RequestError(r.op, err)
	}

	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	hc, err := c.httpClient(r.auth)
	if err != nil {
		return 0, TransportError(r.op, err)
	}

	c.logger.Debug("api request", "op", r.op, "method", r.method, "url", endpoint.String())

	res, err := hc.Do(req)
	if err != nil {
		return 0, TransportError(r.op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.StatusCode, StatusError(r.op, res.StatusCode, readServerMessage(res.Body))
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return res.StatusCode, nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return res.StatusCode, nil
		}
		return res.StatusCode, DecodeError(r.op, res.StatusCode, err)
	}

	return res.StatusCode, nil
}

func (c *Client) httpClient(mode authMode) (*http.Client, error) {
	switch mode {
	case authRequired:
		return c.protected, nil
	case authOptional:
		if c.creds != nil {
			if _, ok := c.creds.Get(); ok {
				return c.protected, nil
			}
		}
		return c.public, nil
	default:
		return c.public, nil
	}
}

// readServerMessage pulls a human readable message out of an error body.
// ASP.NET style problem details use "title", plain handlers "message".
func readServerMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body struct {
		Message string `json:"message"`
		Title   string `json:"title"`
		Detail  string `json:"detail"`
	}

	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Detail != "":
			return body.Detail
		case body.Title != "":
			return body.Title
		}
		return ""
	}

	msg := strings.TrimSpace(string(raw))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
