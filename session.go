package portal

import (
	"context"
	"time"
)

// DefaultStorageKey is the name the credential is stored under
const DefaultStorageKey = "token"

var _ CredentialSource = &SessionStore{}

// SessionStore owns the single credential slot of the process. It is the
// only component that talks to Storage.
//
// Storage failures never reach callers: a failed read is reported as an
// absent credential and a failed write or delete leaves the previous value
// in place.
type SessionStore struct {
	storage Storage
	key     string
	timeout time.Duration
	logger  Logger
}

type SessionStoreOption func(*SessionStore)

// WithStorageKey overrides DefaultStorageKey
func WithStorageKey(key string) SessionStoreOption {
	return func(s *SessionStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithStoreLogger sets the logger used to report swallowed storage errors
func WithStoreLogger(logger Logger) SessionStoreOption {
	return func(s *SessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStorageTimeout bounds every storage call
func WithStorageTimeout(d time.Duration) SessionStoreOption {
	return func(s *SessionStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSessionConfig applies the storage key and timeout from cfg
func WithSessionConfig(cfg Config) SessionStoreOption {
	return func(s *SessionStore) {
		if cfg == nil {
			return
		}
		WithStorageKey(cfg.GetStorageKey())(s)
		WithStorageTimeout(cfg.GetStorageTimeout())(s)
	}
}

func NewSessionStore(storage Storage, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		storage: storage,
		key:     DefaultStorageKey,
		timeout: 2 * time.Second,
		logger:  nopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Key returns the storage key of the credential slot
func (s *SessionStore) Key() string {
	return s.key
}

// Set persists credential, replacing any prior value. No validation is done.
func (s *SessionStore) Set(credential string) {
	if s.storage == nil {
		return
	}

	ctx, cancel := s.context()
	defer cancel()

	if err := s.storage.Write(ctx, s.key, credential); err != nil {
		s.logger.Debug("session store write failed, keeping previous value", "key", s.key, "error", err)
	}
}

// Get returns the stored credential, if any
func (s *SessionStore) Get() (string, bool) {
	if s.storage == nil {
		return "", false
	}

	ctx, cancel := s.context()
	defer cancel()

	val, ok, err := s.storage.Read(ctx, s.key)
	if err != nil {
		s.logger.Debug("session store read failed, treating as absent", "key", s.key, "error", err)
		return "", false
	}

	if !ok || val == "" {
		return "", false
	}

	return val, true
}

// Clear removes the stored credential
func (s *SessionStore) Clear() {
	if s.storage == nil {
		return
	}

	ctx, cancel := s.context()
	defer cancel()

	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.logger.Debug("session store delete failed, keeping previous value", "key", s.key, "error", err)
	}
}

func (s *SessionStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
