package portal

import (
	"slices"
	"sync"
)

// AuthState is the derived authentication state of the process
type AuthState string

const (
	StateAnonymous     AuthState = "anonymous"
	StateAuthenticated AuthState = "authenticated"
)

func (s AuthState) String() string {
	return string(s)
}

// StateListener observes AuthContext transitions
type StateListener func(from, to AuthState)

// AuthContext is the process wide authentication state. The state is never
// stored on its own: every read recomputes it from the SessionStore, so a
// credential that expires or is cleared behind the store is seen at once.
type AuthContext struct {
	// transitionMu serializes Login and Logout
	transitionMu sync.Mutex
	// mu guards listeners and notified
	mu    sync.Mutex
	store *SessionStore
	// notified is the state listeners were last told about
	notified  AuthState
	listeners []*listenerEntry
	logger    Logger
}

type listenerEntry struct {
	fn StateListener
}

type AuthContextOption func(*AuthContext)

func WithAuthLogger(logger Logger) AuthContextOption {
	return func(a *AuthContext) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAuthContext records the initial state listeners are compared against
func NewAuthContext(store *SessionStore, opts ...AuthContextOption) *AuthContext {
	a := &AuthContext{
		store:  store,
		logger: defLogger{},
	}

	for _, opt := range opts {
		opt(a)
	}

	a.notified = a.derive()

	return a
}

// State reads the SessionStore and returns the derived state
func (a *AuthContext) State() AuthState {
	return a.derive()
}

func (a *AuthContext) IsAuthenticated() bool {
	return a.State() == StateAuthenticated
}

// Login stores credential and moves to Authenticated. Listeners have been
// notified by the time Login returns.
func (a *AuthContext) Login(credential string) AuthState {
	a.transitionMu.Lock()
	defer a.transitionMu.Unlock()

	a.store.Set(credential)
	return a.transition("login")
}

// Logout clears the credential and moves to Anonymous
func (a *AuthContext) Logout() AuthState {
	a.transitionMu.Lock()
	defer a.transitionMu.Unlock()

	a.store.Clear()
	return a.transition("logout")
}

// Credential returns the stored credential, if any
func (a *AuthContext) Credential() (string, bool) {
	return a.store.Get()
}

// Identity decodes the stored credential. A missing or undecodable
// credential yields zero Claims and false.
func (a *AuthContext) Identity() (Claims, bool) {
	credential, ok := a.store.Get()
	if !ok {
		return Claims{}, false
	}

	claims, err := DecodeCredential(credential)
	if err != nil {
		a.logger.Debug("credential decode failed", "error", err)
		return Claims{}, false
	}

	return claims, true
}

// Subscribe registers fn for state changes. Listeners run synchronously
// before Login or Logout returns. They may read the state or subscribe,
// but must not call Login or Logout.
func (a *AuthContext) Subscribe(fn StateListener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	entry := &listenerEntry{fn: fn}

	a.mu.Lock()
	a.listeners = append(a.listeners, entry)
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			for i, l := range a.listeners {
				if l == entry {
					a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

func (a *AuthContext) derive() AuthState {
	if _, ok := a.store.Get(); ok {
		return StateAuthenticated
	}
	return StateAnonymous
}

// transition must be called with transitionMu held. Listeners run after
// mu is released.
func (a *AuthContext) transition(event string) AuthState {
	to := a.derive()

	a.mu.Lock()
	from := a.notified
	a.notified = to
	listeners := slices.Clone(a.listeners)
	a.mu.Unlock()

	if from == to {
		return to
	}

	a.logger.Info("auth state changed", "event", event, "from", from, "to", to)

	for _, l := range listeners {
		l.fn(from, to)
	}

	return to
}
