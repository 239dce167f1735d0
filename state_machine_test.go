package portal

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-student-portal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T, initial string) (*AuthContext, *memStorage) {
	t.Helper()
	mem := newMemStorage()
	if initial != "" {
		mem.values[DefaultStorageKey] = initial
	}
	return NewAuthContext(NewSessionStore(mem), WithAuthLogger(nopLogger{})), mem
}

func TestAuthContext_InitialState(t *testing.T) {
	ac, _ := newTestAuth(t, "")
	assert.Equal(t, StateAnonymous, ac.State())
	assert.False(t, ac.IsAuthenticated())

	ac, _ = newTestAuth(t, "stored.token")
	assert.Equal(t, StateAuthenticated, ac.State())
	assert.True(t, ac.IsAuthenticated())
}

func TestAuthContext_LoginLogout(t *testing.T) {
	ac, mem := newTestAuth(t, "")

	state := ac.Login("a.b.c")
	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, "a.b.c", mem.values[DefaultStorageKey])

	cred, ok := ac.Credential()
	assert.True(t, ok)
	assert.Equal(t, "a.b.c", cred)

	state = ac.Logout()
	assert.Equal(t, StateAnonymous, state)
	assert.NotContains(t, mem.values, DefaultStorageKey)

	_, ok = ac.Credential()
	assert.False(t, ok)
}

func TestAuthContext_LoginWithEmptyCredentialStaysAnonymous(t *testing.T) {
	ac, _ := newTestAuth(t, "")

	assert.Equal(t, StateAnonymous, ac.Login(""))
}

func TestAuthContext_ListenersRunInOrderOnChange(t *testing.T) {
	ac, _ := newTestAuth(t, "")

	var calls []string
	ac.Subscribe(func(from, to AuthState) {
		calls = append(calls, "first:"+from.String()+"->"+to.String())
	})
	ac.Subscribe(func(from, to AuthState) {
		calls = append(calls, "second:"+from.String()+"->"+to.String())
	})

	ac.Login("t1")
	require.Equal(t, []string{
		"first:anonymous->authenticated",
		"second:anonymous->authenticated",
	}, calls)

	// already authenticated, no transition
	ac.Login("t2")
	assert.Len(t, calls, 2)

	ac.Logout()
	assert.Equal(t, "first:authenticated->anonymous", calls[2])
	assert.Equal(t, "second:authenticated->anonymous", calls[3])

	ac.Logout()
	assert.Len(t, calls, 4)
}

func TestAuthContext_Unsubscribe(t *testing.T) {
	ac, _ := newTestAuth(t, "")

	count := 0
	unsubscribe := ac.Subscribe(func(from, to AuthState) {
		count++
	})

	ac.Login("t")
	unsubscribe()
	unsubscribe()
	ac.Logout()

	assert.Equal(t, 1, count)

	assert.NotPanics(t, func() {
		ac.Subscribe(nil)()
	})
}

func TestAuthContext_Identity(t *testing.T) {
	ac, _ := newTestAuth(t, "")

	_, ok := ac.Identity()
	assert.False(t, ok)

	ac.Login(makeCredential(t, map[string]any{"nameid": "15", "given_name": "Ada", "family_name": "Lovelace"}))
	claims, ok := ac.Identity()
	require.True(t, ok)
	assert.Equal(t, "15", claims.SubjectID)
	assert.Equal(t, "Ada Lovelace", claims.FullName())

	// an undecodable credential still authenticates but carries no identity
	ac.Login("garbage")
	assert.True(t, ac.IsAuthenticated())
	_, ok = ac.Identity()
	assert.False(t, ok)
}

func TestAuthContext_StateFollowsStore(t *testing.T) {
	ac, mem := newTestAuth(t, "")

	ac.Login("a.b.c")
	require.True(t, ac.IsAuthenticated())

	// cleared by someone else sharing the slot
	delete(mem.values, DefaultStorageKey)
	assert.Equal(t, StateAnonymous, ac.State())
	assert.False(t, ac.IsAuthenticated())

	mem.values[DefaultStorageKey] = "x.y.z"
	assert.Equal(t, StateAuthenticated, ac.State())
}

func TestAuthContext_StateFollowsRedisExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := storage.OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	backend := storage.NewRedisStorage(client, storage.WithRedisTTL(time.Minute))
	ac := NewAuthContext(NewSessionStore(backend), WithAuthLogger(nopLogger{}))

	ac.Login("a.b.c")
	require.True(t, ac.IsAuthenticated())

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, StateAnonymous, ac.State())
	assert.False(t, ac.IsAuthenticated())
}

func TestAuthContext_ListenerCanReadState(t *testing.T) {
	ac, _ := newTestAuth(t, "")

	var seen AuthState
	var authenticated bool
	ac.Subscribe(func(from, to AuthState) {
		seen = ac.State()
		authenticated = ac.IsAuthenticated()
		ac.Subscribe(func(AuthState, AuthState) {})()
	})

	done := make(chan AuthState, 1)
	go func() {
		done <- ac.Login("a.b.c")
	}()

	select {
	case state := <-done:
		assert.Equal(t, StateAuthenticated, state)
	case <-time.After(2 * time.Second):
		t.Fatal("Login did not return while a listener read the state")
	}

	assert.Equal(t, StateAuthenticated, seen)
	assert.True(t, authenticated)
}
