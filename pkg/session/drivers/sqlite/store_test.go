package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/session/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openStore(t *testing.T, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "session.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openStore(t)

	_, err := st.User(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, st.SetUser(ctx, session.User{Username: "admin", Role: session.RoleAdmin}))
	require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "acc", Refresh: "ref"}))

	u, err := st.User(ctx)
	require.NoError(t, err)
	require.Equal(t, session.User{Username: "admin", Role: session.RoleAdmin}, u)

	tok, err := st.Tokens(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Tokens{Access: "acc", Refresh: "ref"}, tok)

	t.Run("empty value removes entry", func(t *testing.T) {
		require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "acc2"}))
		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{Access: "acc2"}, tok)
	})
}

func TestStoreLogoutClearsAllEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openStore(t)

	require.NoError(t, st.SetUser(ctx, session.User{Username: "p", Role: session.RoleParent}))
	require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "a", Refresh: "r"}))

	require.NoError(t, st.Logout(ctx))
	require.NoError(t, st.Logout(ctx), "logout must be idempotent")

	_, err := st.User(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)
	tok, err := st.Tokens(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Tokens{}, tok)
}

func TestStoreEntriesExpire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	t0 := time.Unix(1700000000, 0)

	login := func(t *testing.T, st *sqlite.Store, name string) {
		t.Helper()
		require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "a", Refresh: "r"}))
		require.NoError(t, st.SetUser(ctx, session.User{Username: name, Role: session.RoleTeacher}))
	}

	requireNoSession := func(t *testing.T, st *sqlite.Store) {
		t.Helper()
		_, err := st.User(ctx)
		require.ErrorIs(t, err, session.ErrNoSession)
		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{}, tok)
	}

	t.Run("access token swap keeps the session expiry", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: t0}
		st := openStore(t, sqlite.WithClock(clock.Now), sqlite.WithTTL(time.Hour))
		login(t, st, "marina")

		clock.Advance(50 * time.Minute)
		require.NoError(t, st.SetAccessToken(ctx, "a2"))

		clock.Advance(5 * time.Minute)
		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{Access: "a2", Refresh: "r"}, tok)
		u, err := st.User(ctx)
		require.NoError(t, err)
		require.Equal(t, "marina", u.Username)

		clock.Advance(10 * time.Minute)
		requireNoSession(t, st)

		n, err := st.DeleteExpired(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 3, n)
	})

	t.Run("one stale entry ends the whole session", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: t0}
		st := openStore(t, sqlite.WithClock(clock.Now), sqlite.WithTTL(time.Hour))
		require.NoError(t, st.SetUser(ctx, session.User{Username: "marina", Role: session.RoleTeacher}))

		clock.Advance(30 * time.Minute)
		require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "a", Refresh: "r"}))

		clock.Advance(45 * time.Minute)
		requireNoSession(t, st)
	})

	t.Run("new login drops the stale session", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: t0}
		st := openStore(t, sqlite.WithClock(clock.Now), sqlite.WithTTL(time.Hour))
		require.NoError(t, st.SetUser(ctx, session.User{Username: "old", Role: session.RoleParent}))

		clock.Advance(2 * time.Hour)
		require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "a", Refresh: "r"}))

		_, err := st.User(ctx)
		require.ErrorIs(t, err, session.ErrNoSession, "stale user must not come back")
		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{Access: "a", Refresh: "r"}, tok)

		require.NoError(t, st.SetUser(ctx, session.User{Username: "new", Role: session.RoleParent}))
		u, err := st.User(ctx)
		require.NoError(t, err)
		require.Equal(t, "new", u.Username)
	})

	t.Run("access token without refresh token gets its own window", func(t *testing.T) {
		t.Parallel()
		clock := &fakeClock{now: t0}
		st := openStore(t, sqlite.WithClock(clock.Now), sqlite.WithTTL(time.Hour))
		require.NoError(t, st.SetAccessToken(ctx, "a"))

		clock.Advance(59 * time.Minute)
		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{Access: "a"}, tok)

		require.NoError(t, st.SetAccessToken(ctx, ""))
		tok, err = st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{}, tok)
	})
}

func TestStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	st, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "a", Refresh: "r"}))
	require.NoError(t, st.Close())

	st, err = sqlite.Open(path)
	require.NoError(t, err)
	defer st.Close()

	tok, err := st.Tokens(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Tokens{Access: "a", Refresh: "r"}, tok)
}
