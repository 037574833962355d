package session_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := session.NewMemoryStore()

	t.Run("empty store", func(t *testing.T) {
		_, err := st.User(ctx)
		require.ErrorIs(t, err, session.ErrNoSession)

		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Empty(t, tok.Access)
		require.Empty(t, tok.Refresh)
	})

	t.Run("set and read back", func(t *testing.T) {
		require.NoError(t, st.SetUser(ctx, session.User{Username: "marina", Role: session.RoleTeacher}))
		require.NoError(t, st.SetTokens(ctx, session.Tokens{Access: "a", Refresh: "r"}))

		u, err := st.User(ctx)
		require.NoError(t, err)
		require.Equal(t, "marina", u.Username)
		require.Equal(t, session.RoleTeacher, u.Role)

		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{Access: "a", Refresh: "r"}, tok)
	})

	t.Run("access token swap keeps refresh token", func(t *testing.T) {
		require.NoError(t, st.SetAccessToken(ctx, "a2"))

		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{Access: "a2", Refresh: "r"}, tok)
	})

	t.Run("logout clears everything and is idempotent", func(t *testing.T) {
		require.NoError(t, st.Logout(ctx))
		require.NoError(t, st.Logout(ctx))

		_, err := st.User(ctx)
		require.ErrorIs(t, err, session.ErrNoSession)

		tok, err := st.Tokens(ctx)
		require.NoError(t, err)
		require.Equal(t, session.Tokens{}, tok)
	})
}
