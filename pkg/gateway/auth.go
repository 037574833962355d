package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// Login exchanges credentials for a token pair, stores it, then loads the
// user behind it. If the user cannot be loaded the half-made session is
// cleared again and the error returned.
//
// Wrong credentials come back as *APIError; a 401 from the token endpoint
// is a refusal, not an expired session.
func (g *Gateway) Login(ctx context.Context, username, password string) (session.User, error) {
	log := slogx.FromContextOr(ctx, g.logger)

	resp, err := g.postJSON(ctx, g.paths.Token, credentialsRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return session.User{}, err
	}

	pair, err := decodeJSON[tokenPairResponse](resp)
	if err != nil {
		return session.User{}, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return session.User{}, fmt.Errorf("%w: token pair incomplete", ErrMalformedResponse)
	}

	if err := g.store.SetTokens(ctx, session.Tokens{Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		return session.User{}, fmt.Errorf("store tokens: %w", err)
	}

	user, err := g.loadUser(ctx)
	if err != nil {
		return session.User{}, errors.Join(err, g.teardown(ctx))
	}

	if err := g.store.SetUser(ctx, user); err != nil {
		return session.User{}, errors.Join(fmt.Errorf("store user: %w", err), g.teardown(ctx))
	}

	log.InfoContext(ctx, "logged in", "username", user.Username, "role", user.Role)
	return user, nil
}

func (g *Gateway) loadUser(ctx context.Context) (session.User, error) {
	res, err := Get[session.User](ctx, g, g.paths.UserInfo)
	if err != nil {
		return session.User{}, fmt.Errorf("load user: %w", err)
	}
	user, ok := res.Value()
	if !ok {
		return session.User{}, ErrSessionExpired
	}
	if user.Username == "" {
		return session.User{}, fmt.Errorf("%w: user without username", ErrMalformedResponse)
	}
	return user, nil
}

// Logout clears the session. Calling it without a session is a no-op.
func (g *Gateway) Logout(ctx context.Context) error {
	if err := g.teardown(ctx); err != nil {
		return err
	}
	slogx.FromContextOr(ctx, g.logger).DebugContext(ctx, "logged out")
	return nil
}

// CurrentUser returns the stored user or session.ErrNoSession.
func (g *Gateway) CurrentUser(ctx context.Context) (session.User, error) {
	return g.store.User(ctx)
}
