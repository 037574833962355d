// Package session holds the client-side login state shared by every caller
// of the gateway: who is logged in and the token pair used for API calls.
package session

import (
	"context"
	"errors"
)

// Entry names used by durable stores.
const (
	EntryUser         = "user"
	EntryAccessToken  = "access_token"
	EntryRefreshToken = "refresh_token"
)

// ErrNoSession is returned by Store.User when nobody is logged in.
var ErrNoSession = errors.New("session: not logged in")

// Role is the portal a user belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

// User is the identity stored alongside the tokens.
type User struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Tokens is the bearer pair. Either field may be empty.
type Tokens struct {
	Access  string
	Refresh string
}

// Store is the single source of truth for the session. Implementations must
// be safe for concurrent use, and Logout must clear the user and both tokens
// together. A store that expires entries expires them as one unit: once any
// of the three is stale, User reports ErrNoSession and Tokens comes back
// empty.
type Store interface {
	// User returns the logged in user or ErrNoSession.
	User(ctx context.Context) (User, error)
	SetUser(ctx context.Context, u User) error

	// Tokens returns the current pair; missing entries come back empty.
	Tokens(ctx context.Context) (Tokens, error)
	SetTokens(ctx context.Context, t Tokens) error

	// SetAccessToken replaces only the access token. The refresh token and
	// the session expiry stay as they are.
	SetAccessToken(ctx context.Context, access string) error

	// Logout clears user, access token and refresh token. Idempotent.
	Logout(ctx context.Context) error
}
