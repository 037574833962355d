package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/lessondesk/pkg/jwtx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// refresh exchanges the stored refresh token for a new access token and
// returns it. stale is the access token the caller found unusable.
//
// Concurrent callers queue on refreshMu. Whoever gets the lock second sees
// that the stored token is no longer stale and reuses it, so a burst of
// 401s costs one exchange.
//
// Only the access token is replaced, so a refresh never extends the session.
// A rejected or failed exchange clears both tokens. A cancelled ctx does not:
// the caller gave up, the server never said no.
func (g *Gateway) refresh(ctx context.Context, stale, requestID string) (string, error) {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	log := slogx.FromContextOr(ctx, g.logger)

	tokens, err := g.store.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("read tokens: %w", err)
	}

	if tokens.Access != "" && tokens.Access != stale && !jwtx.IsExpired(tokens.Access, g.now()) {
		log.DebugContext(ctx, "reusing token refreshed by a concurrent call")
		return tokens.Access, nil
	}

	if tokens.Refresh == "" {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoRefreshToken)
	}

	access, err := g.exchangeRefresh(ctx, tokens.Refresh, requestID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.InfoContext(ctx, "token refresh rejected", "error", err)
		if clearErr := g.store.SetTokens(ctx, session.Tokens{}); clearErr != nil {
			return "", errors.Join(fmt.Errorf("%w: %w", ErrRefreshFailed, err), clearErr)
		}
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	if err := g.store.SetAccessToken(ctx, access); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	log.DebugContext(ctx, "access token refreshed")
	return access, nil
}

func (g *Gateway) exchangeRefresh(ctx context.Context, refreshToken, requestID string) (string, error) {
	body, err := jsonBody(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := g.send(ctx, http.MethodPost, g.paths.Refresh, body, "application/json", requestID, false, "")
	if err != nil {
		return "", err
	}

	out, err := decodeJSON[refreshResponse](resp)
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("%w: missing access token", ErrMalformedResponse)
	}
	return out.Access, nil
}
