package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/lessondesk/pkg/idx"
	"github.com/aussiebroadwan/lessondesk/pkg/jwtx"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// maxAttempts is the first send plus one retry after a reactive refresh.
const maxAttempts = 2

// Do performs req and decodes a 2xx body into T.
//
// The returned Result is SessionExpired when the session could not be kept
// alive; the store has been cleared by then. Any other failure is an error:
// *APIError for non-2xx responses, ErrMalformedResponse for undecodable
// bodies, or a transport error.
func Do[T any](ctx context.Context, g *Gateway, req Request) (Result[T], error) {
	resp, expired, err := g.execute(ctx, req)
	if err != nil {
		return Result[T]{}, err
	}
	if expired {
		return SessionExpired[T](), nil
	}

	out, err := decodeJSON[T](resp)
	if err != nil {
		return Result[T]{}, err
	}
	return Ok(out), nil
}

func Get[T any](ctx context.Context, g *Gateway, path string) (Result[T], error) {
	return Do[T](ctx, g, Request{Method: http.MethodGet, Path: path})
}

func Post[T any](ctx context.Context, g *Gateway, path string, body any) (Result[T], error) {
	return Do[T](ctx, g, Request{Method: http.MethodPost, Path: path, Body: body})
}

func Put[T any](ctx context.Context, g *Gateway, path string, body any) (Result[T], error) {
	return Do[T](ctx, g, Request{Method: http.MethodPut, Path: path, Body: body})
}

func Patch[T any](ctx context.Context, g *Gateway, path string, body any) (Result[T], error) {
	return Do[T](ctx, g, Request{Method: http.MethodPatch, Path: path, Body: body})
}

func Delete[T any](ctx context.Context, g *Gateway, path string) (Result[T], error) {
	return Do[T](ctx, g, Request{Method: http.MethodDelete, Path: path})
}

// Upload sends form as multipart/form-data with POST.
func Upload[T any](ctx context.Context, g *Gateway, path string, form *Form) (Result[T], error) {
	return Do[T](ctx, g, Request{Method: http.MethodPost, Path: path, Form: form})
}

// execute runs the authenticated request loop. expired reports that the
// session was torn down and the endpoint result, if any, must be ignored.
func (g *Gateway) execute(ctx context.Context, req Request) (resp *response, expired bool, err error) {
	body, contentType, err := req.encode()
	if err != nil {
		return nil, false, err
	}

	requestID := idx.New().String()
	ctx = slogx.WithContext(ctx, slogx.FromContextOr(ctx, g.logger).With(
		"method", req.method(),
		"path", req.Path,
	))
	ctx = slogx.WithRequestID(ctx, requestID)
	log := slogx.FromContext(ctx)

	tokens, err := g.store.Tokens(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("read tokens: %w", err)
	}
	access := tokens.Access

	if access != "" && jwtx.IsExpired(access, g.now()) {
		log.DebugContext(ctx, "access token expired locally, refreshing")
		access, err = g.refresh(ctx, access, requestID)
		if err != nil {
			return g.expireOn(ctx, err)
		}
	}

	for attempt := range maxAttempts {
		resp, err = g.send(ctx, req.method(), req.Path, body, contentType, requestID, true, access)
		if err != nil {
			return nil, false, err
		}
		if resp.status != http.StatusUnauthorized {
			return resp, false, nil
		}

		if attempt == maxAttempts-1 {
			log.InfoContext(ctx, "request unauthorized after refresh")
			return nil, true, g.teardown(ctx)
		}

		log.DebugContext(ctx, "request unauthorized, refreshing")
		access, err = g.refresh(ctx, access, requestID)
		if err != nil {
			return g.expireOn(ctx, err)
		}
	}

	// unreachable: the loop returns on its last attempt
	return nil, true, g.teardown(ctx)
}

// expireOn turns a refresh failure into a teardown. Errors that are not a
// refusal from the server (cancellation, store failures) are passed through.
func (g *Gateway) expireOn(ctx context.Context, err error) (*response, bool, error) {
	if !errors.Is(err, ErrRefreshFailed) {
		return nil, false, err
	}
	slogx.FromContextOr(ctx, g.logger).InfoContext(ctx, "session expired", "error", err)
	return nil, true, g.teardown(ctx)
}

func (g *Gateway) teardown(ctx context.Context) error {
	if err := g.store.Logout(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
