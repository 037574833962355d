package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/lessondesk/pkg/idx"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// maxResponseBody caps how much of a response is buffered.
const maxResponseBody = 10 << 20

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// send issues one HTTP request and reads the whole body. bearer is only
// attached when authorize is true, in which case an empty token still
// yields the "Bearer" scheme.
func (g *Gateway) send(
	ctx context.Context,
	method, path string,
	body []byte,
	contentType string,
	requestID string,
	authorize bool,
	bearer string,
) (*response, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(slogx.RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authorize {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &response{status: resp.StatusCode, body: data}, nil
}

// postJSON sends an unauthenticated JSON request. Used for the token
// endpoints, which must never carry a bearer.
func (g *Gateway) postJSON(ctx context.Context, path string, in any) (*response, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return g.send(ctx, http.MethodPost, path, body, "application/json", idx.New().String(), false, "")
}

func jsonBody(in any) ([]byte, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return body, nil
}

// decodeJSON turns a response into T. Non-2xx becomes *APIError; a 2xx body
// that does not decode is ErrMalformedResponse.
func decodeJSON[T any](resp *response) (T, error) {
	var out T
	if !resp.ok() {
		return out, parseErrorResponse(resp.status, resp.body)
	}
	if resp.status == http.StatusNoContent || len(bytes.TrimSpace(resp.body)) == 0 {
		if resp.status == http.StatusNoContent {
			return out, nil
		}
		return out, fmt.Errorf("%w: empty body with status %d", ErrMalformedResponse, resp.status)
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return out, nil
}
