/*
Package gateway performs authenticated calls against the LessonDesk course
API on behalf of the admin dashboard, the teacher portal and the parent
portal.

# Overview

Every data-fetching call goes through a single Gateway. It reads the
current token pair from a session.Store, attaches the access token as a
bearer credential, refreshes it when needed, and classifies the outcome.

	store := session.NewMemoryStore()
	gw := gateway.New("https://api.example.com", store)

	user, err := gw.Login(ctx, "coach.marina", "secret")

	res, err := gateway.Get[[]Student](ctx, gw, "/api/students/")
	if err != nil {
		// Validation errors, server errors, malformed bodies, network errors.
		return err
	}
	if res.Expired() {
		// The session could not be renewed and has been torn down.
		return redirectToLogin()
	}
	students, _ := res.Value()

# Token Refresh

Before a request is sent the access token's exp claim is decoded locally.
An expired (or undecodable) token is exchanged for a new one through
POST /api/token/refresh/ before the request goes out. If the server still
answers 401, the token is refreshed once more and the request is retried
exactly once. A call therefore refreshes at most twice and sends at most two
requests.

When a refresh is impossible (no refresh token) or rejected, the whole
session (user, access token, refresh token) is cleared from the store and
the call returns a SessionExpired result instead of an error.

Concurrent callers share one refresh: a caller waiting on the refresh lock
reuses the token minted by whoever held it, instead of spending the refresh
token a second time.

# Error Handling

Non-2xx responses other than 401 become *APIError. Django REST style bodies
such as {"username": ["already exists"]} are joined into a readable message
("username: already exists"); anything else falls back to the raw response
text, then to a generic status message.

	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.StatusCode, apiErr.Message)
	}

Successful bodies that do not decode into the requested type return
ErrMalformedResponse; they are never coerced into a zero value.

# Thread Safety

A Gateway is safe for concurrent use by multiple goroutines, provided the
session.Store it wraps is.
*/
package gateway
