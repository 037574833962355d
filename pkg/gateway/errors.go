package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	// ErrMalformedResponse is returned when a 2xx body does not decode into
	// the requested type.
	ErrMalformedResponse = errors.New("gateway: malformed response body")

	// ErrRefreshFailed wraps every reason a refresh exchange did not produce
	// a new access token.
	ErrRefreshFailed = errors.New("gateway: token refresh failed")

	// ErrNoRefreshToken means there was nothing to exchange.
	ErrNoRefreshToken = errors.New("gateway: no refresh token")

	// ErrSessionExpired is used by Login when the fresh token pair is
	// rejected before the user could be loaded.
	ErrSessionExpired = errors.New("gateway: session expired")
)

// maxRawMessage bounds how much of an unstructured body ends up in a message.
const maxRawMessage = 512

// messageOnlyFields are rendered without a "field:" prefix.
var messageOnlyFields = map[string]bool{
	"detail":           true,
	"non_field_errors": true,
}

// APIError is a non-2xx, non-401 response from the course API.
type APIError struct {
	StatusCode int

	// Message is human readable and safe to show in a toast.
	Message string

	// Fields holds per-field messages when the body was a validation mapping.
	Fields map[string][]string
}

func (e *APIError) Error() string {
	return e.Message
}

// parseErrorResponse builds an APIError from a status code and raw body.
// Order of preference: field mapping, raw text, generic status message.
func parseErrorResponse(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	if fields := parseFieldErrors(body); len(fields) > 0 {
		if msg := joinFieldErrors(fields); msg != "" {
			apiErr.Fields = fields
			apiErr.Message = msg
			return apiErr
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Message = truncate(text, maxRawMessage)
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("request failed with status %d (%s)", status, http.StatusText(status))
	return apiErr
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// parseFieldErrors accepts {"field": ["msg", ...]} and tolerates plain
// string values ({"detail": "msg"}). Null and empty values are skipped.
// Returns nil when nothing usable is left.
func parseFieldErrors(body []byte) map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil
	}

	// {"detail": "...", "code": "token_not_valid"}: code is for machines.
	if _, ok := raw["detail"]; ok {
		var code string
		if json.Unmarshal(raw["code"], &code) == nil {
			delete(raw, "code")
		}
	}

	fields := make(map[string][]string, len(raw))
	for field, value := range raw {
		if msgs := fieldMessages(value); len(msgs) > 0 {
			fields[field] = msgs
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func fieldMessages(value json.RawMessage) []string {
	var list []any
	var single string
	switch {
	case strings.TrimSpace(string(value)) == "null":
		return nil
	case json.Unmarshal(value, &single) == nil:
		if strings.TrimSpace(single) == "" {
			return nil
		}
		return []string{single}
	case json.Unmarshal(value, &list) == nil:
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case nil:
			case string:
				if strings.TrimSpace(v) != "" {
					msgs = append(msgs, v)
				}
			default:
				b, _ := json.Marshal(v)
				msgs = append(msgs, string(b))
			}
		}
		return msgs
	default:
		return []string{string(value)}
	}
}

func joinFieldErrors(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		msg := strings.Join(fields[name], ", ")
		if messageOnlyFields[name] {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, name+": "+msg)
	}
	return strings.Join(parts, "; ")
}
