package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as JSON with status code. Responses are never cached:
// most of them carry tokens or personal data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Detail is the body of a non-validation error.
type Detail struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// WriteDetail writes {"detail": msg, "code": code}.
func WriteDetail(w http.ResponseWriter, status int, msg, code string) {
	WriteJSON(w, status, Detail{Detail: msg, Code: code})
}

// FieldErrors maps a field name to its validation messages.
type FieldErrors map[string][]string

// Add appends msg to field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// WriteFieldErrors writes a 400 with {"field": ["message", ...]}.
func WriteFieldErrors(w http.ResponseWriter, fe FieldErrors) {
	WriteJSON(w, http.StatusBadRequest, fe)
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
// On failure it writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error(), "parse_error")
		return false
	}
	return true
}
