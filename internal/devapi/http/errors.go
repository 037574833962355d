package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/service"
	"github.com/aussiebroadwan/lessondesk/pkg/httpx"
	"github.com/aussiebroadwan/lessondesk/pkg/jwtx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

func writeServerError(w http.ResponseWriter) {
	httpx.WriteDetail(w, http.StatusInternalServerError, "A server error occurred.", "error")
}

// writeServiceError renders validation errors as a field mapping and logs
// anything else as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteFieldErrors(w, verr.Fields)
		return
	}
	slogx.FromContext(r.Context()).Error("request failed", "err", err)
	writeServerError(w)
}

// callerFrom reads the caller out of the verified token. AuthnMiddleware
// guarantees the claims are present on secured routes.
func callerFrom(r *http.Request) (service.Caller, jwtx.Claims) {
	claims, _ := httpx.ClaimsFromContext(r.Context())
	return service.Caller{Username: claims.Username, Role: session.Role(claims.Role)}, claims
}
