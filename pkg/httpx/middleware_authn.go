package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lessondesk/pkg/jwtx"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// AuthnMiddleware requires a valid access token. Failures answer 401 in the
// shape the course API clients expect:
//
//	{"detail": "Given token not valid for any token type", "code": "token_not_valid"}
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "Authentication credentials were not provided.", "not_authenticated")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				if !errors.Is(err, jwtx.ErrExpired) {
					log.Warn("access token rejected", "err", err)
				}
				writeUnauthorized(w, "Given token not valid for any token type", "token_not_valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(ctx, claims)))
		})
	}
}

// bearerToken returns the credential of an "Authorization: Bearer x"
// header. A bare "Bearer" counts as missing.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, _ := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, detail, code string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	WriteDetail(w, http.StatusUnauthorized, detail, code)
}
