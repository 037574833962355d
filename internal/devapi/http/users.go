package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/service"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
	"github.com/aussiebroadwan/lessondesk/pkg/httpx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// MeHandler serves GET /api/users/me/ with the session.User shape the
// client stores.
type MeHandler struct {
	UserService *service.UserService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, claims := callerFrom(r)

	user, err := h.UserService.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteDetail(w, http.StatusUnauthorized, "User not found", "user_not_found")
			return
		}
		slogx.FromContext(ctx).Warn("failed to load user", "user_id", claims.Subject, "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, session.User{Username: user.Username, Role: user.Role})
}
