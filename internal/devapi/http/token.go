package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/service"
	"github.com/aussiebroadwan/lessondesk/pkg/httpx"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// TokenHandler serves POST /api/token/.
type TokenHandler struct {
	TokenService *service.TokenService
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tokenRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	fe := httpx.FieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		fe.Add("username", "This field is required.")
	}
	if req.Password == "" {
		fe.Add("password", "This field is required.")
	}
	if !fe.Empty() {
		httpx.WriteFieldErrors(w, fe)
		return
	}

	pair, err := h.TokenService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteDetail(w, http.StatusUnauthorized,
				"No active account found with the given credentials", "no_active_account")
			return
		}
		log.Error("login failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}

// RefreshHandler serves POST /api/token/refresh/.
type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Refresh) == "" {
		httpx.WriteFieldErrors(w, httpx.FieldErrors{"refresh": {"This field is required."}})
		return
	}

	access, err := h.TokenService.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteDetail(w, http.StatusUnauthorized, "Token is invalid or expired", "token_not_valid")
			return
		}
		log.Error("refresh failed", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, refreshResponse{Access: access})
}
