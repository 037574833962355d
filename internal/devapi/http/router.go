package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/service"
	"github.com/aussiebroadwan/lessondesk/internal/devapi/store"
	"github.com/aussiebroadwan/lessondesk/pkg/httpx"
	"github.com/aussiebroadwan/lessondesk/pkg/jwtx"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	TokenService  *service.TokenService
	UserService   *service.UserService
	LessonService *service.LessonService

	// Readiness dependencies.
	Store store.Store
	Keys  *jwtx.KeySet
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTokens()
	r.registerUsers()
	r.registerStudents()
	r.registerCourses()
	r.registerSystem()
}

// ServeHTTP applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerTokens() {
	// Credential exchange: limited per IP and username against guessing.
	r.Mux.Handle("POST /api/token/",
		httpx.Chain(&TokenHandler{TokenService: r.TokenService},
			httpx.RateLimitByIPAndJSONField(httpx.LoginLimit, "username"),
		),
	)

	r.Mux.Handle("POST /api/token/refresh/",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.RefreshLimit),
		),
	)
}

// secured requires a valid access token, and one of roles when given.
func (r *Router) secured(h http.Handler, roles ...session.Role) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}
	if len(roles) > 0 {
		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		mws = append(mws, httpx.RequireRole(names...))
	}
	mws = append(mws, httpx.RateLimitByUser(httpx.APILimit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerUsers() {
	r.Mux.Handle("GET /api/users/me/", r.secured(&MeHandler{UserService: r.UserService}))
}

func (r *Router) registerStudents() {
	h := &StudentsHandler{LessonService: r.LessonService}
	r.Mux.Handle("GET /api/students/", r.secured(http.HandlerFunc(h.List)))
	r.Mux.Handle("POST /api/students/", r.secured(http.HandlerFunc(h.Create)))
}

func (r *Router) registerCourses() {
	h := &CoursesHandler{LessonService: r.LessonService}
	r.Mux.Handle("GET /api/courses/", r.secured(http.HandlerFunc(h.List)))
	r.Mux.Handle("POST /api/courses/", r.secured(http.HandlerFunc(h.Create), session.RoleAdmin))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Store, r.Keys))
}
