package gateway

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"golang.org/x/time/rate"
)

// Paths are the auth endpoints of the course API.
type Paths struct {
	Token    string // credential exchange, returns access + refresh
	Refresh  string // refresh exchange, returns a new access token
	UserInfo string // identity of the token holder
}

// DefaultPaths match the course API routes.
var DefaultPaths = Paths{
	Token:    "/api/token/",
	Refresh:  "/api/token/refresh/",
	UserInfo: "/api/users/me/",
}

// Gateway wraps outbound API calls with bearer-token handling.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	paths      Paths
	logger     *slog.Logger
	limiter    *rate.Limiter
	now        func() time.Time

	// refreshMu serialises refresh exchanges across concurrent calls.
	refreshMu sync.Mutex
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

func WithPaths(p Paths) Option {
	return func(g *Gateway) { g.paths = p }
}

// WithRateLimit throttles outbound requests, refresh exchanges included, to
// rps requests per second with the given burst. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) {
		if rps <= 0 {
			g.limiter = nil
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// New creates a Gateway for baseURL backed by store.
func New(baseURL string, store session.Store, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		store:  store,
		paths:  DefaultPaths,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the session store the gateway reads and writes.
func (g *Gateway) Store() session.Store { return g.store }

func (g *Gateway) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.baseURL + path
}
