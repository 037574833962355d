package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lessondesk/pkg/session"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// tokenExpiringAt returns an HS256 JWT whose exp is exp. The gateway never
// verifies signatures, so any key will do.
func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func validToken(t *testing.T) string {
	return tokenExpiringAt(t, time.Now().Add(5*time.Minute))
}

func expiredToken(t *testing.T) string {
	return tokenExpiringAt(t, time.Now().Add(-time.Minute))
}

// fakeAPI is a scripted course API. Data requests are answered by onData;
// refresh requests mint a new valid token unless refreshStatus is set.
type fakeAPI struct {
	t *testing.T

	refreshStatus int
	refreshDelay  time.Duration
	onData        func(w http.ResponseWriter, r *http.Request, call int)

	refreshCalls atomic.Int32
	dataCalls    atomic.Int32

	mu      sync.Mutex
	bearers []string
	issued  []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{t: t, refreshStatus: http.StatusOK}
}

func (f *fakeAPI) start() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", f.handleRefresh)
	mux.HandleFunc("/api/", f.handleData)
	srv := httptest.NewServer(mux)
	f.t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)

	assert.Empty(f.t, r.Header.Get("Authorization"))

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	if f.refreshDelay > 0 {
		select {
		case <-time.After(f.refreshDelay):
		case <-r.Context().Done():
			return
		}
	}

	if f.refreshStatus != http.StatusOK {
		writeJSON(w, f.refreshStatus, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		ID:        strconv.Itoa(int(f.refreshCalls.Load())),
	}).SignedString([]byte("test-key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	f.mu.Lock()
	f.issued = append(f.issued, access)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, refreshResponse{Access: access})
}

func (f *fakeAPI) handleData(w http.ResponseWriter, r *http.Request) {
	call := int(f.dataCalls.Add(1))

	f.mu.Lock()
	f.bearers = append(f.bearers, r.Header.Get("Authorization"))
	f.mu.Unlock()

	if f.onData == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	f.onData(w, r, call)
}

func (f *fakeAPI) lastIssued() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.issued) == 0 {
		return ""
	}
	return f.issued[len(f.issued)-1]
}

func (f *fakeAPI) seenBearers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bearers...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// seededStore returns a memory store holding a logged in parent.
func seededStore(t *testing.T, access, refresh string) *session.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.SetUser(ctx, session.User{Username: "parent.jo", Role: session.RoleParent}))
	require.NoError(t, store.SetTokens(ctx, session.Tokens{Access: access, Refresh: refresh}))
	return store
}

func newTestGateway(srv *httptest.Server, store session.Store, opts ...Option) *Gateway {
	opts = append([]Option{WithLogger(slogx.Discard())}, opts...)
	return New(srv.URL, store, opts...)
}

// requireTornDown asserts that user and both tokens are gone.
func requireTornDown(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.User(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)

	tokens, err := store.Tokens(ctx)
	require.NoError(t, err)
	require.Empty(t, tokens.Access)
	require.Empty(t, tokens.Refresh)
}

func bearerOf(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
