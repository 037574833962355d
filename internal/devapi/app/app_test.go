package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Issuer:               "lessondesk-test",
		AccessTTL:            time.Minute,
		RefreshTTL:           time.Hour,
		DBPath:               filepath.Join(dir, "devapi.db"),
		SigningKeyFile:       filepath.Join(dir, "signing.pem"),
		PepperFile:           filepath.Join(dir, "pepper"),
		AdminUsername:        "admin",
		AdminPassword:        "admin-pw",
		DemoUsers:            true,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		Port:                 0,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func login(t *testing.T, h http.Handler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/token/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServesSeededAccounts(t *testing.T) {
	cfg := testConfig(t)
	app, err := New(cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	for _, acct := range [][2]string{{"admin", "admin-pw"}, {"teacher", "teacher"}, {"parent", "parent"}} {
		rec := login(t, app.Handler(), acct[0], acct[1])
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var pair struct{ Access, Refresh string }
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		require.NotEmpty(t, pair.Access)
		require.NotEmpty(t, pair.Refresh)
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewReopensDatabase(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg, io.Discard)
	require.NoError(t, err)
	require.NoError(t, first.db.Close())

	// Seeding is idempotent; the persisted pepper still verifies the stored hash.
	second, err := New(cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.db.Close() })

	rec := login(t, second.Handler(), "admin", "admin-pw")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DEVAPI_ISSUER", "DEVAPI_ACCESS_TTL", "DEVAPI_DB_PATH", "DEVAPI_DEMO_USERS", "PORT"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()
	require.Equal(t, "lessondesk-devapi", cfg.Issuer)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Empty(t, cfg.DBPath)
	require.True(t, cfg.DemoUsers)
	require.Equal(t, 8000, cfg.Port)

	t.Setenv("DEVAPI_ACCESS_TTL", "2")
	t.Setenv("DEVAPI_DEMO_USERS", "false")
	t.Setenv("PORT", "9001")
	cfg = LoadConfig()
	require.Equal(t, 2*time.Minute, cfg.AccessTTL)
	require.False(t, cfg.DemoUsers)
	require.Equal(t, 9001, cfg.Port)
}
