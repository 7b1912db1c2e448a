package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "gate-test-secret"

type gateProfileRepo struct {
	isAdmin   map[string]bool
	lookupErr error
}

func newGateProfileRepo() *gateProfileRepo {
	return &gateProfileRepo{isAdmin: make(map[string]bool)}
}

func (f *gateProfileRepo) GetByID(ctx context.Context, id string) (types.Profile, error) {
	return types.Profile{ID: id}, nil
}

func (f *gateProfileRepo) IsAdmin(ctx context.Context, id string) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	isAdmin, ok := f.isAdmin[id]
	if !ok {
		return false, store.ErrNotFound
	}
	return isAdmin, nil
}

func (f *gateProfileRepo) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	return nil
}

func (f *gateProfileRepo) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	return nil
}

func (f *gateProfileRepo) SetAdminByEmail(ctx context.Context, email string, isAdmin bool) error {
	return nil
}

func (f *gateProfileRepo) ListAvatarURLs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *gateProfileRepo) Count(ctx context.Context) (int, error) {
	return 0, nil
}

func newTestGate(repo *gateProfileRepo) *Gate {
	return NewGate(testSecret, services.NewProfileService(repo))
}

// okHandler records whether the gate let the request through and what
// principal arrived in context.
func okHandler(t *testing.T, sawUser *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := userIDFromContext(r.Context()); err == nil {
			*sawUser = userID
		}
		w.WriteHeader(http.StatusOK)
	})
}

func sessionCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	token, err := issueToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func serveGate(t *testing.T, gate *Gate, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var sawUser string
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	gate.Middleware(okHandler(t, &sawUser)).ServeHTTP(rec, req)
	return rec, sawUser
}

func TestGateHomeWithoutSessionRedirectsToLogin(t *testing.T) {
	gate := newTestGate(newGateProfileRepo())

	rec, _ := serveGate(t, gate, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGateHomeWithSessionPasses(t *testing.T) {
	gate := newTestGate(newGateProfileRepo())

	rec, sawUser := serveGate(t, gate, "/", sessionCookie(t, "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", sawUser)
}

func TestGateGarbageCookieIsAnonymous(t *testing.T) {
	gate := newTestGate(newGateProfileRepo())

	rec, _ := serveGate(t, gate, "/", &http.Cookie{Name: sessionCookieName, Value: "not-a-token"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGateWrongKeyCookieIsAnonymous(t *testing.T) {
	gate := newTestGate(newGateProfileRepo())

	token, err := issueToken("user-1", []byte("some-other-secret"), time.Hour)
	require.NoError(t, err)

	rec, _ := serveGate(t, gate, "/", &http.Cookie{Name: sessionCookieName, Value: token})
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestGateAdminWithoutSessionRedirectsToLogin(t *testing.T) {
	gate := newTestGate(newGateProfileRepo())

	rec, _ := serveGate(t, gate, "/admin/stats", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGateAdminNonAdminRedirectsHome(t *testing.T) {
	repo := newGateProfileRepo()
	repo.isAdmin["user-1"] = false
	gate := newTestGate(repo)

	rec, _ := serveGate(t, gate, "/admin/stats", sessionCookie(t, "user-1"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestGateAdminGrantedPasses(t *testing.T) {
	repo := newGateProfileRepo()
	repo.isAdmin["user-1"] = true
	gate := newTestGate(repo)

	rec, sawUser := serveGate(t, gate, "/admin/stats", sessionCookie(t, "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", sawUser)
}

func TestGateAdminLookupErrorDenies(t *testing.T) {
	repo := newGateProfileRepo()
	repo.isAdmin["user-1"] = true
	repo.lookupErr = errors.New("connection reset")
	gate := newTestGate(repo)

	rec, _ := serveGate(t, gate, "/admin/stats", sessionCookie(t, "user-1"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestGateRevokedAdminDeniedNextRequest(t *testing.T) {
	repo := newGateProfileRepo()
	repo.isAdmin["user-1"] = true
	gate := newTestGate(repo)
	cookie := sessionCookie(t, "user-1")

	rec, _ := serveGate(t, gate, "/admin/stats", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	repo.isAdmin["user-1"] = false

	rec, _ = serveGate(t, gate, "/admin/stats", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestGateRefreshesCookieOnPassAndRedirect(t *testing.T) {
	repo := newGateProfileRepo()
	repo.isAdmin["user-1"] = false
	gate := newTestGate(repo)

	// Pass-through response.
	rec, _ := serveGate(t, gate, "/media", sessionCookie(t, "user-1"))
	assert.NotEmpty(t, findSessionCookie(t, rec))

	// Redirect response carries the refreshed cookie too, so being
	// bounced off an admin page does not log the user out.
	rec, _ = serveGate(t, gate, "/admin/stats", sessionCookie(t, "user-1"))
	require.Equal(t, http.StatusFound, rec.Code)
	refreshed := findSessionCookie(t, rec)
	require.NotEmpty(t, refreshed)

	userID, err := parseTokenSubject(refreshed, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestGateNoCookieForAnonymous(t *testing.T) {
	gate := newTestGate(newGateProfileRepo())

	rec, _ := serveGate(t, gate, "/media", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, findSessionCookie(t, rec))
}

func TestGateSkipsStaticPaths(t *testing.T) {
	gate := newTestGate(newGateProfileRepo())

	for _, path := range []string{"/favicon.ico", "/healthz", "/static/app.js", "/logo.png", "/hero.webp"} {
		rec, _ := serveGate(t, gate, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s should bypass the gate", path)
	}
}

func findSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie.Value
		}
	}
	return ""
}
