package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byID    map[string]types.User
	byEmail map[string]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]types.User),
		byEmail: make(map[string]types.User),
	}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User, profile types.Profile) (types.User, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return types.User{}, store.ErrDuplicate
	}
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func newAuthHandler(users *fakeUserRepo, profiles *gateProfileRepo) *AuthHandler {
	return NewAuthHandler(
		services.NewUserService(users),
		services.NewProfileService(profiles),
		testSecret,
	)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	handler := newAuthHandler(newFakeUserRepo(), newGateProfileRepo())

	rec := postJSON(t, handler.Register, "/auth/register", RegisterRequest{
		Email:       "Alice@Example.com",
		Password:    "hunter2hunter2",
		DisplayName: "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	cookie := findSessionCookie(t, rec)
	require.NotEmpty(t, cookie)
	userID, err := parseTokenSubject(cookie, []byte(testSecret))
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Empty(t, resp.User.PasswordHash, "hash must not leak in responses")
}

func TestRegisterMissingFields(t *testing.T) {
	handler := newAuthHandler(newFakeUserRepo(), newGateProfileRepo())

	rec := postJSON(t, handler.Register, "/auth/register", RegisterRequest{
		Email: "alice@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	users.byEmail["alice@example.com"] = types.User{ID: "user-1", Email: "alice@example.com"}
	handler := newAuthHandler(users, newGateProfileRepo())

	rec := postJSON(t, handler.Register, "/auth/register", RegisterRequest{
		Email:       "alice@example.com",
		Password:    "hunter2hunter2",
		DisplayName: "Alice",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRightAndWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	users := newFakeUserRepo()
	users.byID["user-1"] = types.User{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}
	users.byEmail["alice@example.com"] = users.byID["user-1"]
	handler := newAuthHandler(users, newGateProfileRepo())

	rec := postJSON(t, handler.Login, "/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, findSessionCookie(t, rec))

	rec = postJSON(t, handler.Login, "/auth/login", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, findSessionCookie(t, rec))
}

func TestLoginUnknownEmail(t *testing.T) {
	handler := newAuthHandler(newFakeUserRepo(), newGateProfileRepo())

	rec := postJSON(t, handler.Login, "/auth/login", LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	handler := newAuthHandler(newFakeUserRepo(), newGateProfileRepo())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			cleared = cookie.MaxAge < 0 && cookie.Value == ""
		}
	}
	assert.True(t, cleared, "logout must expire the session cookie")
}

func TestMeWithoutPrincipal(t *testing.T) {
	handler := newAuthHandler(newFakeUserRepo(), newGateProfileRepo())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
