package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrasov/fitshop/internal/hash"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/transport"
)

var (
	testJWTSecret     = []byte("test-jwt-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

func newAuthHandler(env *testEnv) *AuthHandler {
	return &AuthHandler{
		Repo:          env.Repo,
		JWTSecret:     testJWTSecret,
		RefreshSecret: testRefreshSecret,
	}
}

func seedUser(t *testing.T, env *testEnv, username, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Username: username, PasswordHash: pwHash, Role: "user"}
	require.NoError(t, env.DB.Create(&u).Error)
	return &u
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)

	body := transport.RegisterRequest{Username: "test_user", Password: "password"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", body, nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var u models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "test_user", u.Username)
	assert.Equal(t, "user", u.Role)
	assert.NotEmpty(t, u.ID)

	// duplicate username conflicts
	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/register", body, nil)
	err := h.Register(c)
	assert.Equal(t, http.StatusConflict, asHTTPError(t, err).Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)
	seedUser(t, env, "test_user", "password")

	body := transport.LoginRequest{Username: "test_user", Password: "password"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", body, nil)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, cookieByName(rec, "accessToken"))
	refresh := cookieByName(rec, "refreshToken")
	require.NotNil(t, refresh)

	// the refresh token was persisted
	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", refresh.Value).First(&stored).Error)
	assert.False(t, stored.Revoked)

	body.Password = "wrong"
	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/login", body, nil)
	err := h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, asHTTPError(t, err).Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)
	seedUser(t, env, "test_user", "password")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/login",
		transport.LoginRequest{Username: "test_user", Password: "password"}, nil)
	require.NoError(t, h.Login(c))
	oldRefresh := cookieByName(rec, "refreshToken")
	require.NotNil(t, oldRefresh)

	rec2, c2 := env.doJSONRequest(http.MethodPost, "/api/v1/refresh", nil, nil)
	c2.Request().AddCookie(oldRefresh)
	require.NoError(t, h.Refresh(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	newRefresh := cookieByName(rec2, "refreshToken")
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// the presented token is revoked and cannot be replayed
	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", oldRefresh.Value).First(&stored).Error)
	assert.True(t, stored.Revoked)

	_, c3 := env.doJSONRequest(http.MethodPost, "/api/v1/refresh", nil, nil)
	c3.Request().AddCookie(oldRefresh)
	err := h.Refresh(c3)
	assert.Equal(t, http.StatusUnauthorized, asHTTPError(t, err).Code)
}

func TestRefresh_MissingCookie(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/refresh", nil, nil)
	err := h.Refresh(c)
	assert.Equal(t, http.StatusUnauthorized, asHTTPError(t, err).Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)
	seedUser(t, env, "test_user", "password")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/login",
		transport.LoginRequest{Username: "test_user", Password: "password"}, nil)
	require.NoError(t, h.Login(c))
	refresh := cookieByName(rec, "refreshToken")
	require.NotNil(t, refresh)

	rec2, c2 := env.doJSONRequest(http.MethodPost, "/api/v1/logout", nil, nil)
	c2.Request().AddCookie(refresh)
	require.NoError(t, h.Logout(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", refresh.Value).First(&stored).Error)
	assert.True(t, stored.Revoked)

	// both cookies are expired on the way out
	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := cookieByName(rec2, name)
		require.NotNil(t, ck, name)
		assert.Empty(t, ck.Value, name)
	}
}
