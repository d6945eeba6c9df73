package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testJWTSecret     = []byte("test-jwt-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

func TestSignAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(15 * time.Minute).UTC()
	token, err := SignAccessToken(42, "admin", testJWTSecret, exp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, testJWTSecret)
	require.NoError(t, err)

	assert.Equal(t, "admin", claims.Role)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestSignRefreshToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(24 * time.Hour).UTC()
	token, err := SignRefreshToken(42, testRefreshSecret, exp)
	require.NoError(t, err)

	claims, err := RefreshClaimsFromToken(token, testRefreshSecret)
	require.NoError(t, err)

	assert.Equal(t, "refresh", claims.Typ)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenValidation(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Minute)

	access, err := SignAccessToken(1, "user", testJWTSecret, exp)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(access, []byte("wrong-secret"))
	require.Error(t, err)

	expired, err := SignAccessToken(1, "user", testJWTSecret, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, testJWTSecret)
	require.Error(t, err)

	// an access token is not accepted where a refresh token is expected
	_, err = RefreshClaimsFromToken(access, testJWTSecret)
	require.Error(t, err)
}

func newEchoContext(t *testing.T, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(testJWTSecret)
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	token, err := SignAccessToken(7, "user", testJWTSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)

	c, _ := newEchoContext(t, &http.Cookie{Name: "accessToken", Value: token})
	require.NoError(t, m.RequireAuth(next)(c))

	p, ok := PrincipalFromContext(c)
	require.True(t, ok)
	assert.Equal(t, uint(7), p.ID)
	assert.Equal(t, "user", p.Role)
	assert.False(t, p.IsAdmin())
}

func TestRequireAuth_MissingOrBadToken(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(testJWTSecret)
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, _ := newEchoContext(t)
	err := m.RequireAuth(next)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	c, _ = newEchoContext(t, &http.Cookie{Name: "accessToken", Value: "garbage"})
	err = m.RequireAuth(next)(c)
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(testJWTSecret)
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	userToken, err := SignAccessToken(7, "user", testJWTSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)
	adminToken, err := SignAccessToken(1, "admin", testJWTSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)

	c, _ := newEchoContext(t, &http.Cookie{Name: "accessToken", Value: userToken})
	err = m.RequireAdmin(next)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)

	c, _ = newEchoContext(t, &http.Cookie{Name: "accessToken", Value: adminToken})
	require.NoError(t, m.RequireAdmin(next)(c))
}
