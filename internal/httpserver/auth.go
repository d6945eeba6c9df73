package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/auth"
	"github.com/mkrasov/fitshop/internal/events"
	"github.com/mkrasov/fitshop/internal/hash"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
	"github.com/mkrasov/fitshop/internal/transport"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type AuthHandler struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *events.Producer
}

func createCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	if _, err := h.Repo.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := h.Repo.CreateUser(ctx, &user); err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, events.TopicUserEvents, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})
	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	accessExp := time.Now().Add(accessTokenTTL)
	accessToken, err := auth.SignAccessToken(user.ID, user.Role, h.JWTSecret, accessExp)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	refreshExp := time.Now().Add(refreshTokenTTL)
	refreshToken, err := auth.SignRefreshToken(user.ID, h.RefreshSecret, refreshExp)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.Repo.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: refreshExp,
	}); err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(createCookie("accessToken", accessToken, "/", accessExp))
	c.SetCookie(createCookie("refreshToken", refreshToken, "/", refreshExp))

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	})
}

// Refresh rotates the refresh token: the presented one is revoked and a new
// pair of cookies is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	cookie, err := c.Cookie("refreshToken")
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	claims, err := auth.RefreshClaimsFromToken(cookie.Value, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	stored, err := h.Repo.GetRefreshToken(ctx, cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown refresh token")
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token expired or revoked")
	}

	user, err := h.userFromClaims(ctx, claims)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	if err := h.Repo.RevokeRefreshToken(ctx, cookie.Value); err != nil {
		l.Error("refresh_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	accessExp := time.Now().Add(accessTokenTTL)
	accessToken, err := auth.SignAccessToken(user.ID, user.Role, h.JWTSecret, accessExp)
	if err != nil {
		l.Error("refresh_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	refreshExp := time.Now().Add(refreshTokenTTL)
	refreshToken, err := auth.SignRefreshToken(user.ID, h.RefreshSecret, refreshExp)
	if err != nil {
		l.Error("refresh_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.Repo.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: refreshExp,
	}); err != nil {
		l.Error("refresh_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(createCookie("accessToken", accessToken, "/", accessExp))
	c.SetCookie(createCookie("refreshToken", refreshToken, "/", refreshExp))

	l.Info("refresh_success", "user_id", user.ID)
	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		if err := h.Repo.RevokeRefreshToken(ctx, cookie.Value); err != nil {
			logging.FromContext(ctx).Warn("logout_revoke_failed", "error", err)
		}
	}

	expired := time.Now().Add(-time.Hour)
	c.SetCookie(createCookie("accessToken", "", "/", expired))
	c.SetCookie(createCookie("refreshToken", "", "/", expired))
	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) userFromClaims(ctx context.Context, claims *auth.RefreshClaims) (*models.User, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, err
	}
	return h.Repo.GetUser(ctx, uint(id))
}
