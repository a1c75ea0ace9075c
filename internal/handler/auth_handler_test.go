package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionafrica/debate-portal/internal/middleware"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
)

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSetsCookie(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := app.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"token":"signed-token"`)

	cookie := findCookie(rec, middleware.AdminCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestLoginSecureCookie(t *testing.T) {
	app := newTestApp(t)
	handler := NewAuthHandler(app.auth, true)
	app.router.POST("/secure-login", handler.Login)

	req := httptest.NewRequest(http.MethodPost, "/secure-login", strings.NewReader(`{"username":"admin","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := app.do(req)

	cookie := findCookie(rec, middleware.AdminCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
}

func TestLoginFailure(t *testing.T) {
	app := newTestApp(t)
	app.auth.err = appErrors.ErrInvalidCredentials

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := app.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", decodeEnvelope(t, rec).Error.Message)
	assert.Nil(t, findCookie(rec, middleware.AdminCookieName))

	rec = app.do(httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutAndMe(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(authed(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"admin-1","username":"admin"}`, string(decodeEnvelope(t, rec).Data))

	rec = app.do(authed(httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := findCookie(rec, middleware.AdminCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}
