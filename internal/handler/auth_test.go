package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/avdeev/script-access/internal/config"
	"github.com/avdeev/script-access/internal/utils"
)

func loginRequest(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	assert.NoError(t, h.Login(c))
	return rec
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse", 4)
	assert.NoError(t, err)
	h := NewAuthHandler(&config.Config{
		JWTSecret:     "test-secret",
		AccessTTLMin:  15,
		AdminID:       42,
		AdminPassHash: hash,
	})

	rec := loginRequest(t, h, `{"password":"correct-horse"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_token")

	rec = loginRequest(t, h, `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = loginRequest(t, h, `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
