package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/avdeev/script-access/internal/config"
    "github.com/avdeev/script-access/internal/utils"
)

// AuthHandler issues the admin JWT.  There is a single administrator; the
// login exchanges the shared admin password for a short-lived bearer token
// carrying the ADMIN role.
type AuthHandler struct {
    Cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
    return &AuthHandler{Cfg: cfg}
}

// Login handles POST /v1/auth/login.  The body carries the admin password;
// on a bcrypt match an HS256 access token is returned together with its
// expiry.
func (h *AuthHandler) Login(c echo.Context) error {
    var body struct {
        Password string `json:"password"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if body.Password == "" || !utils.VerifyPassword(h.Cfg.AdminPassHash, body.Password) {
        // Same response for empty and wrong passwords.
        return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
    }
    tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, h.Cfg.AdminID, "ADMIN", h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
    }
    return c.JSON(http.StatusOK, map[string]any{
        "access_token": tok.Token,
        "expires_at":   tok.Exp,
    })
}
