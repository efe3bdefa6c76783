package adminpanel

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/eringen/adminpanel/api"
)

// ErrTokenExpired is returned for a backend token whose exp claim has passed.
var ErrTokenExpired = errors.New("adminpanel: backend token has expired")

// checkBackendToken rejects JWTs that are already expired. The signature is
// not verified here; the backend does that. Tokens that are not JWTs pass.
func checkBackendToken(token string, now time.Time) error {
	if token == "" {
		return nil
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return ErrTokenExpired
	}
	return nil
}

// requestAuth is the bearer token for category calls made on behalf of c:
// the one entered at login, else the configured BackendToken.
func (a *App) requestAuth(c echo.Context) api.Auth {
	token := sessionToken(c)
	if token == "" {
		token = a.Config.BackendToken
	}
	return api.Auth{Token: strings.TrimSpace(token)}
}
