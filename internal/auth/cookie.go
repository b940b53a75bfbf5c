package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// SessionCookie wraps token into the transport-level session credential.
func (i *TokenIssuer) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     i.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(i.cfg.CookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   i.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session credential on the client.
func (i *TokenIssuer) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     i.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   i.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// cookieToken returns the session cookie value, if any.
func (i *TokenIssuer) cookieToken(c echo.Context) string {
	cookie, err := c.Cookie(i.cfg.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// bearerToken returns the Authorization bearer value, if any.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// TokenFromRequest picks the credential of a request: the cookie wins over
// the bearer header. An empty string means no credential was presented.
func (i *TokenIssuer) TokenFromRequest(c echo.Context) string {
	if token := i.cookieToken(c); token != "" {
		return token
	}
	return bearerToken(c)
}
