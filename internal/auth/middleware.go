package auth

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "kairos/internal/errors"
	"kairos/internal/model"
)

const (
	// ContextKeyClaims holds the verified *Claims of the request.
	ContextKeyClaims = "claims"
	// ContextKeyUser holds the resolved *model.User of the request.
	ContextKeyUser = "currentUser"
)

var (
	// errCookiePriority stops the bearer lookup when a cookie was presented.
	errCookiePriority = errors.New("session cookie present")
	errNoBearer       = errors.New("missing bearer token")
)

// UserResolver loads the user a verified token refers to.
type UserResolver interface {
	ResolveClaims(ctx context.Context, claims *Claims) (*model.User, error)
}

// Middleware authenticates a request and stores the acting user in the
// context. The session cookie is consulted first; the bearer header is
// only looked at when no cookie exists. A request carrying neither is
// rejected before any decoding.
func Middleware(issuer *TokenIssuer, resolver UserResolver) echo.MiddlewareFunc {
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKeyClaims,
		TokenLookup: "cookie:" + issuer.Config().CookieName,
		TokenLookupFuncs: []middleware.ValuesExtractor{
			func(c echo.Context) ([]string, error) {
				if issuer.cookieToken(c) != "" {
					return nil, errCookiePriority
				}
				if token := bearerToken(c); token != "" {
					return []string{token}, nil
				}
				return nil, errNoBearer
			},
		},
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return issuer.Parse(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthenticated().SetInternal(err)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(func(c echo.Context) error {
			claims, ok := c.Get(ContextKeyClaims).(*Claims)
			if !ok {
				return unauthenticated()
			}
			user, err := resolver.ResolveClaims(c.Request().Context(), claims)
			if err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
			}
			c.Set(ContextKeyUser, user)
			return next(c)
		})
	}
}

// CurrentUser returns the user stored by Middleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*model.User)
	return user, ok && user != nil
}

func unauthenticated() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: apperrors.ErrUnauthenticated.Error(),
		Code:  "UNAUTHENTICATED",
	})
}
