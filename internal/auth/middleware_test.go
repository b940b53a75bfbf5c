package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kairos/internal/errors"
	"kairos/internal/model"
)

type fakeResolver struct {
	users map[string]*model.User
}

func (f *fakeResolver) ResolveClaims(ctx context.Context, claims *Claims) (*model.User, error) {
	user, ok := f.users[claims.Subject]
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

func newProtectedEcho(issuer *TokenIssuer) *echo.Echo {
	resolver := &fakeResolver{users: map[string]*model.User{
		"alice": {ID: 1, Username: "alice", Name: "alice"},
		"bob":   {ID: 2, Username: "bob", Name: "bob"},
	}}
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, user.Username)
	}, Middleware(issuer, resolver))
	return e
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer(DefaultTokenConfig("test-secret"))
	aliceToken, _, err := issuer.Issue("alice")
	require.NoError(t, err)
	bobToken, _, err := issuer.Issue("bob")
	require.NoError(t, err)
	ghostToken, _, err := issuer.Issue("ghost")
	require.NoError(t, err)
	expiredToken, _, err := issuer.WithClock(fixedClock(time.Now().Add(-3 * time.Hour))).Issue("alice")
	require.NoError(t, err)

	tests := []struct {
		name       string
		cookie     string
		bearer     string
		wantStatus int
		wantBody   string
	}{
		{name: "no credential", wantStatus: http.StatusUnauthorized},
		{name: "bearer only", bearer: aliceToken, wantStatus: http.StatusOK, wantBody: "alice"},
		{name: "cookie only", cookie: bobToken, wantStatus: http.StatusOK, wantBody: "bob"},
		{name: "cookie wins over bearer", cookie: bobToken, bearer: aliceToken, wantStatus: http.StatusOK, wantBody: "bob"},
		{name: "bad cookie does not fall back to bearer", cookie: "garbage", bearer: aliceToken, wantStatus: http.StatusUnauthorized},
		{name: "expired cookie still present", cookie: expiredToken, wantStatus: http.StatusUnauthorized},
		{name: "expired bearer", bearer: expiredToken, wantStatus: http.StatusUnauthorized},
		{name: "subject no longer exists", bearer: ghostToken, wantStatus: http.StatusUnauthorized},
	}

	e := newProtectedEcho(issuer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.bearer)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	issuer := NewTokenIssuer(DefaultTokenConfig("test-secret"))
	e := echo.New()

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "nothing", want: ""},
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "non bearer scheme ignored", header: "Basic abc", want: ""},
		{name: "cookie", cookie: "xyz", want: "xyz"},
		{name: "cookie first", cookie: "xyz", header: "Bearer abc", want: "xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tt.want, issuer.TokenFromRequest(c))
		})
	}
}

func TestSessionCookie(t *testing.T) {
	cfg := DefaultTokenConfig("test-secret")
	cfg.CookieSecure = true
	issuer := NewTokenIssuer(cfg)

	cookie := issuer.SessionCookie("tok")
	assert.Equal(t, DefaultCookieName, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	cleared := issuer.ClearCookie()
	assert.Equal(t, DefaultCookieName, cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, "/", cleared.Path)
	assert.Negative(t, cleared.MaxAge)
}
