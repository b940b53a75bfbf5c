package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kairos/internal/auth"
	"kairos/internal/config"
	"kairos/internal/handler"
	"kairos/internal/model"
	"kairos/internal/service"
)

type noUsers struct{}

func (noUsers) ResolveClaims(context.Context, *auth.Claims) (*model.User, error) {
	return nil, nil
}

func newTestServer() *echo.Echo {
	issuer := auth.NewTokenIssuer(auth.DefaultTokenConfig("test-secret"))
	cfg := &config.Config{AllowOrigins: []string{"http://localhost:5173"}}

	e := echo.New()
	Register(e, cfg, zap.NewNop(), auth.Middleware(issuer, noUsers{}),
		handler.NewAuthHandler(nil, issuer), handler.NewStressHandler(nil))
	return e
}

func TestRegister_PublicEndpoints(t *testing.T) {
	e := newTestServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kairos_http_requests_total")
}

func TestRegister_SwaggerServesAPIDocument(t *testing.T) {
	e := newTestServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc)) {
		assert.Equal(t, "/api", doc.BasePath)
		for _, path := range []string{
			"/auth/register", "/auth/login", "/auth/me", "/auth/logout",
			"/stress", "/stress/{id}", "/stress/{id}/strength",
		} {
			assert.Contains(t, doc.Paths, path)
		}
	}
}

func TestRegister_SecuredRoutesRequireCredentials(t *testing.T) {
	e := newTestServer()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/stress"},
		{http.MethodPost, "/api/stress"},
		{http.MethodGet, "/api/stress/1"},
		{http.MethodPatch, "/api/stress/1"},
		{http.MethodDelete, "/api/stress/1"},
		{http.MethodPost, "/api/stress/1/strength"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRegister_CORSAllowsCredentials(t *testing.T) {
	e := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/api/stress", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

// brokenStress fails every call the way a lost database connection would.
type brokenStress struct{}

var errConnRefused = errors.New("dial tcp 10.0.0.5:3306: connection refused")

func (brokenStress) Create(context.Context, *model.User, service.CreateStressInput) (*model.StressSummary, error) {
	return nil, errConnRefused
}

func (brokenStress) List(context.Context, *model.User) ([]model.StressSummary, error) {
	return nil, errConnRefused
}

func (brokenStress) Get(context.Context, *model.User, uint) (*model.StressDetail, error) {
	return nil, errConnRefused
}

func (brokenStress) Patch(context.Context, *model.User, uint, service.PatchStressInput) (*model.StressDetail, error) {
	return nil, errConnRefused
}

func (brokenStress) Delete(context.Context, *model.User, uint) error {
	return errConnRefused
}

func (brokenStress) AppendStrength(context.Context, *model.User, uint, service.AppendStrengthInput) (*model.StrengthReading, error) {
	return nil, errConnRefused
}

func TestRegister_RequestLogCarriesHandlerErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	issuer := auth.NewTokenIssuer(auth.DefaultTokenConfig("test-secret"))
	cfg := &config.Config{AllowOrigins: []string{"http://localhost:5173"}}
	asAlice := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(auth.ContextKeyUser, &model.User{ID: 1, Username: "alice"})
			return next(c)
		}
	}

	e := echo.New()
	Register(e, cfg, zap.New(core), asAlice,
		handler.NewAuthHandler(nil, issuer), handler.NewStressHandler(brokenStress{}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stress", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, int64(http.StatusInternalServerError), fields["status"])
		assert.Contains(t, fields["error"], "connection refused")
	}
}

func TestRegister_UnauthenticatedRequestIsLoggedAsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	issuer := auth.NewTokenIssuer(auth.DefaultTokenConfig("test-secret"))
	cfg := &config.Config{AllowOrigins: []string{"http://localhost:5173"}}

	e := echo.New()
	Register(e, cfg, zap.New(core), auth.Middleware(issuer, noUsers{}),
		handler.NewAuthHandler(nil, issuer), handler.NewStressHandler(nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stress", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, int64(http.StatusUnauthorized), entries[0].ContextMap()["status"])
		assert.Contains(t, entries[0].ContextMap(), "error")
	}
}
