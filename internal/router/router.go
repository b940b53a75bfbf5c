package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "kairos/docs"
	"kairos/internal/config"
	"kairos/internal/handler"
	"kairos/internal/logging"
	"kairos/internal/metrics"
)

// Register wires routes and middleware. requireUser guards every route
// that acts on behalf of a user.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	requireUser echo.MiddlewareFunc,
	authHandler *handler.AuthHandler,
	stressHandler *handler.StressHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch,
			http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType,
			echo.HeaderAccept, echo.HeaderAuthorization,
		},
	}))
	e.Use(metrics.Middleware())

	// Add validator
	e.Validator = handler.NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (cookie or bearer token)
	secured := api.Group("", requireUser)
	secured.GET("/auth/me", authHandler.Me)

	secured.POST("/stress", stressHandler.Create)
	secured.GET("/stress", stressHandler.List)
	secured.GET("/stress/:id", stressHandler.Get)
	secured.PATCH("/stress/:id", stressHandler.Patch)
	secured.DELETE("/stress/:id", stressHandler.Delete)
	secured.POST("/stress/:id/strength", stressHandler.AppendStrength)
}
