package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"kairos/internal/auth"
	"kairos/internal/cache"
	"kairos/internal/config"
	"kairos/internal/db"
	"kairos/internal/handler"
	"kairos/internal/logging"
	"kairos/internal/repository"
	"kairos/internal/router"
	"kairos/internal/service"
)

// @title Kairos API
// @version 1.0
// @description Personal stress tracker: stress entries with an append-only strength history.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name access_token
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log.Named("db"))
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}
	defer func() { _ = db.Close(gormDB) }()

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			log.Warn("drop tables", zap.Error(err))
		}
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		log.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, logout revocation disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancel()

	// Initialize repositories
	store := repository.NewStore(gormDB)

	// Initialize auth components
	issuer := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:       cfg.SecretKey,
		TTL:          cfg.TokenTTL,
		CookieSecure: cfg.CookieSecure,
	})
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(store.Users(), issuer, tokenStore, log.Named("auth"))
	stressService := service.NewStressService(store, log.Named("stress"))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, issuer)
	stressHandler := handler.NewStressHandler(stressService)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, log, auth.Middleware(issuer, authService), authHandler, stressHandler)

	addr := ":" + cfg.ServerPort
	log.Info("listening", zap.String("addr", addr), zap.String("db_driver", cfg.DBDriver))
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server start", zap.Error(err))
	}
}
