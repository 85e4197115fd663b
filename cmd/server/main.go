package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"userauth/docs"
	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	"userauth/internal/handler"
	"userauth/internal/logging"
	"userauth/internal/repository"
	"userauth/internal/router"
	"userauth/internal/service"
)

// @title User Auth API
// @version 1.0
// @description User registration, sign-in and bearer-token authenticated user reads.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("init logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, serving user list from the store", "addr", cfg.RedisAddr, "error", err)
	}
	defer cacheClient.Close()

	users, closeStore, err := repository.Open(ctx, cfg, cacheClient, logger)
	if err != nil {
		logger.Error("open user store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close user store", "error", err)
		}
	}()

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		logger.Error("init password hasher", "error", err)
		os.Exit(1)
	}
	tokens, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token codec", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(users, hasher, tokens, logger)
	userService := service.NewUserService(users)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(
		e,
		logger,
		auth.NewContextBuilder(tokens),
		handler.NewAuthHandler(authService, logger),
		handler.NewUserHandler(userService, logger),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = trimScheme(cfg.SwaggerHost)
	}
	logger.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("server stopped")
}

func trimScheme(host string) string {
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimPrefix(host, "https://")
}
