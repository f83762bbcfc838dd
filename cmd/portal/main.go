package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"admissions/internal/backend"
	"admissions/internal/cache"
	"admissions/internal/config"
	"admissions/internal/gate"
	"admissions/internal/logging"
	"admissions/internal/portal"
	"admissions/internal/session"
)

func main() {
	cfg, err := config.LoadPortal()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, live sessions will not be cached", slog.String("error", err.Error()))
	}
	cancel()

	api := backend.New(backend.Options{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		Retries: cfg.BackendRetries,
	})

	loader := session.NewLoader(session.LoaderOptions{
		Fetcher:  api,
		Cache:    cacheClient,
		CacheTTL: cfg.SessionCacheTTL,
		Timeout:  cfg.SessionLoadTimeout,
		Logger:   logger,
	})

	renderer, err := portal.NewRenderer()
	if err != nil {
		logger.Error("parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	routes := gate.DefaultRoutes()
	facade := portal.NewAuthFacade(api, loader, logger)
	guards := portal.NewGuards(routes, loader, facade, logger)
	pages := portal.NewPages(routes, facade, api, logger)

	origin, err := url.Parse(cfg.BackendURL)
	if err != nil {
		logger.Error("parse backend url", slog.String("error", err.Error()))
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	portal.Register(e, portal.RouterConfig{
		Routes: routes,
		Cookies: session.CookieOptions{
			Path:   "/",
			MaxAge: cfg.SessionMaxAge,
			Secure: cfg.CookieSecure,
		},
		FilterExclude:  cfg.FilterExclude,
		BackendOrigin:  &url.URL{Scheme: origin.Scheme, Host: origin.Host},
		Logger:         logger,
		RequestLogging: true,
	}, renderer, guards, pages)

	go func() {
		addr := ":" + cfg.Port
		logger.Info("portal listening", slog.String("addr", addr), slog.String("backend", cfg.BackendURL))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutdown", slog.String("error", err.Error()))
	}
}
