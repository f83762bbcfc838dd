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

	"admissions/docs" // swagger docs
	"admissions/internal/auth"
	"admissions/internal/cache"
	"admissions/internal/config"
	"admissions/internal/db"
	"admissions/internal/handler"
	"admissions/internal/logging"
	"admissions/internal/repository"
	"admissions/internal/router"
	"admissions/internal/service"
)

// @title Admissions API
// @version 1.0
// @description Admissions backend: applicant registration, JWT authentication, programs and announcements.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Error("database init", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn("drop tables", slog.String("error", err.Error()))
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)
	programRepo := repository.NewProgramRepository(gormDB)
	announcementRepo := repository.NewAnnouncementRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtService, tokenStore)
	programService := service.NewProgramService(programRepo, cacheClient, cfg.ProgramCacheTTL)
	announcementService := service.NewAnnouncementService(announcementRepo)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, logger, jwtService, tokenStore, router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Programs:      handler.NewProgramHandler(programService),
		Announcements: handler.NewAnnouncementHandler(announcementService),
	})

	swaggerURL := "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		swaggerURL = cfg.SwaggerHost + "/swagger/index.html"
		if !strings.HasPrefix(cfg.SwaggerHost, "http://") && !strings.HasPrefix(cfg.SwaggerHost, "https://") {
			swaggerURL = "http://" + swaggerURL
		}
	}
	logger.Info("swagger documentation available", slog.String("url", swaggerURL))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("api listening", slog.String("addr", addr))
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
