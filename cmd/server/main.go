package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"itongue/internal/auth"
	"itongue/internal/cache"
	"itongue/internal/config"
	"itongue/internal/db"
	"itongue/internal/handler"
	"itongue/internal/model"
	"itongue/internal/repository"
	"itongue/internal/router"
	"itongue/internal/service"
	"itongue/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Language{},
		&model.UserLanguage{},
	); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// The staging dir must share a volume with the public dir so the avatar
	// commit rename stays atomic.
	stagingDir := cfg.StagingDir
	if stagingDir == "" {
		stagingDir = filepath.Join(cfg.PublicDir, "uploads", "tmp")
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		logger.Fatal("create staging dir", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	languageRepo := repository.NewLanguageRepository(gormDB)
	userLanguageRepo := repository.NewUserLanguageRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	slugResolver := service.NewSlugResolver(userRepo)
	authService := service.NewAuthService(userRepo, slugResolver, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, slugResolver, tokenStore, cacheClient)
	languageService := service.NewLanguageService(userRepo, languageRepo, userLanguageRepo, cacheClient)
	avatarStore := storage.NewAvatarStore(cfg.PublicDir, userRepo, cacheClient, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, authService, languageService, avatarStore, stagingDir)
	languageHandler := handler.NewLanguageHandler(languageService)

	// Register routes
	router.Register(e, cfg, authHandler, userHandler, languageHandler)

	addr := ":" + cfg.ServerPort
	logger.Info("server starting", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}
