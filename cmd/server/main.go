package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	_ "rezeptapp/docs" // swagger docs

	"rezeptapp/internal/ai"
	"rezeptapp/internal/auth"
	"rezeptapp/internal/cache"
	"rezeptapp/internal/config"
	"rezeptapp/internal/db"
	"rezeptapp/internal/handler"
	"rezeptapp/internal/jobs"
	"rezeptapp/internal/logging"
	"rezeptapp/internal/metrics"
	"rezeptapp/internal/repository"
	"rezeptapp/internal/router"
	"rezeptapp/internal/scraper"
	"rezeptapp/internal/service"
)

const shutdownTimeout = 15 * time.Second

// @title Rezept App API
// @version 1.0
// @description Recipe catalog with favorites, a moderation queue and AI-assisted recipe authoring.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name rezept-app-session
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, logging.GormLogger(log))
	if err != nil {
		log.WithError(err).Fatal("database init")
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.WithError(err).Fatal("reset database")
		}
	} else if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()

	m := metrics.New()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	recipeRepo := repository.NewRecipeRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	favoriteRepo := repository.NewFavoriteRepository(gormDB)
	pendingRepo := repository.NewPendingRecipeRepository(gormDB)
	settingRepo := repository.NewSettingRepository(gormDB)

	// Initialize auth components
	guard := auth.NewGuard(cfg.AllowSelfRoleChange)
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionCookieName, cfg.SecureCookies())
	revocations := auth.NewSessionStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, revocations, m, log)
	userService := service.NewUserService(userRepo, guard, revocations, log)
	recipeService := service.NewRecipeService(recipeRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, recipeRepo, m)
	moderationService := service.NewModerationService(pendingRepo, guard, m, log)
	settingsService := service.NewSettingsService(settingRepo, guard, log)
	aiService := service.NewAIService(
		ai.NewClient(cfg.AI.BaseURL, cfg.AI.RequestTimeout, m),
		settingsService, userRepo, cfg.AI, log,
	)
	importService := service.NewImportService(
		scraper.NewChefkoch(cfg.ImportAllowedHost, &http.Client{Timeout: 20 * time.Second}),
		log,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, router.Deps{
		Log:         log,
		Metrics:     m,
		Sessions:    sessions,
		Revocations: revocations,
		Guard:       guard,
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, sessions, log),
		Recipes:    handler.NewRecipeHandler(recipeService),
		Favorites:  handler.NewFavoriteHandler(favoriteService),
		Categories: handler.NewCategoryHandler(categoryService),
		Moderation: handler.NewModerationHandler(moderationService),
		Users:      handler.NewUserHandler(userService),
		Settings:   handler.NewSettingsHandler(settingsService),
		AI:         handler.NewAIHandler(aiService, sessions, revocations, log),
		Import:     handler.NewImportHandler(importService),
		Health:     handler.NewHealthHandler(gormDB, cacheClient),
	})

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.AddPendingGauge(cfg.PendingGaugeSchedule, moderationService, m); err != nil {
		log.WithError(err).Fatal("scheduler")
	}
	scheduler.Start()

	log.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.ServerPort
	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}

// swaggerURL accepts SWAGGER_HOST with or without a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
