package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"rezeptapp/internal/auth"
	"rezeptapp/internal/config"
	"rezeptapp/internal/handler"
	"rezeptapp/internal/logging"
	"rezeptapp/internal/metrics"
	"rezeptapp/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth       *handler.AuthHandler
	Recipes    *handler.RecipeHandler
	Favorites  *handler.FavoriteHandler
	Categories *handler.CategoryHandler
	Moderation *handler.ModerationHandler
	Users      *handler.UserHandler
	Settings   *handler.SettingsHandler
	AI         *handler.AIHandler
	Import     *handler.ImportHandler
	Health     *handler.HealthHandler
}

// Deps are the cross-cutting components the middleware stack needs.
type Deps struct {
	Log         logrus.FieldLogger
	Metrics     *metrics.Metrics
	Sessions    *auth.SessionManager
	Revocations auth.RevocationStore
	Guard       *auth.Guard
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, deps Deps, h Handlers) {
	e.Use(echomw.RequestID())
	e.Use(logging.RequestLogger(deps.Log))
	e.Use(echomw.Recover())
	e.Use(deps.Metrics.Middleware())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return servertiming.Middleware(next, nil)
	}))
	e.Use(auth.SessionMiddleware(deps.Sessions, deps.Revocations, deps.Log))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := auth.Require(deps.Guard, auth.CapAuthenticated)
	adminOnly := auth.Require(deps.Guard, auth.CapAdminOnly)
	credentialLimit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	aiLimit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)

	api := e.Group("/api")

	// Session
	api.POST("/login", h.Auth.Login, credentialLimit)
	api.POST("/logout", h.Auth.Logout)
	api.POST("/register", h.Auth.Register, credentialLimit)
	api.GET("/register/status", h.Auth.RegisterStatus)
	api.GET("/me", h.Auth.Me, authenticated)

	// Recipe catalog
	api.GET("/recipes", h.Recipes.List)
	api.POST("/recipes", h.Recipes.Create, authenticated)
	api.GET("/recipes/:id", h.Recipes.Get)
	api.PUT("/recipes/:id", h.Recipes.Update, authenticated)
	api.DELETE("/recipes/:id", h.Recipes.Delete, authenticated)
	api.GET("/recipes/:id/steps", h.Recipes.Steps)

	// Favorites
	api.GET("/favorites", h.Favorites.List, authenticated)
	api.POST("/favorites", h.Favorites.Toggle, authenticated)
	api.POST("/favorites/check", h.Favorites.Check)

	// Categories
	api.GET("/categories", h.Categories.List)
	api.POST("/categories", h.Categories.Create, adminOnly)
	api.DELETE("/categories", h.Categories.Delete, adminOnly)

	// Moderation queue and admin
	admin := api.Group("/admin")
	admin.POST("/pending-recipes", h.Moderation.Submit, authenticated)
	admin.GET("/pending-recipes", h.Moderation.List, adminOnly)
	admin.POST("/pending-recipes/:id", h.Moderation.Decide, adminOnly)
	admin.GET("/users", h.Users.ListUsers, adminOnly)
	admin.PATCH("/users/:id", h.Users.ChangeRole, adminOnly)
	admin.DELETE("/users/:id", h.Users.DeleteUser, adminOnly)
	admin.GET("/settings", h.Settings.Get, adminOnly)
	admin.POST("/settings", h.Settings.Update, adminOnly)

	// AI provider proxies
	api.POST("/ai-analyze", h.AI.Analyze, authenticated, aiLimit, echomw.BodyLimit(cfg.MaxUploadSize))
	api.POST("/generate-recipe", h.AI.GenerateRecipe, authenticated, aiLimit)
	api.POST("/optimize-recipe", h.AI.OptimizeRecipe, authenticated, aiLimit)
	api.POST("/generate-step-illustration", h.AI.StepIllustration, authenticated, aiLimit)
	api.POST("/generate-profile-image", h.AI.ProfileImage, authenticated, aiLimit)

	api.POST("/import", h.Import.Import, credentialLimit)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
