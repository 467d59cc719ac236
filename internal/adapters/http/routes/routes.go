package routes

import (
	"census-backend/internal/adapters/http/handlers"
	"census-backend/internal/adapters/http/middleware"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/config"
	"census-backend/internal/core/services"
	"census-backend/internal/pkg/metrics"
	"census-backend/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, revocations session.RevocationStore, log *zap.Logger) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	surveyRepo := repositories.NewSurveyRepository(db)

	// Initialize services
	permissions := services.NewPermissionService(userRepo, roleRepo, locationRepo)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, revocations, cfg, log)
	userService := services.NewUserService(userRepo, roleRepo, permissions, log)
	locationService := services.NewLocationService(locationRepo, userRepo, permissions, log)
	surveyService := services.NewSurveyService(surveyRepo, locationRepo, userRepo, permissions, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(authService, cfg, log)
	userHandler := handlers.NewUserHandler(userService, log)
	locationHandler := handlers.NewLocationHandler(locationService, log)
	surveyHandler := handlers.NewSurveyHandler(surveyService, log)

	// Health check, metrics & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", metrics.Handler())

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(authService)

	// ==================== Auth Routes ====================
	apiV1.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)

	authGroup := apiV1.Group("/auth")
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", auth, authHandler.Logout)
	authGroup.Get("/me", auth, middleware.NoCacheHeaders(), authHandler.Me)

	// ==================== User Routes ====================
	userGroup := apiV1.Group("/user", auth)
	userGroup.Get("/children", userHandler.ListChildren)
	userGroup.Get("/roles", userHandler.ChildRoles)
	userGroup.Put("/finish", userHandler.MarkFinished)
	userGroup.Put("/password", middleware.StrictRateLimiter(), userHandler.ChangePassword)
	userGroup.Post("/create", middleware.Managers(), userHandler.CreateUser)
	userGroup.Delete("/:username", middleware.Managers(), userHandler.DeleteUser)
	userGroup.Put("/:username/active", middleware.Managers(), userHandler.SetActive)
	userGroup.Put("/:username/survey-time", middleware.Managers(), userHandler.SetSurveyTime)

	// ==================== Location Routes ====================
	locationGroup := apiV1.Group("/location")
	locationGroup.Get("/top", middleware.NoCacheHeaders(), locationHandler.ListTopLevel)
	locationGroup.Post("/create", auth, middleware.Managers(), locationHandler.Create)
	locationGroup.Put("/update", auth, middleware.Managers(), locationHandler.AssignCode)
	locationGroup.Get("/:code/children", middleware.NoCacheHeaders(), locationHandler.ListChildren)
	locationGroup.Get("/:code/unassigned", auth, locationHandler.ListUnassigned)
	locationGroup.Get("/:code", middleware.LocationDataCache(), locationHandler.GetByCode)

	// ==================== Survey Routes ====================
	surveyGroup := apiV1.Group("/survey", auth)
	surveyGroup.Post("/", surveyHandler.Insert)
	surveyGroup.Get("/citizen-by-id-number", surveyHandler.GetByIdentity)
	surveyGroup.Get("/location/citizens", surveyHandler.ListByLocation)
	surveyGroup.Post("/location/occupation", surveyHandler.Occupation)
	surveyGroup.Post("/location/age-dist", surveyHandler.AgeDistribution)
	surveyGroup.Get("/search", surveyHandler.Search)
	surveyGroup.Post("/import", middleware.StrictRateLimiter(), surveyHandler.Import)
	surveyGroup.Get("/import/template", surveyHandler.ImportTemplate)
	surveyGroup.Delete("/:identity", surveyHandler.Delete)
}
