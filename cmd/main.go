package main

import (
	"backoffice-service/internal/handler"
	"backoffice-service/internal/middleware"
	"backoffice-service/internal/model"
	"backoffice-service/internal/storage"
	"backoffice-service/pkg/config"
	"backoffice-service/pkg/database"
	"backoffice-service/pkg/jwtutil"
	"backoffice-service/pkg/logger"
	"backoffice-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting backoffice service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if _, err := database.Init(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.Migrate(
		&model.Company{},
		&model.User{},
		&model.UserCompany{},
		&model.UserPermission{},
		&model.UserPreference{},
		&model.Contact{},
		&model.Product{},
		&model.Sector{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations complete")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize logo storage
	storage.Init(&cfg.Upload)
	log.Info("Logo storage initialized", zap.String("dir", cfg.Upload.Dir))

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.POST("/login", handler.Login)
	e.POST("/company-signup", handler.CompanySignup)

	// Authenticated routes - identity and permissions are reloaded per request
	authed := e.Group("")
	authed.Use(middleware.Authenticate)
	authed.GET("/logout", handler.Logout)
	authed.GET("/dashboard", handler.Dashboard)
	authed.GET("/settings", handler.GetSettings)
	authed.POST("/settings", handler.UpdateSettings)

	contacts := authed.Group("/contacts", middleware.RequireCapability(model.CapabilityContacts))
	contacts.GET("", handler.ListContacts)
	contacts.POST("/new", handler.CreateContact)
	contacts.GET("/:id/edit", handler.GetContactEdit)
	contacts.POST("/:id/edit", handler.UpdateContact)
	contacts.GET("/:id/delete", handler.GetContactDelete)
	contacts.POST("/:id/delete", handler.DeleteContact)

	products := authed.Group("/products", middleware.RequireCapability(model.CapabilityProducts))
	products.GET("", handler.ListProducts)
	products.POST("/new", handler.CreateProduct)
	products.GET("/:id/edit", handler.GetProductEdit)
	products.POST("/:id/edit", handler.UpdateProduct)
	products.GET("/:id/delete", handler.GetProductDelete)
	products.POST("/:id/delete", handler.DeleteProduct)

	sectors := authed.Group("/sectors", middleware.RequireCapability(model.CapabilitySectors))
	sectors.GET("", handler.ListSectors)
	sectors.POST("/new", handler.CreateSector)
	sectors.GET("/:id/edit", handler.GetSectorEdit)
	sectors.POST("/:id/edit", handler.UpdateSector)
	sectors.GET("/:id/delete", handler.GetSectorDelete)
	sectors.POST("/:id/delete", handler.DeleteSector)

	users := authed.Group("/users", middleware.RequireCapability(model.CapabilityUsers))
	users.GET("", handler.ListUsers)
	users.POST("/new", handler.CreateUser)
	users.GET("/:id/edit", handler.GetUserEdit)
	users.POST("/:id/edit", handler.UpdateUser)
	users.GET("/:id/delete", handler.GetUserDelete)
	users.POST("/:id/delete", handler.DeleteUser)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
