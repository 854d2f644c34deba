package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/config"
	"carwash_backend/internal/handlers"
	"carwash_backend/internal/middleware"
	"carwash_backend/internal/repositories"
	"carwash_backend/internal/services"
	"carwash_backend/pkg/utils"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	vehicleRepo := repositories.NewVehicleRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	trxRepo := repositories.NewTransactionRepository(db)
	pointRepo := repositories.NewPointRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	transactor := repositories.NewTransactor(db)

	// Initialize Services
	resolver := services.NewMembershipResolver(membershipRepo)
	engineSvc := services.NewPricingEngine(resolver, trxRepo)
	ledger := services.NewPointsLedger(pointRepo, vehicleRepo, resolver)

	authService := services.NewAuthService(userRepo, db)
	if err := authService.EnsureSuperadmin(cfg.SuperadminUsername, cfg.SuperadminPassword); err != nil {
		utils.LogError(err, "Failed to create superadmin account")
	}
	userService := services.NewUserService(userRepo, transactor, db)
	vehicleService := services.NewVehicleService(vehicleRepo, userRepo, db)
	categoryService := services.NewCategoryService(categoryRepo, db)
	membershipService := services.NewMembershipService(membershipRepo, vehicleRepo, resolver, transactor, db)
	trxService := services.NewTransactionService(trxRepo, categoryRepo, vehicleRepo, userRepo, engineSvc, ledger, transactor, db)
	companyService := services.NewCompanyService(companyRepo, cfg.UploadDir)
	reportService := services.NewReportService(reportRepo, cfg.BusinessTimezone)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	membershipHandler := handlers.NewMembershipHandler(membershipService, vehicleService)
	trxHandler := handlers.NewTransactionHandler(trxService)
	pointHandler := handlers.NewPointHandler(ledger, cfg.BusinessTimezone)
	companyHandler := handlers.NewCompanyHandler(companyService)
	reportHandler := handlers.NewReportHandler(reportService)

	engine.Static("/uploads", cfg.UploadDir)

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, userHandler, pointHandler)
		SetupVehicleRoutes(authenticated, vehicleHandler, membershipHandler)
		SetupCategoryRoutes(authenticated, categoryHandler)
		SetupMembershipRoutes(authenticated, membershipHandler)
		SetupTransactionRoutes(authenticated, trxHandler, pointHandler)
		SetupCompanyRoutes(authenticated, companyHandler)
		SetupDashboardRoutes(authenticated, reportHandler)
	}
}
