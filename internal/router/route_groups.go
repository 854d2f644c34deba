package router

import (
	"github.com/gin-gonic/gin"

	"carwash_backend/internal/handlers"
	"carwash_backend/internal/middleware"
	"carwash_backend/internal/models"
)

var (
	staffRoles = []string{models.RoleAdmin, models.RoleEmployee}
	allRoles   = []string{models.RoleAdmin, models.RoleEmployee, models.RoleCustomer}
)

// SetupPublicAuthRoutes sets up the routes reachable without a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.Register)
	group.POST("/login", authHandler.Login)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
}

// SetupUserRoutes sets up the user routes. Employees may look customers up;
// only admins change accounts.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, userHandler *handlers.UserHandler, pointHandler *handlers.PointHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	{
		userRoutes.GET("", middleware.RoleAuthMiddleware(staffRoles...), userHandler.GetUsers)
		userRoutes.GET("/:id", middleware.RoleAuthMiddleware(staffRoles...), userHandler.GetUserByID)
		userRoutes.GET("/:id/points", middleware.RoleAuthMiddleware(allRoles...), pointHandler.GetCustomerPoints)

		adminRoutes := userRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.POST("", userHandler.CreateUser)
			adminRoutes.PUT("/:id", userHandler.UpdateUser)
			adminRoutes.DELETE("/:id", userHandler.DeleteUser)
		}
	}
}

// SetupVehicleRoutes sets up the vehicle routes.
func SetupVehicleRoutes(authenticatedGroup *gin.RouterGroup, vehicleHandler *handlers.VehicleHandler, membershipHandler *handlers.MembershipHandler) {
	vehicleRoutes := authenticatedGroup.Group("/vehicles")
	{
		vehicleRoutes.GET("", middleware.RoleAuthMiddleware(allRoles...), vehicleHandler.GetVehicles)
		vehicleRoutes.GET("/:id", middleware.RoleAuthMiddleware(allRoles...), vehicleHandler.GetVehicleByID)
		vehicleRoutes.GET("/:id/active-membership", middleware.RoleAuthMiddleware(allRoles...), membershipHandler.GetActiveMembership)
		vehicleRoutes.POST("", middleware.RoleAuthMiddleware(staffRoles...), vehicleHandler.CreateVehicle)
		vehicleRoutes.PUT("/:id", middleware.RoleAuthMiddleware(staffRoles...), vehicleHandler.UpdateVehicle)
		vehicleRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), vehicleHandler.DeleteVehicle)
	}
}

// SetupCategoryRoutes sets up the service category routes.
func SetupCategoryRoutes(authenticatedGroup *gin.RouterGroup, categoryHandler *handlers.CategoryHandler) {
	categoryRoutes := authenticatedGroup.Group("/categories")
	{
		categoryRoutes.GET("", categoryHandler.GetCategories)
		categoryRoutes.GET("/:id", categoryHandler.GetCategoryByID)

		adminRoutes := categoryRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.POST("", categoryHandler.CreateCategory)
			adminRoutes.PUT("/:id", categoryHandler.UpdateCategory)
			adminRoutes.DELETE("/:id", categoryHandler.DeleteCategory)
		}
	}
}

// SetupMembershipRoutes sets up the membership routes.
func SetupMembershipRoutes(authenticatedGroup *gin.RouterGroup, membershipHandler *handlers.MembershipHandler) {
	membershipRoutes := authenticatedGroup.Group("/memberships")
	{
		membershipRoutes.GET("", middleware.RoleAuthMiddleware(allRoles...), membershipHandler.GetMemberships)
		membershipRoutes.GET("/:id", middleware.RoleAuthMiddleware(allRoles...), membershipHandler.GetMembershipByID)
		membershipRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), membershipHandler.CreateMembership)
		membershipRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), membershipHandler.DeleteMembership)
	}
}

// SetupTransactionRoutes sets up the cashier routes.
func SetupTransactionRoutes(authenticatedGroup *gin.RouterGroup, trxHandler *handlers.TransactionHandler, pointHandler *handlers.PointHandler) {
	trxRoutes := authenticatedGroup.Group("/transactions")
	{
		trxRoutes.GET("", middleware.RoleAuthMiddleware(allRoles...), trxHandler.GetTransactions)
		trxRoutes.GET("/:id", middleware.RoleAuthMiddleware(allRoles...), trxHandler.GetTransactionByID)
		trxRoutes.GET("/:id/points", middleware.RoleAuthMiddleware(allRoles...), pointHandler.GetTransactionPoints)

		staffRoutes := trxRoutes.Group("")
		staffRoutes.Use(middleware.RoleAuthMiddleware(staffRoles...))
		{
			staffRoutes.POST("/preview", trxHandler.PreviewPricing)
			staffRoutes.POST("", trxHandler.CreateTransaction)
			staffRoutes.PUT("/:id", trxHandler.UpdateTransaction)
			staffRoutes.PATCH("/:id/status", trxHandler.UpdateTransactionStatus)
			staffRoutes.GET("/export", trxHandler.ExportTransactions)
		}
		trxRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), trxHandler.DeleteTransaction)
	}
}

// SetupCompanyRoutes sets up the company profile routes.
func SetupCompanyRoutes(authenticatedGroup *gin.RouterGroup, companyHandler *handlers.CompanyHandler) {
	companyRoutes := authenticatedGroup.Group("/company")
	{
		companyRoutes.GET("", companyHandler.GetProfile)
		companyRoutes.PUT("", middleware.RoleAuthMiddleware(models.RoleAdmin), companyHandler.UpdateProfile)
		companyRoutes.POST("/logo", middleware.RoleAuthMiddleware(models.RoleAdmin), companyHandler.UploadLogo)
	}
}

// SetupDashboardRoutes sets up the dashboard routes.
func SetupDashboardRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	dashboardRoutes.Use(middleware.RoleAuthMiddleware(staffRoles...))
	{
		dashboardRoutes.GET("/summary", reportHandler.GetDashboardSummary)
	}
}
