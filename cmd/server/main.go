package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"carwash_backend/internal/config"
	"carwash_backend/internal/database"
	"carwash_backend/internal/router"
	"carwash_backend/pkg/utils"
)

func main() {
	cfg := config.Load()

	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.TokenExpires)

	// Money goes out as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true

	if err := utils.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	db, err := database.InitDB(cfg.DatabaseDSN(), cfg.DBApplySchema)
	if err != nil {
		utils.LogError(err, "Failed to initialize database")
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	utils.LogInfo("Database initialized", map[string]interface{}{"host": cfg.DBHost, "name": cfg.DBName})

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.RequestID())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{utils.RequestIDHeader, "Content-Disposition"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, db, cfg)

	utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.AppPort})
	if err := engine.Run(":" + cfg.AppPort); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
