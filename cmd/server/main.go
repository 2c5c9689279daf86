package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"crewops_backend/internal/database"
	"crewops_backend/internal/router"
	"crewops_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine in deployments that configure through
	// the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()

	if err := utils.InitJWT(
		utils.Getenv("JWT_SECRET", ""),
		utils.GetenvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		utils.GetenvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
	); err != nil {
		log.Fatalf("JWT configuration error: %v", err)
	}

	db, err := database.Connect(database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "crewops_user"),
		Password:   utils.Getenv("DB_PASSWORD", "crewops_password"),
		Name:       utils.Getenv("DB_NAME", "crewops_db"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
	})
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer db.Close()
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	// CORS configuration
	var allowedOrigins []string
	if originsEnv := utils.Getenv("CORS_ALLOWED_ORIGINS", ""); originsEnv != "" {
		allowedOrigins = strings.Split(originsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, db)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
