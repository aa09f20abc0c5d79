package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hantverkarai/hantverkar-api/config"
	"github.com/hantverkarai/hantverkar-api/controllers"
	"github.com/hantverkarai/hantverkar-api/middleware"
	"github.com/hantverkarai/hantverkar-api/models"
	"github.com/hantverkarai/hantverkar-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Hantverkar API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.Offer{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize the text-generation provider client
	services.InitOpenAIService(cfg)
	if cfg.OpenAIAPIKey == "" {
		log.Println("OPENAI_API_KEY not set; assist endpoints will serve template fallbacks")
	}

	// Initialize attachment storage
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitAttachmentService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set; offer photo endpoints are disabled")
	}

	// Initialize Gin router
	router := gin.Default()

	// CORS for the web client
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Everything below requires a valid token
		authorized := v1.Group("")
		authorized.Use(middleware.EnsureValidToken(cfg))
		{
			// Profiles
			authorized.POST("/users", controllers.CreateUser)
			authorized.GET("/users/me", controllers.GetMyProfile)
			authorized.PUT("/users/me", controllers.UpdateMyProfile)

			// Offers
			authorized.POST("/offers", controllers.CreateOffer)
			authorized.GET("/offers", controllers.ListOffers)
			authorized.PUT("/offers/:id", controllers.UpdateOffer)
			authorized.PATCH("/offers/:id/status", controllers.UpdateOfferStatus)
			authorized.DELETE("/offers/:id", controllers.DeleteOffer)

			// Offer photos
			authorized.POST("/offers/:id/photo", controllers.UploadOfferPhoto)
			authorized.DELETE("/offers/:id/photo", controllers.DeleteOfferPhoto)

			// Assisted content
			authorized.POST("/assist/description", controllers.DraftDescription)
			authorized.POST("/assist/materials", controllers.SuggestMaterials)
		}
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Hantverkar API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
