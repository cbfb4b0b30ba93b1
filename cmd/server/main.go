package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"parking_system/internal/allocation" // Spot allocation core
	"parking_system/internal/api"        // HTTP handlers
	"parking_system/internal/auth"       // Identity and session services
	"parking_system/internal/config"     // Configuration
	"parking_system/internal/db"         // Schema migration and admin bootstrap
	"parking_system/internal/lots"       // Lot administration service
	"parking_system/internal/middleware" // Session middleware
	"parking_system/internal/store"      // GORM persistence layer

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	gormDB, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Migrate the schema and seed the bootstrap admin if absent
	if err := db.MigrateDB(gormDB); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Setup Redis client for sessions and the availability cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire services over the shared store
	st := store.New(gormDB)
	users := auth.NewService(st)
	sessions := auth.NewSessionStore(redisClient)
	alloc := allocation.NewService(st)
	lotSvc := lots.NewService(st)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}
	r.LoadHTMLGlob("templates/*") // HTML pages

	// Public routes
	r.GET("/", api.IndexHandler())
	r.GET("/login", api.LoginPageHandler())
	r.POST("/login", api.LoginHandler(users, sessions, cfg.SessionSecret))
	r.GET("/register", api.RegisterPageHandler())
	r.POST("/register", api.RegisterHandler(users))
	r.GET("/logout", api.LogoutHandler(sessions, cfg.SessionSecret))

	// Admin routes (admin session required)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin(sessions, cfg.SessionSecret))
	adminGroup.GET("/dashboard", api.AdminDashboardHandler(lotSvc, redisClient))
	adminGroup.GET("/create_lot", api.CreateLotPageHandler())
	adminGroup.POST("/create_lot", api.CreateLotHandler(lotSvc, redisClient))
	adminGroup.GET("/edit_lot/:id", api.EditLotPageHandler(lotSvc))
	adminGroup.POST("/edit_lot/:id", api.EditLotHandler(lotSvc, redisClient))
	adminGroup.GET("/delete_lot/:id", api.DeleteLotHandler(lotSvc, redisClient))
	adminGroup.GET("/view_spots/:id", api.ViewSpotsHandler(lotSvc))

	// User routes (non-admin session required)
	userGroup := r.Group("/user")
	userGroup.Use(middleware.RequireUser(sessions, cfg.SessionSecret))
	userGroup.GET("/dashboard", api.UserDashboardHandler(alloc, lotSvc, redisClient))
	userGroup.POST("/book_spot/:lotID", api.BookSpotHandler(alloc, redisClient))
	userGroup.GET("/release_spot/:spotID", api.ReleaseSpotHandler(alloc, redisClient))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server
}
