package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"taskplanner/internal/auth"
	"taskplanner/internal/cache"
	"taskplanner/internal/config"
	"taskplanner/internal/database"
	"taskplanner/internal/handlers"
	"taskplanner/internal/middleware"
	"taskplanner/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.LoadAuthConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.MigrateAuth(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("failed to create token issuer: %v", err)
	}

	registerHandler := handlers.NewRegisterHandler(db, services.NewRegisterService(cfg.BCryptCost))
	authHandler := handlers.NewAuthHandler(db, services.NewAuthService(issuer))

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.RequestID())
	r.Use(cors.Default())
	if cfg.RateLimit.Enabled {
		r.Use(rateLimiter(cfg))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := r.Group("/auth")
	group.POST("/register", registerHandler.Register)
	group.POST("/login", authHandler.Login)
	group.GET("/me", authHandler.Me)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("auth service listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// rateLimiter prefers the shared Redis window when an address is
// configured and falls back to per-process token buckets otherwise.
func rateLimiter(cfg *config.AuthConfig) gin.HandlerFunc {
	if cfg.Redis.Addr != "" {
		client := cache.NewClient(cfg.Redis)
		return middleware.RateLimit(cache.NewLimiter(client, cfg.RateLimit.RequestsPerMin, time.Minute))
	}
	return middleware.RateLimitInMemory(context.Background(), cfg.RateLimit)
}
