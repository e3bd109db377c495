package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"taskplanner/internal/cache"
	"taskplanner/internal/config"
	"taskplanner/internal/database"
	"taskplanner/internal/handlers"
	"taskplanner/internal/identity"
	"taskplanner/internal/middleware"
	"taskplanner/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.LoadTaskConfig()
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
	if err := database.MigrateTask(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	verifier := identity.NewClient(cfg.AuthServiceURL, cfg.AuthTimeout)

	taskHandler := handlers.NewTaskHandler(db, services.NewTaskService())
	tagHandler := handlers.NewTagHandler(db, services.NewTagService())

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

	authenticated := r.Group("/", middleware.RequireIdentity(verifier))

	tasks := authenticated.Group("/tasks")
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/search", taskHandler.Search)
	tasks.GET("/overdue", taskHandler.Overdue)
	tasks.GET("/by-deadline", taskHandler.ByDeadlineRange)
	tasks.GET("/by-deadline/:day", taskHandler.ByDeadlineDay)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)
	tasks.PATCH("/:id/complete", taskHandler.Complete)
	tasks.GET("/:id/tags", taskHandler.Tags)
	tasks.PATCH("/:id/add_tags", taskHandler.AddTags)
	tasks.PATCH("/:id/shift_deadline", taskHandler.ShiftDeadline)

	tags := authenticated.Group("/tags")
	tags.POST("", tagHandler.Create)
	tags.GET("", tagHandler.List)
	tags.GET("/search", tagHandler.Search)
	tags.GET("/:id", tagHandler.Get)
	tags.PATCH("/:id", tagHandler.Update)
	tags.DELETE("/:id", tagHandler.Delete)
	tags.GET("/:id/tasks", tagHandler.Tasks)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("task service listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// rateLimiter prefers the shared Redis window when an address is
// configured and falls back to per-process token buckets otherwise.
func rateLimiter(cfg *config.TaskConfig) gin.HandlerFunc {
	if cfg.Redis.Addr != "" {
		client := cache.NewClient(cfg.Redis)
		return middleware.RateLimit(cache.NewLimiter(client, cfg.RateLimit.RequestsPerMin, time.Minute))
	}
	return middleware.RateLimitInMemory(context.Background(), cfg.RateLimit)
}
