package app

import (
	"context"
	"time"

	"tasktracker/internal/cache"
	"tasktracker/internal/config"
	"tasktracker/internal/dto"
	"tasktracker/internal/handlers"
	"tasktracker/internal/repo"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Setup registers all routes on the given engine.
//
// Four task route families survive from earlier API generations; they are
// adapter policies over the one service, see handlers.LegacyTaskHandler.
func Setup(r *gin.Engine, cfg config.Config, store repo.Store, rdb *redis.Client, log *zap.SugaredLogger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	var taskCache *cache.TaskCache
	if rdb != nil {
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	}
	svc := service.NewTaskService(store, taskCache, log)
	h := handlers.NewTaskHandler(svc)
	legacy := handlers.NewLegacyTaskHandler(svc)

	v1 := r.Group("/api/v1")
	v1.GET("/health", apiHealthHandler(store))
	v1.POST("/tasks", h.Create)
	v1.GET("/tasks", h.List)
	v1.GET("/tasks/:id", h.GetByID)
	v1.PATCH("/tasks/:id", h.Update)
	v1.PUT("/tasks/:id", h.Update)
	v1.DELETE("/tasks/:id", h.Delete)

	api := r.Group("/api")
	api.GET("/tasks/filter", h.Filter)
	api.POST("/tasks", legacy.Create)
	api.GET("/tasks", legacy.List)
	api.GET("/tasks/:id", legacy.GetByID)
	api.PATCH("/tasks/:id", legacy.Update)
	api.PUT("/tasks/:id", legacy.Update)
	api.DELETE("/tasks/:id", legacy.Delete)

	r.GET("/tasks", legacy.ListActive)
	r.POST("/tasks", legacy.Create)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, dto.OK(gin.H{
			"status":      "healthy",
			"app_name":    cfg.App.Name,
			"api_version": cfg.App.Version,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}))
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

// apiHealthHandler probes storage connectivity, mirroring the root health
// payload plus a database field.
func apiHealthHandler(store repo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "connected"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			dbStatus = "error: " + err.Error()
		}
		c.JSON(200, dto.OK(gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}))
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
