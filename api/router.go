// api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/arteesan-backend/api/handlers"
	"github.com/Annany2002/arteesan-backend/api/middleware"
	"github.com/Annany2002/arteesan-backend/config"
	"github.com/Annany2002/arteesan-backend/internal/core"
	"github.com/Annany2002/arteesan-backend/internal/domain"
	"github.com/Annany2002/arteesan-backend/internal/storage"
)

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(store storage.DocumentStore, cfg *config.Config, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg)))

	if cfg.RateLimitPerMinute > 0 {
		ratelimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		router.Use(middleware.RateLimitMiddleware(ratelimiter))
	}
	router.Use(middleware.Metrics())
	// Innermost, so outer middleware see the status it writes.
	router.Use(middleware.ErrorHandler(log))

	// --- Operational Routes ---
	router.GET("/ping", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			_ = c.Error(err)
			return
		}
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// --- Resource Routes ---
	engine := core.NewEngine(store, log, cfg.DefaultPageSize)
	v1 := router.Group("/v1")
	for _, resource := range domain.Resources() {
		handlers.NewResourceHandler(resource, store, engine, cfg, log).Register(v1)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}
