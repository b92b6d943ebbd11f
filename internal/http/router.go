package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggerMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(gin.Recovery())

	var health *HealthController
	if cfg.Sessions != nil {
		health = NewHealthController(cfg.Sessions.Registry(), cfg.Version)
	} else {
		health = NewHealthController(nil, cfg.Version)
	}

	// Health and metrics endpoints carry no session
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if cfg.Sessions != nil {
		api.Use(cfg.Sessions.Middleware())
	}

	books := NewBooksController(cfg.FetchTimeout)
	book := NewBookController(cfg.FetchTimeout)

	// List-search endpoints
	api.GET("/books", books.Search)
	api.GET("/books/state", books.State)
	api.PUT("/books/page", books.SetPage)
	api.POST("/books/page/reset", books.ResetPage)

	// Detail endpoints
	api.GET("/book", book.FetchOne)
	api.GET("/book/state", book.State)

	api.GET("/state", RootState)

	return router
}
