package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booksearch/internal/sessions"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Version  string `json:"version,omitempty"`
	Sessions int    `json:"sessions"`
}

type HealthController struct {
	registry *sessions.Registry
	version  string
}

func NewHealthController(registry *sessions.Registry, version string) *HealthController {
	return &HealthController{
		registry: registry,
		version:  version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	health := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
	}
	if h.registry != nil {
		health.Sessions = h.registry.Len()
	}

	c.IndentedJSON(http.StatusOK, health)
}
