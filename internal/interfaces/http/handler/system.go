package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name        string
	version     string
	integration bool
	startTime   time.Time
	database    Pinger
}

// SystemHandlerConfig describes the running service
type SystemHandlerConfig struct {
	Name    string
	Version string
	// IntegrationConfigured reports whether the ERP gateway is wired.
	IntegrationConfigured bool
	// Database is optional.
	Database Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(cfg SystemHandlerConfig) *SystemHandler {
	return &SystemHandler{
		name:        cfg.Name,
		version:     cfg.Version,
		integration: cfg.IntegrationConfigured,
		startTime:   time.Now(),
		database:    cfg.Database,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	GoVersion   string `json:"go_version"`
	Uptime      string `json:"uptime"`
	Integration string `json:"integration"`
}

// GetSystemInfo handles GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	integration := "not_configured"
	if h.integration {
		integration = "configured"
	}
	h.Success(c, SystemInfoResponse{
		Name:        h.name,
		Version:     h.version,
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Integration: integration,
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping handles GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Health handles GET /health. It reports unhealthy only when a configured
// database does not answer.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.database.Ping(ctx); err != nil {
			resp["status"] = "unhealthy"
			resp["database"] = "error"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp["database"] = "ok"
	}
	c.JSON(http.StatusOK, resp)
}

