package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erp/console/internal/interfaces/http/dto"
)

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	apiURL    string
	startTime time.Time
}

// NewSystemHandler creates a system handler
func NewSystemHandler(name, version, apiURL string) *SystemHandler {
	return &SystemHandler{name: name, version: version, apiURL: apiURL, startTime: time.Now()}
}

// HealthResponse is the health probe body
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	API       string `json:"api"`
	Uptime    string `json:"uptime"`
}

// Health reports liveness. It never calls the remote API.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		API:       h.apiURL,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}
