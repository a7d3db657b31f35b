package controller

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/infra/buildinfo"
)

// HealthCheck returns nil when a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthController serves the operational endpoints.
type HealthController struct {
	checks map[string]HealthCheck
	clock  adapter.Clock
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
	Timestamp    string            `json:"timestamp"`
}

type PackagesResponse struct {
	Packages map[string]string `json:"packages"`
}

// NewHealthController creates the controller. checks is keyed by dependency
// name, such as "database".
func NewHealthController(checks map[string]HealthCheck, clock adapter.Clock) *HealthController {
	return &HealthController{checks: checks, clock: clock}
}

// Check handles GET /health. A failing dependency makes the status
// "degraded" but the answer stays 200.
func (h *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{
		Status:       "ok",
		Dependencies: make(map[string]string, len(names)),
		Timestamp:    h.clock.Now().Format(time.RFC3339),
	}
	for _, name := range names {
		state := "connected"
		if err := h.checks[name](ctx); err != nil {
			state = "disconnected"
			resp.Status = "degraded"
		}
		resp.Dependencies[name] = state
	}
	c.JSON(http.StatusOK, resp)
}

// Packages handles GET /debug/packages. ?name=<module path> narrows the
// answer to one module and returns 404 when it is not in the binary.
func (h *HealthController) Packages(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		version, ok := buildinfo.PackageVersion(name)
		if !ok {
			c.JSON(http.StatusNotFound, PackagesResponse{Packages: map[string]string{}})
			return
		}
		c.JSON(http.StatusOK, PackagesResponse{Packages: map[string]string{name: version}})
		return
	}
	c.JSON(http.StatusOK, PackagesResponse{Packages: buildinfo.Packages()})
}
