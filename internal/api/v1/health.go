// internal/api/v1/health.go
package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/shirou/gopsutil/v3/process"
)

// healthPingTimeout bounds the database ping of one health request.
const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Database      DatabaseHealth    `json:"database"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Memory        *MemoryStats      `json:"memory,omitempty"`
	Build         map[string]string `json:"build"`
	Timestamp     string            `json:"timestamp"`
}

// DatabaseHealth reports the ping result.
type DatabaseHealth struct {
	Status  string `json:"status"`
	Dialect string `json:"dialect,omitempty"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MemoryStats is the resident and virtual size of this process.
type MemoryStats struct {
	RSS uint64 `json:"rss_bytes"`
	VMS uint64 `json:"vms_bytes"`
}

// HealthCheck handles the API health check endpoint. It answers 503 when
// the database does not respond.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)
	resp := HealthResponse{
		Status:        "healthy",
		Database:      DatabaseHealth{Status: "unknown"},
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Memory:        processMemory(ctx.Request().Context()),
		Build:         c.build.Map(),
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	status := http.StatusOK
	if c.store != nil {
		resp.Database.Dialect = c.store.Dialect()

		pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthPingTimeout)
		defer cancel()

		start := time.Now()
		if err := c.store.Ping(pingCtx); err != nil {
			resp.Status = "unhealthy"
			resp.Database.Status = "unreachable"
			resp.Database.Error = err.Error()
			status = http.StatusServiceUnavailable
			c.log.Warn("health check failed", logger.Error(err))
		} else {
			resp.Database.Status = "ok"
			resp.Database.Latency = time.Since(start).String()
		}
	}

	return ctx.JSON(status, resp)
}

// processMemory returns nil when the platform does not expose the numbers.
func processMemory(ctx context.Context) *MemoryStats {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return nil
	}
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil || mem == nil {
		return nil
	}
	return &MemoryStats{RSS: mem.RSS, VMS: mem.VMS}
}
