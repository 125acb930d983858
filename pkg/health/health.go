// Package health provides health check endpoints for the poppy API.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
)

const checkTimeout = 5 * time.Second

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Response represents a health check response
type Response struct {
	Status     Status                 `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Uptime     string                 `json:"uptime,omitempty"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
	ReportedAt time.Time              `json:"reported_at"`
}

// Pinger is anything that can tell whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker provides health check functionality
type Checker struct {
	db        database.DB
	llm       Pinger
	logger    ectologger.Logger
	startTime time.Time
	version   string
	mu        sync.RWMutex
	ready     bool
}

// NewChecker creates a new health checker. llm may be nil.
func NewChecker(db database.DB, llm Pinger, version string, logger ectologger.Logger) *Checker {
	return &Checker{
		db:        db,
		llm:       llm,
		logger:    logger,
		startTime: time.Now(),
		version:   version,
	}
}

// SetReady marks the service as ready to receive traffic
func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// DBStatus runs a trivial statement on a fresh connection and reports ok or down.
func (c *Checker) DBStatus(ctx context.Context) string {
	if err := c.pingDatabase(ctx); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("database health check failed")
		return models.HealthDown
	}
	return models.HealthOK
}

func (c *Checker) pingDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	conn, err := c.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var one int
	return conn.GetContext(ctx, &one, "SELECT 1")
}

// DBHealthHandler serves GET /db_health. It always answers 200.
func (c *Checker) DBHealthHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.HealthResponse{Status: c.DBStatus(ctx.Request().Context())})
}

// LivenessHandler reports that the process is up.
func (c *Checker) LivenessHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, Response{
		Status:     StatusHealthy,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
		ReportedAt: time.Now(),
	})
}

// ReadinessHandler reports whether startup finished and dependencies answer.
func (c *Checker) ReadinessHandler(ctx echo.Context) error {
	if !c.IsReady() {
		return ctx.JSON(http.StatusServiceUnavailable, Response{
			Status:     StatusUnhealthy,
			Version:    c.version,
			ReportedAt: time.Now(),
			Checks: map[string]CheckResult{
				"startup": {Status: StatusUnhealthy, Message: "service is still starting up"},
			},
		})
	}

	return c.HealthHandler(ctx)
}

// HealthHandler returns a detailed health check
func (c *Checker) HealthHandler(ctx echo.Context) error {
	checks := c.runChecks(ctx.Request().Context())
	overallStatus := calculateOverallStatus(checks)

	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return ctx.JSON(statusCode, Response{
		Status:     overallStatus,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
		Checks:     checks,
		ReportedAt: time.Now(),
	})
}

func (c *Checker) runChecks(ctx context.Context) map[string]CheckResult {
	return map[string]CheckResult{
		"database": c.checkDatabase(ctx),
		"llm":      c.checkLLM(ctx),
	}
}

func (c *Checker) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()
	if err := c.pingDatabase(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: err.Error(),
			Latency: time.Since(start).String(),
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Latency: time.Since(start).String(),
	}
}

// checkLLM only degrades the service, direct SQL keeps working without it.
func (c *Checker) checkLLM(ctx context.Context) CheckResult {
	if c.llm == nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "llm not configured",
		}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.llm.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: err.Error(),
			Latency: time.Since(start).String(),
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Latency: time.Since(start).String(),
	}
}

func calculateOverallStatus(checks map[string]CheckResult) Status {
	hasDegraded := false
	for _, check := range checks {
		switch check.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// RegisterRoutes registers /db_health and the /api/v1/health probes
func (c *Checker) RegisterRoutes(e *echo.Echo) {
	e.GET("/db_health", c.DBHealthHandler)

	health := e.Group("/api/v1/health")
	health.GET("", c.HealthHandler)
	health.GET("/live", c.LivenessHandler)
	health.GET("/ready", c.ReadinessHandler)
}
