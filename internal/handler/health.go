package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/invoices/internal/middleware"
	"github.com/deppfellow/invoices/internal/server"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler reports whether the service and its dependencies are
// reachable, for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type dependencyCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                     `json:"status"`
	Timestamp   time.Time                  `json:"timestamp"`
	Environment string                     `json:"environment"`
	Checks      map[string]dependencyCheck `json:"checks"`
}

// CheckHealth pings the database and Redis. Only the database is required:
// without Redis the list view is served uncached, so a Redis failure is
// reported but still answered with 200.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]dependencyCheck{},
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	dbCheck := h.check(ctx, "database", h.server.DB.Pool.Ping)
	response.Checks["database"] = dbCheck
	if dbCheck.Status != "healthy" {
		response.Status = "unhealthy"
	}

	if h.server.Redis != nil {
		response.Checks["redis"] = h.check(ctx, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	if response.Status != "healthy" {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")
		h.recordHealthCheckError("overall", map[string]any{
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) check(ctx context.Context, name string, ping func(context.Context) error) dependencyCheck {
	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.server.Logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check dependency failed")
		h.recordHealthCheckError(name, map[string]any{
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return dependencyCheck{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
	}

	return dependencyCheck{Status: "healthy", ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordHealthCheckError(checkType string, attrs map[string]any) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	attrs["check_type"] = checkType
	attrs["operation"] = "health_check"
	attrs["error_type"] = checkType + "_unhealthy"
	app.RecordCustomEvent("HealthCheckError", attrs)
}
