package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/websearch-mcp/internal/healthcheck"
)

type HealthHandler struct {
	logger *slog.Logger
	runner *healthcheck.Runner
}

func NewHealthHandler(log *slog.Logger, runner *healthcheck.Runner) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{
		logger: log.With(slog.String("handler", "health")),
		runner: runner,
	}
}

func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
}

// Health reports every runtime check. Any failed check answers 503.
func (h *HealthHandler) Health(c echo.Context) error {
	report := h.runner.Run(c.Request().Context())
	status := http.StatusOK
	if report.Status == healthcheck.StatusError {
		h.logger.Warn("health check failed")
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, report)
}
