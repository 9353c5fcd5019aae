package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	mcpgw "github.com/memohai/websearch-mcp/internal/mcp"
)

// MCPHandler exposes the tool gateway as a streamable HTTP MCP endpoint.
type MCPHandler struct {
	logger  *slog.Logger
	handler http.Handler
}

func NewMCPHandler(log *slog.Logger, gateway *mcpgw.ToolGatewayService) *MCPHandler {
	if log == nil {
		log = slog.Default()
	}
	h := &MCPHandler{logger: log.With(slog.String("handler", "mcp"))}
	if gateway != nil {
		h.handler = mcpgw.NewStreamableHTTPHandler(h.logger, gateway)
	}
	return h
}

func (h *MCPHandler) Register(e *echo.Echo) {
	e.POST("/mcp", h.HandleMCP)
	e.GET("/mcp", h.HandleMCP)
	e.DELETE("/mcp", h.HandleMCP)
}

// HandleMCP serves JSON-RPC requests for tools/list and tools/call.
func (h *MCPHandler) HandleMCP(c echo.Context) error {
	if h.handler == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "tool gateway not configured")
	}
	req := c.Request()
	ensureStreamableAcceptHeader(req)
	h.handler.ServeHTTP(c.Response().Writer, req)
	return nil
}

// ensureStreamableAcceptHeader lets plain JSON clients talk to the
// streamable transport, which insists on both media types.
func ensureStreamableAcceptHeader(req *http.Request) {
	if req == nil {
		return
	}
	acceptValues := req.Header.Values("Accept")
	joined := strings.ToLower(strings.Join(acceptValues, ","))
	hasJSON := strings.Contains(joined, "application/json") || strings.Contains(joined, "application/*") || strings.Contains(joined, "*/*")
	hasStream := strings.Contains(joined, "text/event-stream") || strings.Contains(joined, "text/*") || strings.Contains(joined, "*/*")
	if hasJSON && hasStream {
		return
	}

	base := strings.TrimSpace(strings.Join(acceptValues, ","))
	parts := make([]string, 0, 3)
	if base != "" {
		parts = append(parts, base)
	}
	if !hasJSON {
		parts = append(parts, "application/json")
	}
	if !hasStream {
		parts = append(parts, "text/event-stream")
	}
	req.Header.Set("Accept", strings.Join(parts, ", "))
}
