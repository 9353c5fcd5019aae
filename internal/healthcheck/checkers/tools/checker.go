package toolschecker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/memohai/websearch-mcp/internal/healthcheck"
	"github.com/memohai/websearch-mcp/internal/mcp"
)

const (
	checkTypeTool       = "mcp.tool"
	defaultCheckTimeout = 8 * time.Second
)

// ToolLister lists the tools the server currently exposes.
type ToolLister interface {
	ListTools(ctx context.Context, session mcp.ToolSessionContext) ([]mcp.ToolDescriptor, error)
}

// Checker verifies that every expected tool is registered.
type Checker struct {
	logger   *slog.Logger
	tools    ToolLister
	expected []string
	timeout  time.Duration
}

func NewChecker(log *slog.Logger, tools ToolLister, expected ...string) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger:   log.With(slog.String("checker", "healthcheck_tools")),
		tools:    tools,
		expected: expected,
		timeout:  defaultCheckTimeout,
	}
}

func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	if c.tools == nil {
		return []healthcheck.CheckResult{
			{
				ID:      checkTypeTool + ".service",
				Type:    checkTypeTool,
				Status:  healthcheck.StatusWarn,
				Summary: "Tool checker service is not available.",
				Detail:  "tool lister is nil",
			},
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tools, err := c.tools.ListTools(probeCtx, mcp.ToolSessionContext{Transport: "healthcheck"})
	if err != nil {
		c.logger.Warn("tools healthcheck list tools failed", slog.Any("error", err))
		return []healthcheck.CheckResult{
			{
				ID:      checkTypeTool + ".list",
				Type:    checkTypeTool,
				Status:  healthcheck.StatusError,
				Summary: "Failed to list tools.",
				Detail:  err.Error(),
			},
		}
	}

	registered := make(map[string]struct{}, len(tools))
	for _, tool := range tools {
		registered[strings.TrimSpace(tool.Name)] = struct{}{}
	}

	results := make([]healthcheck.CheckResult, 0, len(c.expected))
	for _, name := range c.expected {
		item := healthcheck.CheckResult{
			ID:       checkTypeTool + "." + name,
			Type:     checkTypeTool,
			Status:   healthcheck.StatusOK,
			Summary:  fmt.Sprintf("Tool %q is registered.", name),
			Metadata: map[string]any{"tool_count": len(tools)},
		}
		if _, ok := registered[name]; !ok {
			item.Status = healthcheck.StatusError
			item.Summary = fmt.Sprintf("Tool %q is not registered.", name)
		}
		results = append(results, item)
	}
	return results
}
