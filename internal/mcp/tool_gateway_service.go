package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ToolGatewayService routes tools/list and tools/call to executors.
type ToolGatewayService struct {
	logger    *slog.Logger
	executors []ToolExecutor
	inFlight  atomic.Int64
}

func NewToolGatewayService(log *slog.Logger, executors []ToolExecutor) *ToolGatewayService {
	if log == nil {
		log = slog.Default()
	}
	filtered := make([]ToolExecutor, 0, len(executors))
	for _, executor := range executors {
		if executor != nil {
			filtered = append(filtered, executor)
		}
	}
	return &ToolGatewayService{
		logger:    log.With(slog.String("service", "tool_gateway")),
		executors: filtered,
	}
}

func (s *ToolGatewayService) ListTools(ctx context.Context, session ToolSessionContext) ([]ToolDescriptor, error) {
	return s.buildRegistry(ctx, session).List(), nil
}

// CallTool never returns executor failures as errors: they become MCP error
// results so the calling agent can decide what to do next.
func (s *ToolGatewayService) CallTool(ctx context.Context, session ToolSessionContext, payload ToolCallPayload) (map[string]any, error) {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	toolName := strings.TrimSpace(payload.Name)
	if toolName == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if session.CallID == "" {
		session.CallID = uuid.NewString()
	}
	log := s.logger.With(slog.String("tool", toolName), slog.String("call_id", session.CallID))

	executor, _, ok := s.buildRegistry(ctx, session).Lookup(toolName)
	if !ok {
		log.Warn("unknown tool requested")
		return BuildToolErrorResult("tool not found: " + toolName), nil
	}

	arguments := payload.Arguments
	if arguments == nil {
		arguments = map[string]any{}
	}
	started := time.Now()
	result, err := executor.CallTool(ctx, session, toolName, arguments)
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return BuildToolErrorResult("tool not found: " + toolName), nil
		}
		log.Error("tool call failed", slog.Duration("elapsed", time.Since(started)), slog.Any("error", err))
		return BuildToolErrorResult(err.Error()), nil
	}
	log.Debug("tool call finished", slog.Duration("elapsed", time.Since(started)))
	if result == nil {
		return BuildToolSuccessResult(map[string]any{"ok": true}), nil
	}
	return result, nil
}

// InFlight reports how many tool calls are currently executing.
func (s *ToolGatewayService) InFlight() int64 {
	return s.inFlight.Load()
}

func (s *ToolGatewayService) buildRegistry(ctx context.Context, session ToolSessionContext) *ToolRegistry {
	registry := NewToolRegistry()
	for _, executor := range s.executors {
		tools, err := executor.ListTools(ctx, session)
		if err != nil {
			s.logger.Warn("list tools from executor failed", slog.Any("error", err))
			continue
		}
		for _, tool := range tools {
			if err := registry.Register(executor, tool); err != nil {
				s.logger.Warn("skip duplicated/invalid tool", slog.String("tool", tool.Name), slog.Any("error", err))
			}
		}
	}
	return registry
}
