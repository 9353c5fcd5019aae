package strategy

import (
	"context"
	"log/slog"

	mcpgw "github.com/memohai/websearch-mcp/internal/mcp"
)

// ToolName is the MCP name of the strategy lookup tool.
const ToolName = "get_strategy"

// Resolver is implemented by strategies.Service.
type Resolver interface {
	Resolve(ctx context.Context, strategyName string, industry *string) any
}

type Executor struct {
	logger   *slog.Logger
	resolver Resolver
}

func NewExecutor(log *slog.Logger, resolver Resolver) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		logger:   log.With(slog.String("provider", "strategy_tool")),
		resolver: resolver,
	}
}

func (p *Executor) ListTools(ctx context.Context, session mcpgw.ToolSessionContext) ([]mcpgw.ToolDescriptor, error) {
	if p.resolver == nil {
		return []mcpgw.ToolDescriptor{}, nil
	}
	return []mcpgw.ToolDescriptor{
		{
			Name: ToolName,
			Description: "Look up a search strategy by name (case-insensitive). " +
				"Without industry, returns the strategy's focus pool; with industry (exact match), returns that industry's focus areas.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"strategy_name": map[string]any{"type": "string", "description": "Strategy type, e.g. sub_industry"},
					"industry": map[string]any{
						"type":        []string{"string", "null"},
						"description": "Industry key inside the strategy's focus pool",
						"default":     nil,
					},
				},
				"required": []string{"strategy_name"},
			},
		},
	}, nil
}

func (p *Executor) CallTool(ctx context.Context, session mcpgw.ToolSessionContext, toolName string, arguments map[string]any) (map[string]any, error) {
	if toolName != ToolName {
		return nil, mcpgw.ErrToolNotFound
	}
	if p.resolver == nil {
		return mcpgw.BuildToolErrorResult("strategy tools are not available"), nil
	}
	name, err := mcpgw.OptionalStringArg(arguments, "strategy_name")
	if err != nil {
		return mcpgw.BuildToolSuccessResult(mcpgw.ErrorPayload(err.Error())), nil
	}
	if name == nil {
		return mcpgw.BuildToolSuccessResult(mcpgw.ErrorPayload("strategy_name is required")), nil
	}
	industry, err := mcpgw.OptionalStringArg(arguments, "industry")
	if err != nil {
		return mcpgw.BuildToolSuccessResult(mcpgw.ErrorPayload(err.Error())), nil
	}
	log := p.logger.With(slog.String("call_id", session.CallID), slog.String("strategy", *name))
	if industry != nil {
		log = log.With(slog.String("industry", *industry))
	}
	log.Info("get_strategy called")
	return mcpgw.BuildToolSuccessResult(p.resolver.Resolve(ctx, *name, industry)), nil
}
