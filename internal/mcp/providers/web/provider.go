package web

import (
	"context"
	"log/slog"

	mcpgw "github.com/memohai/websearch-mcp/internal/mcp"
	"github.com/memohai/websearch-mcp/internal/searchproviders"
)

// ToolName is the MCP name of the search tool.
const ToolName = "web_search"

// Searcher is the subset of searchproviders.Service used by the executor.
type Searcher interface {
	Search(ctx context.Context, req searchproviders.SearchRequest) (any, error)
	ListMeta() []searchproviders.ProviderMeta
}

type Executor struct {
	logger   *slog.Logger
	searcher Searcher
}

func NewExecutor(log *slog.Logger, searcher Searcher) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		logger:   log.With(slog.String("provider", "web_tool")),
		searcher: searcher,
	}
}

func (p *Executor) ListTools(ctx context.Context, session mcpgw.ToolSessionContext) ([]mcpgw.ToolDescriptor, error) {
	if p.searcher == nil {
		return []mcpgw.ToolDescriptor{}, nil
	}
	providers := []string{}
	for _, meta := range p.searcher.ListMeta() {
		providers = append(providers, meta.Provider)
	}
	return []mcpgw.ToolDescriptor{
		{
			Name:        ToolName,
			Description: "Search the web using Tavily or Serper. Returns the provider's JSON response.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "Search query"},
					"country": map[string]any{
						"type":        []string{"string", "null"},
						"description": "Alpha-2 country code, e.g. \"US\" or \"HK\" (Serper only)",
						"default":     nil,
					},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Results limit",
						"default":     searchproviders.DefaultMaxResults,
					},
					"provider": map[string]any{
						"type":        "string",
						"description": "Search provider: " + joinQuoted(providers),
						"default":     string(searchproviders.DefaultProvider),
					},
				},
				"required": []string{"query"},
			},
		},
	}, nil
}

func (p *Executor) CallTool(ctx context.Context, session mcpgw.ToolSessionContext, toolName string, arguments map[string]any) (map[string]any, error) {
	if toolName != ToolName {
		return nil, mcpgw.ErrToolNotFound
	}
	if p.searcher == nil {
		return mcpgw.BuildToolErrorResult("web tools are not available"), nil
	}
	req, msg := parseSearchArguments(arguments)
	if msg != "" {
		return mcpgw.BuildToolSuccessResult(mcpgw.ErrorPayload(msg)), nil
	}
	p.logger.Debug("web_search arguments parsed",
		slog.String("call_id", session.CallID),
		slog.String("provider", req.Provider),
		slog.Int("max_results", req.MaxResults),
	)
	result, err := p.searcher.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcpgw.BuildToolSuccessResult(result), nil
}

// parseSearchArguments applies defaults for absent arguments. String values
// are forwarded exactly as sent. A non-empty message means the arguments are
// malformed.
func parseSearchArguments(arguments map[string]any) (searchproviders.SearchRequest, string) {
	req := searchproviders.SearchRequest{
		MaxResults: searchproviders.DefaultMaxResults,
		Provider:   string(searchproviders.DefaultProvider),
	}
	query, err := mcpgw.OptionalStringArg(arguments, "query")
	if err != nil {
		return req, err.Error()
	}
	if query != nil {
		req.Query = *query
	}
	country, err := mcpgw.OptionalStringArg(arguments, "country")
	if err != nil {
		return req, err.Error()
	}
	req.Country = country
	if value, ok, err := mcpgw.IntArg(arguments, "max_results"); err != nil {
		return req, err.Error()
	} else if ok {
		req.MaxResults = value
	}
	provider, err := mcpgw.OptionalStringArg(arguments, "provider")
	if err != nil {
		return req, err.Error()
	}
	if provider != nil {
		req.Provider = *provider
	}
	return req, ""
}

func joinQuoted(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += " or "
		}
		out += "'" + v + "'"
	}
	return out
}
