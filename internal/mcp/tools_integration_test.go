package mcp_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/websearch-mcp/internal/config"
	mcpgw "github.com/memohai/websearch-mcp/internal/mcp"
	"github.com/memohai/websearch-mcp/internal/mcp/providers/strategy"
	"github.com/memohai/websearch-mcp/internal/mcp/providers/web"
	"github.com/memohai/websearch-mcp/internal/searchproviders"
	"github.com/memohai/websearch-mcp/internal/strategies"
)

func newToolSession(t *testing.T, search config.SearchConfig) *sdkmcp.ClientSession {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := mcpgw.NewToolGatewayService(log, []mcpgw.ToolExecutor{
		web.NewExecutor(log, searchproviders.NewService(log, search)),
		strategy.NewExecutor(log, strategies.NewService(log, strategies.NewBundledStore())),
	})

	ctx := context.Background()
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := mcpgw.NewSDKServer(gateway, "memory").Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "integration", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func textOf(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestToolsAreListed(t *testing.T) {
	session := newToolSession(t, config.SearchConfig{})
	listed, err := session.ListTools(context.Background(), &sdkmcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"web_search", "get_strategy"}, names)
}

func TestWebSearchInBandErrors(t *testing.T) {
	session := newToolSession(t, config.SearchConfig{})
	ctx := context.Background()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "web_search",
		Arguments: map[string]any{"query": "q", "provider": "bing"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"error":"Unsupported provider. Use 'serper' or 'tavily'."}`, textOf(t, res))

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "web_search",
		Arguments: map[string]any{"query": "q"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"error":"Missing SERPER_API_KEY env var"}`, textOf(t, res))
}

func TestWebSearchPassThroughAndFault(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		_, _ = io.WriteString(w, `{"organic":[{"title":"Go","position":1}]}`)
	}))
	t.Cleanup(upstream.Close)

	session := newToolSession(t, config.SearchConfig{SerperAPIKey: "srp", SerperURL: upstream.URL})
	ctx := context.Background()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "web_search",
		Arguments: map[string]any{"query": "golang", "country": "US"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"organic":[{"title":"Go","position":1}]}`, textOf(t, res))

	status.Store(http.StatusInternalServerError)
	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "web_search",
		Arguments: map[string]any{"query": "golang"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "HTTP 500")
}

func TestGetStrategyBundled(t *testing.T) {
	session := newToolSession(t, config.SearchConfig{})
	ctx := context.Background()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_strategy",
		Arguments: map[string]any{"strategy_name": "Sub_Industry", "industry": "Fintech"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "BNPL")

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_strategy",
		Arguments: map[string]any{"strategy_name": "unknown"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t,
		`{"error":"Strategy 'unknown' not found","available_strategies":["sub_industry","problem_based","persona_based"]}`,
		textOf(t, res))
}
