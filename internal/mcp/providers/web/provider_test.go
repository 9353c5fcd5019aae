package web

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpgw "github.com/memohai/websearch-mcp/internal/mcp"
	"github.com/memohai/websearch-mcp/internal/searchproviders"
)

type fakeSearcher struct {
	calls  int
	last   searchproviders.SearchRequest
	result any
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, req searchproviders.SearchRequest) (any, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

func (f *fakeSearcher) ListMeta() []searchproviders.ProviderMeta {
	return []searchproviders.ProviderMeta{{Provider: "serper"}, {Provider: "tavily"}}
}

func TestExecutor_ListTools_NilSearcher(t *testing.T) {
	exec := NewExecutor(nil, nil)
	tools, err := exec.ListTools(context.Background(), mcpgw.ToolSessionContext{})
	require.NoError(t, err)
	assert.Empty(t, tools)
}

func TestExecutor_ListTools(t *testing.T) {
	exec := NewExecutor(nil, &fakeSearcher{})
	tools, err := exec.ListTools(context.Background(), mcpgw.ToolSessionContext{})
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, ToolName, tools[0].Name)

	props := tools[0].InputSchema["properties"].(map[string]any)
	for _, key := range []string{"query", "country", "max_results", "provider"} {
		assert.Contains(t, props, key)
	}
	provider := props["provider"].(map[string]any)
	assert.Equal(t, "serper", provider["default"])
	assert.Contains(t, provider["description"], "'serper' or 'tavily'")
}

func TestExecutor_CallTool_Defaults(t *testing.T) {
	searcher := &fakeSearcher{result: map[string]any{"organic": []any{}}}
	exec := NewExecutor(nil, searcher)

	result, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{
		"query": "golang generics",
	})
	require.NoError(t, err)

	assert.Equal(t, searchproviders.SearchRequest{
		Query:      "golang generics",
		MaxResults: 5,
		Provider:   "serper",
	}, searcher.last)
	assert.Nil(t, searcher.last.Country)
	assert.Equal(t, map[string]any{"organic": []any{}}, result["structuredContent"])
	assert.NotContains(t, result, "isError")
}

func TestExecutor_CallTool_AllArguments(t *testing.T) {
	searcher := &fakeSearcher{result: map[string]any{}}
	exec := NewExecutor(nil, searcher)

	_, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{
		"query":       "bnpl",
		"country":     "HK",
		"max_results": float64(10),
		"provider":    "TAVILY",
	})
	require.NoError(t, err)

	require.NotNil(t, searcher.last.Country)
	assert.Equal(t, "HK", *searcher.last.Country)
	assert.Equal(t, 10, searcher.last.MaxResults)
	assert.Equal(t, "TAVILY", searcher.last.Provider)
}

func TestExecutor_CallTool_NullCountryAndProvider(t *testing.T) {
	searcher := &fakeSearcher{result: map[string]any{}}
	exec := NewExecutor(nil, searcher)

	_, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{
		"query":    "q",
		"country":  nil,
		"provider": nil,
	})
	require.NoError(t, err)
	assert.Nil(t, searcher.last.Country)
	assert.Equal(t, "serper", searcher.last.Provider)
}

func TestExecutor_CallTool_InBandErrorIsNotToolError(t *testing.T) {
	searcher := &fakeSearcher{result: map[string]any{"error": searchproviders.MsgUnsupportedProvider}}
	exec := NewExecutor(nil, searcher)

	result, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{
		"query":    "q",
		"provider": "bing",
	})
	require.NoError(t, err)
	assert.NotContains(t, result, "isError")
	assert.Equal(t, map[string]any{"error": "Unsupported provider. Use 'serper' or 'tavily'."}, result["structuredContent"])
}

func TestExecutor_CallTool_BadArguments(t *testing.T) {
	searcher := &fakeSearcher{}
	exec := NewExecutor(nil, searcher)

	cases := []map[string]any{
		{"query": "q", "max_results": "five"},
		{"query": "q", "max_results": 2.5},
		{"query": "q", "country": 44},
		{"query": "q", "provider": true},
		{"query": map[string]any{"a": float64(1)}},
		{"query": float64(42)},
	}
	for _, args := range cases {
		result, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, args)
		require.NoError(t, err)
		structured, _ := result["structuredContent"].(map[string]any)
		assert.Contains(t, structured, "error", "args=%v", args)
	}
	assert.Zero(t, searcher.calls)
}

func TestExecutor_CallTool_UpstreamFailureIsReturned(t *testing.T) {
	upstream := &searchproviders.HTTPError{Provider: searchproviders.ProviderSerper, StatusCode: 403, Body: "forbidden"}
	exec := NewExecutor(nil, &fakeSearcher{err: upstream})

	result, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{"query": "q"})
	assert.Nil(t, result)
	var httpErr *searchproviders.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 403, httpErr.StatusCode)
}

func TestExecutor_CallTool_UnknownTool(t *testing.T) {
	exec := NewExecutor(nil, &fakeSearcher{})
	_, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, "web_fetch", nil)
	assert.ErrorIs(t, err, mcpgw.ErrToolNotFound)
}

func TestExecutor_CallTool_NonStringQueryMessage(t *testing.T) {
	searcher := &fakeSearcher{}
	exec := NewExecutor(nil, searcher)

	result, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{
		"query": map[string]any{"a": float64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"error": "query must be a string"}, result["structuredContent"])
	assert.Zero(t, searcher.calls)
}

func TestExecutor_CallTool_ForwardsStringsVerbatim(t *testing.T) {
	searcher := &fakeSearcher{result: map[string]any{}}
	exec := NewExecutor(nil, searcher)

	_, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{
		"query":    "  padded query  ",
		"provider": " tavily ",
		"country":  " us",
	})
	require.NoError(t, err)
	assert.Equal(t, "  padded query  ", searcher.last.Query)
	assert.Equal(t, " tavily ", searcher.last.Provider)
	require.NotNil(t, searcher.last.Country)
	assert.Equal(t, " us", *searcher.last.Country)
}

func TestExecutor_CallTool_MissingQueryReachesValidation(t *testing.T) {
	searcher := &fakeSearcher{result: map[string]any{}}
	exec := NewExecutor(nil, searcher)

	_, err := exec.CallTool(context.Background(), mcpgw.ToolSessionContext{}, ToolName, map[string]any{"query": nil})
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, "", searcher.last.Query)
}
