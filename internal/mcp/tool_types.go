package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ToolSessionContext carries request-scoped identity for tool execution.
type ToolSessionContext struct {
	CallID    string
	Transport string
}

// ToolDescriptor is the MCP tools/list item shape used by the gateway.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolExecutor owns one or more tools. Returning an error from CallTool
// reports a failed tool execution; in-band problems the caller can act on
// belong in a success result.
type ToolExecutor interface {
	ListTools(ctx context.Context, session ToolSessionContext) ([]ToolDescriptor, error)
	CallTool(ctx context.Context, session ToolSessionContext, toolName string, arguments map[string]any) (map[string]any, error)
}

// ToolCallPayload is the MCP tools/call params payload.
type ToolCallPayload struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ErrToolNotFound indicates the executor does not own the requested tool.
var ErrToolNotFound = fmt.Errorf("tool not found")

// BuildToolSuccessResult builds a standard MCP tool success result object.
// structuredContent must be a JSON object, so other values are wrapped as
// {"result": value}; the text content always carries the value itself.
func BuildToolSuccessResult(structured any) map[string]any {
	result := map[string]any{}
	if structured != nil {
		result["structuredContent"] = wrapStructuredContent(structured)
		if text := stringifyStructuredContent(structured); text != "" {
			result["content"] = []map[string]any{
				{
					"type": "text",
					"text": text,
				},
			}
		}
	}
	if len(result) == 0 {
		result["content"] = []map[string]any{
			{
				"type": "text",
				"text": "ok",
			},
		}
	}
	return result
}

// BuildToolErrorResult builds a standard MCP tool error result object.
func BuildToolErrorResult(message string) map[string]any {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = "tool execution failed"
	}
	return map[string]any{
		"isError": true,
		"content": []map[string]any{
			{
				"type": "text",
				"text": msg,
			},
		},
	}
}

// ErrorPayload is the in-band {"error": message} value returned to callers
// as a successful tool result.
func ErrorPayload(message string) map[string]any {
	return map[string]any{"error": message}
}

func wrapStructuredContent(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return value
	case json.Marshaler:
		if raw, err := value.MarshalJSON(); err == nil && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
			return value
		}
	}
	return map[string]any{"result": v}
}

func stringifyStructuredContent(v any) string {
	if v == nil {
		return ""
	}
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	default:
		payload, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(payload)
	}
}

// OptionalStringArg returns the untrimmed string under key, or nil when the
// key is absent or null.
func OptionalStringArg(arguments map[string]any, key string) (*string, error) {
	if arguments == nil {
		return nil, nil
	}
	raw, ok := arguments[key]
	if !ok || raw == nil {
		return nil, nil
	}
	value, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &value, nil
}

func IntArg(arguments map[string]any, key string) (int, bool, error) {
	if arguments == nil {
		return 0, false, nil
	}
	raw, ok := arguments[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch value := raw.(type) {
	case int:
		return value, true, nil
	case int32:
		return int(value), true, nil
	case int64:
		return int(value), true, nil
	case float32:
		return floatArg(key, float64(value))
	case float64:
		return floatArg(key, value)
	case json.Number:
		i, err := value.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer", key)
		}
		return int(i), true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
}

func floatArg(key string, f float64) (int, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, fmt.Errorf("%s must be a valid number", key)
	}
	if f != math.Trunc(f) {
		return 0, true, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), true, nil
}
