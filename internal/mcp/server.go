package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/memohai/websearch-mcp/internal/version"
)

const ServerName = "web-search-tool"

// NewSDKServer builds an MCP server whose tools/list and tools/call are
// answered by the gateway.
func NewSDKServer(gateway *ToolGatewayService, transport string) *sdkmcp.Server {
	server := sdkmcp.NewServer(
		&sdkmcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		&sdkmcp.ServerOptions{
			Capabilities: &sdkmcp.ServerCapabilities{
				Tools: &sdkmcp.ToolCapabilities{
					ListChanged: false,
				},
			},
		},
	)
	server.AddReceivingMiddleware(toolGatewayMiddleware(gateway, transport))
	return server
}

const drainSettle = 50 * time.Millisecond

// RunStdio serves the gateway on stdin/stdout until ctx is done or the peer
// closes the stream. A closed stream is a normal shutdown and returns nil.
func RunStdio(ctx context.Context, gateway *ToolGatewayService) error {
	return runStream(ctx, gateway, os.Stdin, os.Stdout)
}

func runStream(ctx context.Context, gateway *ToolGatewayService, in io.ReadCloser, out io.WriteCloser) error {
	transport := &sdkmcp.IOTransport{
		Reader: &drainOnEOFReader{ReadCloser: in, ctx: ctx, calls: gateway, settle: drainSettle},
		Writer: out,
	}
	err := NewSDKServer(gateway, "stdio").Run(ctx, transport)
	if IsPeerClosed(err) {
		return nil
	}
	return err
}

// IsPeerClosed reports whether err only says the peer closed the stream.
func IsPeerClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
		return true
	}
	msg := err.Error()
	return msg == io.EOF.Error() || strings.HasSuffix(msg, ": "+io.EOF.Error())
}

type inFlightCounter interface {
	InFlight() int64
}

// drainOnEOFReader holds back EOF until no tool call has been running for the
// settle period, so requests piped ahead of EOF still get their responses.
type drainOnEOFReader struct {
	io.ReadCloser
	ctx    context.Context
	calls  inFlightCounter
	settle time.Duration
}

func (r *drainOnEOFReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if errors.Is(err, io.EOF) && r.calls != nil {
		r.waitIdle()
	}
	return n, err
}

func (r *drainOnEOFReader) waitIdle() {
	tick := r.settle / 5
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	idleSince := time.Now()
	for {
		if r.calls.InFlight() > 0 {
			idleSince = time.Now()
		} else if time.Since(idleSince) >= r.settle {
			return
		}
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// NewStreamableHTTPHandler serves the gateway over stateless streamable HTTP.
func NewStreamableHTTPHandler(log *slog.Logger, gateway *ToolGatewayService) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	server := NewSDKServer(gateway, "http")
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:    true,
			JSONResponse: true,
			Logger:       log,
		},
	)
}

func toolGatewayMiddleware(gateway *ToolGatewayService, transport string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			session := ToolSessionContext{Transport: transport}
			switch strings.TrimSpace(method) {
			case "tools/list":
				tools, err := gateway.ListTools(ctx, session)
				if err != nil {
					return nil, err
				}
				return &sdkmcp.ListToolsResult{
					Tools: convertGatewayToolsToSDK(tools),
				}, nil
			case "tools/call":
				callReq, ok := req.(*sdkmcp.ServerRequest[*sdkmcp.CallToolParamsRaw])
				if !ok || callReq == nil || callReq.Params == nil {
					return nil, fmt.Errorf("tools/call params is required")
				}
				payload, err := buildToolCallPayloadFromRaw(callReq.Params)
				if err != nil {
					return nil, err
				}
				result, err := gateway.CallTool(ctx, session, payload)
				if err != nil {
					return nil, err
				}
				return convertGatewayCallResultToSDK(result)
			default:
				return next(ctx, method, req)
			}
		}
	}
}

func buildToolCallPayloadFromRaw(params *sdkmcp.CallToolParamsRaw) (ToolCallPayload, error) {
	if params == nil {
		return ToolCallPayload{}, fmt.Errorf("tools/call params is required")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return ToolCallPayload{}, fmt.Errorf("tools/call name is required")
	}
	arguments := map[string]any{}
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &arguments); err != nil {
			return ToolCallPayload{}, err
		}
	}
	if arguments == nil {
		arguments = map[string]any{}
	}
	return ToolCallPayload{
		Name:      name,
		Arguments: arguments,
	}, nil
}

func convertGatewayToolsToSDK(items []ToolDescriptor) []*sdkmcp.Tool {
	tools := make([]*sdkmcp.Tool, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		inputSchema := item.InputSchema
		if inputSchema == nil {
			inputSchema = map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			}
		}
		tools = append(tools, &sdkmcp.Tool{
			Name:        name,
			Description: strings.TrimSpace(item.Description),
			InputSchema: inputSchema,
		})
	}
	return tools
}

func convertGatewayCallResultToSDK(result map[string]any) (*sdkmcp.CallToolResult, error) {
	if result == nil {
		result = BuildToolSuccessResult(map[string]any{"ok": true})
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var out sdkmcp.CallToolResult
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
