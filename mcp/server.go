// Package mcp exposes the router entry points over the Model Context Protocol
// and provides the client used by the CLI.
package mcp

import (
	"context"
	"io"
	"strconv"

	"github.com/effective-security/toolrouter/orchestrator"
	"github.com/effective-security/toolrouter/pkg/llmutils"
	"github.com/effective-security/toolrouter/pkg/metricskey"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "mcp")

// ServerName is reported to the clients
const ServerName = "toolrouter"

// Dispatcher serves the entry points
type Dispatcher interface {
	Dispatch(ctx context.Context, entry string, args tools.Arguments, sessionID string) (string, error)
}

// NewServer returns an MCP server with a tool for each entry point
func NewServer(d Dispatcher, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, ep := range orchestrator.EntryPoints() {
		s.AddTool(toolDefinition(ep), handler(d, ep.Name))
	}
	return s
}

// ServeStdio serves the MCP protocol over the reader and the writer
// until the context is cancelled or the input is closed
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

func toolDefinition(ep orchestrator.EntryPoint) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(ep.Description),
	}
	for _, p := range ep.Params {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		if p.Default != "" {
			popts = append(popts, mcp.DefaultString(p.Default))
		}
		opts = append(opts, mcp.WithString(p.Name, popts...))
	}
	return mcp.NewTool(ep.Name, opts...)
}

func handler(d Dispatcher, entry string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := Arguments(req.GetArguments())
		sessionID := args.Get(orchestrator.ArgSessionID)
		delete(args, orchestrator.ArgSessionID)

		text, err := d.Dispatch(ctx, entry, args, sessionID)
		if err != nil {
			metricskey.StatsMCPCallsFailed.IncrCounter(1, entry)
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "dispatch",
				"entry", entry,
				"err", err.Error(),
			)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// Arguments converts the transport arguments to tool arguments,
// non-string values are converted to their string form
func Arguments(m map[string]any) tools.Arguments {
	args := make(tools.Arguments, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
		case string:
			args[k] = val
		case float64:
			args[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			args[k] = strconv.FormatBool(val)
		default:
			args[k] = llmutils.ToJSON(val)
		}
	}
	return args
}
