package mcp

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/orchestrator"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var (
	// ErrTransport is returned when the server cannot be reached
	ErrTransport = errors.New("transport failure")
	// ErrToolFailed is returned when the server reports a tool error
	ErrToolFailed = errors.New("tool call failed")
)

// ClientName is reported to the server
const ClientName = "routerctl"

// Client calls the router entry points
type Client struct {
	c      *client.Client
	Server string
	Tools  []string
}

// Dial starts the server command and connects to it over stdio
func Dial(ctx context.Context, version string, env []string, command string, args ...string) (*Client, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to start %s", command), ErrTransport)
	}
	return connect(ctx, c, version)
}

// NewInProcess connects to the server running in the same process
func NewInProcess(ctx context.Context, s *server.MCPServer, version string) (*Client, error) {
	c, err := client.NewInProcessClient(s)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to create client"), ErrTransport)
	}
	if err = c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, errors.Mark(errors.Wrap(err, "failed to start client"), ErrTransport)
	}
	return connect(ctx, c, version)
}

func connect(ctx context.Context, c *client.Client, version string) (*Client, error) {
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    ClientName,
		Version: version,
	}

	res, err := c.Initialize(ctx, initReq)
	if err != nil {
		_ = c.Close()
		return nil, errors.Mark(errors.Wrap(err, "failed to initialize"), ErrTransport)
	}

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = c.Close()
		return nil, errors.Mark(errors.Wrap(err, "failed to list tools"), ErrTransport)
	}

	cl := &Client{
		c:      c,
		Server: res.ServerInfo.Name,
	}
	for _, t := range list.Tools {
		cl.Tools = append(cl.Tools, t.Name)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "connected",
		"server", cl.Server,
		"tools", len(cl.Tools),
	)
	return cl, nil
}

// Call invokes the entry point and returns its text
func (c *Client) Call(ctx context.Context, entry string, args map[string]string, sessionID string) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = entry

	arguments := make(map[string]any, len(args)+1)
	for k, v := range args {
		arguments[k] = v
	}
	if sessionID != "" {
		arguments[orchestrator.ArgSessionID] = sessionID
	}
	req.Params.Arguments = arguments

	res, err := c.c.CallTool(ctx, req)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to call %s", entry), ErrTransport)
	}

	text := contentText(res.Content)
	if res.IsError {
		return "", errors.Mark(errors.Newf("%s: %s", entry, text), ErrToolFailed)
	}
	return text, nil
}

// Close stops the connection and the server process, if any
func (c *Client) Close() error {
	return c.c.Close()
}

func contentText(list []mcp.Content) string {
	var parts []string
	for _, content := range list {
		switch tc := content.(type) {
		case mcp.TextContent:
			parts = append(parts, tc.Text)
		case *mcp.TextContent:
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
