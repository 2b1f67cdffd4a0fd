package tools

import (
	"context"
	"os"
	"os/exec"

	"github.com/modumentor/bridge/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPClient manages the connection to a single MCP server subprocess. The
// subprocess lives for the duration of the bridge process and is torn down
// with it.
type MCPClient struct {
	name  string
	cmd   *exec.Cmd
	conn  *mcpsdk.ClientSession
	tools []*MCPTool
}

// NewMCPClient starts the MCP server subprocess, connects and discovers the
// tools it provides.
func NewMCPClient(name, command string, args []string) (*MCPClient, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr
	mcpClient := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "modumentor-bridge", Version: "v1.0.0"}, nil)
	ctx := context.Background()
	conn, err := mcpClient.Connect(ctx, mcpsdk.NewCommandTransport(cmd))
	if err != nil {
		cmd.Process.Kill()
		return nil, errors.Wrapf(err, "failed to connect to MCP server '%s'", name)
	}
	client := &MCPClient{
		name: name,
		cmd:  cmd,
		conn: conn,
	}

	toolListParams := &mcpsdk.ListToolsParams{}
	for {
		toolList, err := conn.ListTools(ctx, toolListParams)
		if err != nil {
			cmd.Process.Kill()
			return nil, errors.Wrapf(err, "failed to list tools from MCP server '%s'", name)
		}

		for _, t := range toolList.Tools {
			client.tools = append(client.tools, &MCPTool{
				serverName:  name,
				toolName:    t.Name,
				description: t.Description,
				client:      client,
			})
		}

		if toolList.NextCursor == "" {
			break
		}
		toolListParams.Cursor = toolList.NextCursor
	}

	return client, nil
}

// Tools returns the tools discovered on this server.
func (c *MCPClient) Tools() []*MCPTool {
	return c.tools
}

// Stop terminates the MCP server subprocess.
func (c *MCPClient) Stop() error {
	if c.conn != nil {
		c.conn.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		return c.cmd.Process.Kill()
	}
	return nil
}

// MCPTool represents a tool available from an external MCP server.
type MCPTool struct {
	serverName  string
	toolName    string
	description string
	client      *MCPClient
}

func (t *MCPTool) Name() string        { return t.toolName }
func (t *MCPTool) Description() string { return t.description }

// Execute sends the call to the MCP server and concatenates the text content
// of the result.
func (t *MCPTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	result, err := t.client.conn.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      t.toolName,
		Arguments: args,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to call tool '%s' on MCP server '%s'", t.toolName, t.serverName)
	}
	op := ""
	for _, c := range result.Content {
		if text, ok := c.(*mcpsdk.TextContent); ok {
			op += text.Text
		}
	}
	return op, nil
}

func (t *MCPTool) ProbeQuery() string { return "list tools on '" + t.serverName + "'" }

// Probe confirms the server connection is still alive by re-listing tools.
func (t *MCPTool) Probe(ctx context.Context) (string, error) {
	if _, err := t.client.conn.ListTools(ctx, &mcpsdk.ListToolsParams{}); err != nil {
		return "", errors.Wrapf(err, "MCP server '%s' is not responding", t.serverName)
	}
	return "MCP tool '" + t.toolName + "' is available via server '" + t.serverName + "'", nil
}
