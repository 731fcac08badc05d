package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Connection is a live set of sessions to the configured tool servers.
// Once closed it cannot be reused; connect again to get a new one.
type Connection struct {
	mu        sync.RWMutex
	servers   map[string]*mcpServer
	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// mcpServer represents a connected MCP server.
type mcpServer struct {
	name       string
	config     Config
	session    *sdkmcp.ClientSession
	status     Status
	tools      []Tool
	serverInfo *ServerInfo
}

func newConnection() *Connection {
	return &Connection{servers: make(map[string]*mcpServer)}
}

// Probe pings every connected server and reports whether all of them
// answered. A closed connection never probes healthy.
func (c *Connection) Probe(ctx context.Context) bool {
	if c.closed.Load() {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, server := range c.servers {
		if server.status != StatusConnected || server.session == nil {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, serverTimeout(server.config))
		err := server.session.Ping(pingCtx, nil)
		cancel()
		if err != nil {
			return false
		}
	}
	return true
}

// Tools returns all tools from connected servers, each prefixed with its
// sanitized server name and sorted by name.
func (c *Connection) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var tools []Tool
	for name, server := range c.servers {
		if server.status != StatusConnected {
			continue
		}
		prefix := ToolPrefix(name)
		for _, tool := range server.tools {
			tools = append(tools, Tool{
				Name:        prefix + sanitizeToolName(tool.Name),
				Description: tool.Description,
				InputSchema: tool.InputSchema,
			})
		}
	}

	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// ExecuteTool calls a tool by its prefixed name. Transport failures come
// back as *ConnectionError; failures the tool reports itself come back as
// *ToolError.
func (c *Connection) ExecuteTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	if c.closed.Load() {
		return "", &ConnectionError{Err: ErrClosed}
	}

	c.mu.RLock()
	server, toolName := c.resolveTool(name)
	var session *sdkmcp.ClientSession
	if server != nil {
		session = server.session
	}
	c.mu.RUnlock()

	if c.closed.Load() {
		return "", &ConnectionError{Err: ErrClosed}
	}
	if session == nil {
		return "", &ToolError{Tool: name, Message: "tool not found"}
	}

	var arguments map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return "", &ToolError{Tool: name, Message: fmt.Sprintf("invalid arguments: %v", err)}
		}
	}

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      toolName,
		Arguments: arguments,
	})
	if err != nil {
		return "", &ConnectionError{Server: server.name, Err: err}
	}

	var output strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			output.WriteString(text.Text)
		}
	}

	if result.IsError {
		return "", &ToolError{Tool: name, Message: output.String()}
	}
	return output.String(), nil
}

func (c *Connection) resolveTool(name string) (*mcpServer, string) {
	for serverName, server := range c.servers {
		if server.status != StatusConnected || server.session == nil {
			continue
		}
		prefix := ToolPrefix(serverName)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		for _, tool := range server.tools {
			if sanitizeToolName(tool.Name) == rest {
				return server, tool.Name
			}
		}
	}
	return nil, ""
}

// Status returns the status of every configured server, sorted by name.
func (c *Connection) Status() []ServerStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	closed := c.closed.Load()
	statuses := make([]ServerStatus, 0, len(c.servers))
	for name, server := range c.servers {
		status := server.status
		if closed && status == StatusConnected {
			status = StatusDisconnected
		}
		statuses = append(statuses, ServerStatus{
			Name:       name,
			Status:     status,
			ToolCount:  len(server.tools),
			ServerInfo: server.serverInfo,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// ServerNames returns the names of connected servers.
func (c *Connection) ServerNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name, server := range c.servers {
		if server.status == StatusConnected {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Close ends every session. It is safe to call more than once; later calls
// return the result of the first.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.mu.Lock()
		defer c.mu.Unlock()

		var errs []error
		for name, server := range c.servers {
			if server.session == nil {
				continue
			}
			if err := server.session.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
			server.session = nil
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}

// ToolPrefix returns the prefix of every tool name offered by the named
// server.
func ToolPrefix(server string) string {
	return sanitizeToolName(server) + "_"
}

// sanitizeToolName replaces anything outside [A-Za-z0-9_] with an underscore.
func sanitizeToolName(name string) string {
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}
