package mcp

import (
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config defines MCP server configuration.
type Config struct {
	Enabled     bool              `json:"enabled"`
	Type        TransportType     `json:"type"`
	URL         string            `json:"url,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Command     []string          `json:"command,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Timeout     int               `json:"timeout,omitempty"` // milliseconds
}

// TransportType represents the type of MCP transport.
type TransportType string

const (
	TransportTypeRemote TransportType = "remote"
	TransportTypeLocal  TransportType = "local"
	TransportTypeStdio  TransportType = "stdio"
)

// Tool represents an MCP tool.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ServerStatus represents the status of an MCP server.
type ServerStatus struct {
	Name       string      `json:"name"`
	Status     Status      `json:"status"`
	ToolCount  int         `json:"toolCount"`
	Error      *string     `json:"error,omitempty"`
	ServerInfo *ServerInfo `json:"serverInfo,omitempty"`
}

// Status represents the connection status.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisabled     Status = "disabled"
	StatusFailed       Status = "failed"
	StatusDisconnected Status = "disconnected"
)

// ServerInfo represents information about an MCP server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FromSDKTool converts a tool definition returned by the SDK.
func FromSDKTool(t *sdkmcp.Tool) Tool {
	tool := Tool{
		Name:        t.Name,
		Description: t.Description,
	}
	if t.InputSchema != nil {
		if raw, err := json.Marshal(t.InputSchema); err == nil {
			tool.InputSchema = raw
		}
	}
	if len(tool.InputSchema) == 0 || string(tool.InputSchema) == "null" {
		tool.InputSchema = json.RawMessage(`{"type":"object"}`)
	}
	return tool
}
