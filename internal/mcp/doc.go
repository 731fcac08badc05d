// Package mcp connects to Model Context Protocol (MCP) tool servers using
// the official MCP Go SDK.
//
// A Connector opens sessions to every enabled server in a configuration and
// returns a single Connection. Connecting is all or nothing: if one server
// fails, the sessions already opened are closed and a *ConnectionError is
// returned, so callers never hold a partially connected toolset.
//
// # Transport Types
//
//	TransportTypeStdio  - Communication via stdin/stdout with a subprocess
//	TransportTypeLocal  - Same as stdio, kept for opencode-style configs
//	TransportTypeRemote - Streamable HTTP, falling back to SSE
//
// # Basic Usage
//
//	connector := mcp.NewConnector("mcpchat", version)
//
//	conn, err := connector.Connect(ctx, map[string]mcp.Config{
//		"toolbox": {
//			Enabled: true,
//			Type:    mcp.TransportTypeStdio,
//			Command: []string{"toolbox-mcp"},
//		},
//	})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if !conn.Probe(ctx) {
//		return errors.New("servers not responding")
//	}
//
//	out, err := conn.ExecuteTool(ctx, "toolbox_sum", json.RawMessage(`{"numbers":[1,2]}`))
//
// # Errors
//
// ExecuteTool distinguishes a broken transport (*ConnectionError) from a
// tool that ran and reported failure (*ToolError). Only the first means the
// session should be replaced. Calls on a closed Connection return a
// *ConnectionError wrapping ErrClosed.
//
// # Tool Names
//
// Tools are exposed as "<server>_<tool>", with characters outside
// [A-Za-z0-9_] replaced by underscores. EinoToolInfos converts them to the
// tool descriptions chat models accept.
package mcp
