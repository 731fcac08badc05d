package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpchat/mcpchat/pkg/mcpserver/toolbox"
)

// startToolbox serves the toolbox MCP server over streamable HTTP and
// returns its endpoint.
func startToolbox(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(server.NewStreamableHTTPServer(toolbox.NewServer()))
	t.Cleanup(srv.Close)
	return srv.URL + "/mcp"
}

// deadURL returns an endpoint nothing is listening on.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(nil)
	url := srv.URL + "/mcp"
	srv.Close()
	return url
}

func remote(url string) Config {
	return Config{Enabled: true, Type: TransportTypeRemote, URL: url, Timeout: 5000}
}

func TestConnector_Toolbox(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := NewConnector("mcpchat-test", "1.0.0").Connect(ctx, map[string]Config{
		"toolbox": remote(startToolbox(t)),
		"off":     {Enabled: false, Type: TransportTypeStdio, Command: []string{"does-not-exist"}},
	})
	require.NoError(t, err)
	defer conn.Close()

	assert.True(t, conn.Probe(ctx))
	assert.Equal(t, []string{"toolbox"}, conn.ServerNames())

	statuses := conn.Status()
	require.Len(t, statuses, 2)
	assert.Equal(t, "off", statuses[0].Name)
	assert.Equal(t, StatusDisabled, statuses[0].Status)
	assert.Equal(t, "toolbox", statuses[1].Name)
	assert.Equal(t, StatusConnected, statuses[1].Status)
	assert.Equal(t, 4, statuses[1].ToolCount)
	require.NotNil(t, statuses[1].ServerInfo)
	assert.Equal(t, toolbox.Name, statuses[1].ServerInfo.Name)

	var names []string
	for _, tool := range conn.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"toolbox_fetch_url", "toolbox_glob", "toolbox_now", "toolbox_sum"}, names)

	out, err := conn.ExecuteTool(ctx, "toolbox_sum", json.RawMessage(`{"numbers":[1,2,3]}`))
	require.NoError(t, err)
	assert.Equal(t, "6", out)
}

func TestConnection_ToolErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := NewConnector("mcpchat-test", "1.0.0").Connect(ctx, map[string]Config{
		"toolbox": remote(startToolbox(t)),
	})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.ExecuteTool(ctx, "toolbox_sum", json.RawMessage(`{}`))
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Contains(t, toolErr.Message, "numbers argument is required")
	assert.False(t, IsConnectionError(err))

	_, err = conn.ExecuteTool(ctx, "toolbox_missing", nil)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "tool not found", toolErr.Message)

	_, err = conn.ExecuteTool(ctx, "toolbox_sum", json.RawMessage(`[1,2`))
	require.ErrorAs(t, err, &toolErr)
	assert.Contains(t, toolErr.Message, "invalid arguments")
}

func TestConnection_Close(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := NewConnector("mcpchat-test", "1.0.0").Connect(ctx, map[string]Config{
		"toolbox": remote(startToolbox(t)),
	})
	require.NoError(t, err)

	first := conn.Close()
	second := conn.Close()
	assert.Equal(t, first, second)
	assert.True(t, conn.Closed())
	assert.False(t, conn.Probe(ctx))

	_, err = conn.ExecuteTool(ctx, "toolbox_sum", json.RawMessage(`{"numbers":[1]}`))
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, ErrClosed)

	for _, status := range conn.Status() {
		assert.Equal(t, StatusDisconnected, status.Status)
	}
}

func TestConnector_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := NewConnector("mcpchat-test", "1.0.0").Connect(ctx, map[string]Config{
		"broken": remote(deadURL(t)),
	})
	assert.Nil(t, conn)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "broken", connErr.Server)
}

func TestConnector_AllOrNothing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := NewConnector("mcpchat-test", "1.0.0").Connect(ctx, map[string]Config{
		"a-good": remote(startToolbox(t)),
		"b-bad":  remote(deadURL(t)),
	})
	assert.Nil(t, conn)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "b-bad", connErr.Server)
}

func TestConnector_InvalidConfig(t *testing.T) {
	ctx := context.Background()
	connector := NewConnector("mcpchat-test", "1.0.0")

	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{"empty url", Config{Enabled: true, Type: TransportTypeRemote}, "empty url"},
		{"empty command", Config{Enabled: true, Type: TransportTypeStdio}, "empty command"},
		{"unknown type", Config{Enabled: true, Type: "carrier-pigeon"}, "unknown transport type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := connector.Connect(ctx, map[string]Config{"s": tt.config})
			require.Error(t, err)
			assert.True(t, IsConnectionError(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConnector_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConnector("mcpchat-test", "1.0.0").Connect(ctx, map[string]Config{
		"toolbox": remote("http://127.0.0.1:1/mcp"),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClientWithHeaders(t *testing.T) {
	client := httpClientWithHeaders(nil, nil)
	assert.Nil(t, client.Transport)

	client = httpClientWithHeaders(nil, map[string]string{"Authorization": "Bearer x"})
	rt, ok := client.Transport.(*headerRoundTripper)
	require.True(t, ok)
	assert.Equal(t, "Bearer x", rt.headers["Authorization"])
}
