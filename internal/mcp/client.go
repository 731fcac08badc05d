package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/mcpchat/mcpchat/internal/logging"
)

// DefaultTimeout bounds connecting to and pinging a single server when its
// config does not set one.
const DefaultTimeout = 5 * time.Second

// Connector opens connections to a set of MCP servers using the official
// MCP SDK.
type Connector struct {
	sdkClient *sdkmcp.Client
	log       zerolog.Logger
}

// NewConnector creates a connector that identifies itself to servers with
// the given implementation name and version.
func NewConnector(name, version string) *Connector {
	sdkClient := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &Connector{
		sdkClient: sdkClient,
		log:       logging.For("mcp"),
	}
}

// Connect establishes a session with every enabled server. It is all or
// nothing: if any server fails, the sessions opened so far are closed and a
// *ConnectionError naming the failing server is returned.
func (c *Connector) Connect(ctx context.Context, servers map[string]Config) (*Connection, error) {
	conn := newConnection()

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := servers[name]
		if !cfg.Enabled {
			conn.servers[name] = &mcpServer{name: name, config: cfg, status: StatusDisabled}
			continue
		}

		if err := ctx.Err(); err != nil {
			_ = conn.Close()
			return nil, &ConnectionError{Server: name, Err: err}
		}

		server, err := c.connectServer(ctx, name, cfg)
		if err != nil {
			c.log.Warn().Str("server", name).Err(err).Msg("connect failed")
			_ = conn.Close()
			return nil, &ConnectionError{Server: name, Err: err}
		}

		c.log.Debug().Str("server", name).Int("tools", len(server.tools)).Msg("server connected")
		conn.servers[name] = server
	}

	return conn, nil
}

// connectServer establishes connection to an MCP server using the SDK.
func (c *Connector) connectServer(ctx context.Context, name string, config Config) (*mcpServer, error) {
	timeout := serverTimeout(config)

	server := &mcpServer{
		name:   name,
		config: config,
	}

	switch config.Type {
	case TransportTypeRemote:
		if config.URL == "" {
			return nil, errors.New("empty url")
		}
		httpClient := httpClientWithHeaders(nil, config.Headers)
		transports := []struct {
			name      string
			transport sdkmcp.Transport
		}{
			{name: "streamable", transport: &sdkmcp.StreamableClientTransport{Endpoint: config.URL, HTTPClient: httpClient}},
			{name: "sse", transport: &sdkmcp.SSEClientTransport{Endpoint: config.URL, HTTPClient: httpClient}},
		}

		var lastErr error
		for _, candidate := range transports {
			// Remote sessions outlive the dial context, so the session is
			// bound to a background context and ctx is only checked here.
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := c.connectWithTransport(context.Background(), candidate.transport, timeout, server); err != nil {
				lastErr = fmt.Errorf("%s transport: %w", candidate.name, err)
				continue
			}
			return server, nil
		}
		return nil, lastErr

	case TransportTypeLocal, TransportTypeStdio:
		if len(config.Command) == 0 {
			return nil, errors.New("empty command")
		}

		connectCtx, connectCancel := context.WithTimeout(ctx, timeout)
		defer connectCancel()

		cmd := exec.Command(config.Command[0], config.Command[1:]...)
		cmd.Env = os.Environ()
		for k, v := range config.Environment {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}

		if err := c.connectWithTransport(connectCtx, &sdkmcp.CommandTransport{Command: cmd}, timeout, server); err != nil {
			return nil, err
		}
		return server, nil

	default:
		return nil, fmt.Errorf("unknown transport type: %q", config.Type)
	}
}

func (c *Connector) connectWithTransport(ctx context.Context, transport sdkmcp.Transport, timeout time.Duration, server *mcpServer) error {
	session, err := c.sdkClient.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	if initResult := session.InitializeResult(); initResult != nil && initResult.ServerInfo != nil {
		server.serverInfo = &ServerInfo{
			Name:    initResult.ServerInfo.Name,
			Version: initResult.ServerInfo.Version,
		}
	}

	listCtx, listCancel := context.WithTimeout(context.Background(), timeout)
	defer listCancel()

	result, err := session.ListTools(listCtx, nil)
	if err != nil {
		session.Close()
		return fmt.Errorf("failed to list tools: %w", err)
	}

	server.tools = make([]Tool, len(result.Tools))
	for i, t := range result.Tools {
		server.tools[i] = FromSDKTool(t)
	}
	server.session = session
	server.status = StatusConnected
	return nil
}

func serverTimeout(config Config) time.Duration {
	if config.Timeout > 0 {
		return time.Duration(config.Timeout) * time.Millisecond
	}
	return DefaultTimeout
}

func httpClientWithHeaders(base *http.Client, headers map[string]string) *http.Client {
	if base == nil {
		base = &http.Client{}
	}

	// Copy to avoid mutating caller-provided client
	client := *base
	client.Timeout = 0 // no global timeout; rely on per-request contexts

	if len(headers) == 0 {
		return &client
	}

	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	client.Transport = &headerRoundTripper{
		headers: headers,
		next:    transport,
	}

	return &client
}

type headerRoundTripper struct {
	headers map[string]string
	next    http.RoundTripper
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	for k, v := range h.headers {
		cloned.Header.Set(k, v)
	}
	return h.next.RoundTrip(cloned)
}
