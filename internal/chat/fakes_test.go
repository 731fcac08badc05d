package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/mcp"
	"github.com/mcpchat/mcpchat/internal/provider"
)

// fakeConnection is a tool connection with one sum tool.
type fakeConnection struct {
	probe  bool
	closed int32
}

func (f *fakeConnection) Tools() []mcp.Tool {
	return []mcp.Tool{{Name: "toolbox_sum", Description: "Add numbers\nmore", InputSchema: json.RawMessage(`{"type":"object"}`)}}
}

func (f *fakeConnection) ExecuteTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	return "6", nil
}

func (f *fakeConnection) Probe(ctx context.Context) bool {
	return f.probe && atomic.LoadInt32(&f.closed) == 0
}

func (f *fakeConnection) Status() []mcp.ServerStatus {
	return []mcp.ServerStatus{{Name: "toolbox", Status: mcp.StatusConnected, ToolCount: 1}}
}

func (f *fakeConnection) Close() error {
	atomic.AddInt32(&f.closed, 1)
	return nil
}

func (f *fakeConnection) closeCount() int {
	return int(atomic.LoadInt32(&f.closed))
}

// fakeConnector fails or succeeds per call following results; calls past
// the end of results succeed.
type fakeConnector struct {
	results []error
	unready map[int]bool
	calls   int
	conns   []*fakeConnection
	onCall  func(n int)
}

var errRefused = errors.New("connection refused")

func failing(n int) []error {
	results := make([]error, n)
	for i := range results {
		results[i] = &mcp.ConnectionError{Server: "toolbox", Err: errRefused}
	}
	return results
}

func (f *fakeConnector) Connect(ctx context.Context, servers map[string]mcp.Config) (Connection, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	if f.calls <= len(f.results) && f.results[f.calls-1] != nil {
		return nil, f.results[f.calls-1]
	}
	conn := &fakeConnection{probe: !f.unready[f.calls]}
	f.conns = append(f.conns, conn)
	return conn, nil
}

// fakeBackend answers from replies and records every input it was given.
type fakeBackend struct {
	mu       sync.Mutex
	replies  map[string]string
	failures int
	inputs   []string
}

func (b *fakeBackend) ID() string    { return "fake" }
func (b *fakeBackend) Model() string { return "fake-model" }

func (b *fakeBackend) Generate(ctx context.Context, messages []*schema.Message, tools []*schema.ToolInfo) (*schema.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	last := messages[len(messages)-1].Content
	b.inputs = append(b.inputs, last)
	if b.failures > 0 {
		b.failures--
		return nil, &provider.BackendError{Provider: "fake", Model: "fake-model", Err: errors.New("503 service unavailable")}
	}
	if reply, ok := b.replies[last]; ok {
		return schema.AssistantMessage(reply, nil), nil
	}
	return schema.AssistantMessage("echo: "+last, nil), nil
}

func (b *fakeBackend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.inputs...)
}

// scriptedConsole feeds inputs and records everything printed. After the
// inputs it returns end, which defaults to io.EOF.
type scriptedConsole struct {
	inputs  []string
	end     error
	reads   int
	onRead  func()
	replies []string
	notices []string
	errs    []error
}

func (c *scriptedConsole) ReadLine(ctx context.Context) (string, error) {
	if c.onRead != nil {
		c.onRead()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.reads < len(c.inputs) {
		line := c.inputs[c.reads]
		c.reads++
		return line, nil
	}
	if c.end != nil {
		return "", c.end
	}
	return "", io.EOF
}

func (c *scriptedConsole) Reply(text string)  { c.replies = append(c.replies, text) }
func (c *scriptedConsole) Notice(text string) { c.notices = append(c.notices, text) }
func (c *scriptedConsole) Error(err error)    { c.errs = append(c.errs, err) }
func (c *scriptedConsole) Close() error       { return nil }

// fakeTimer fires immediately and records every requested wait.
type fakeTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.c
}

func testConfig() *config.Config {
	return &config.Config{
		Path: "mcp_config.json",
		Servers: map[string]mcp.Config{
			"toolbox": {Enabled: true, Type: mcp.TransportTypeRemote, URL: "http://127.0.0.1:1/mcp"},
		},
	}
}

func testCredential() (config.Credential, error) {
	return config.LoadCredential("MCPCHAT_TEST_API_KEY")
}
