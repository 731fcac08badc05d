// Package toolbox provides a small MCP server with general purpose tools.
// mcpchat uses it as a default local tool server and its tests connect to
// it in-process.
package toolbox

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Name and Version identify the server during MCP initialization.
const (
	Name    = "toolbox"
	Version = "1.0.0"
)

type options struct {
	root       string
	httpClient *http.Client
	now        func() time.Time
}

// Option configures the toolbox server.
type Option func(*options)

// WithRoot sets the directory the glob tool searches.
func WithRoot(dir string) Option {
	return func(o *options) { o.root = dir }
}

// WithHTTPClient sets the client used by fetch_url.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClock replaces time.Now for the now tool.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewServer creates a new MCP server with the toolbox tools.
func NewServer(opts ...Option) *server.MCPServer {
	o := options{
		root:       ".",
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
	)

	sumTool := mcp.NewTool("sum",
		mcp.WithDescription("Calculates the sum of an array of numbers"),
		mcp.WithArray("numbers",
			mcp.Required(),
			mcp.Description("Array of numbers to sum"),
			mcp.Items(map[string]any{
				"type": "number",
			}),
		),
	)
	s.AddTool(sumTool, sumHandler)

	nowTool := mcp.NewTool("now",
		mcp.WithDescription("Returns the current date and time"),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone name such as Europe/Paris (default: UTC)"),
		),
	)
	s.AddTool(nowTool, nowHandler(o.now))

	fetchTool := mcp.NewTool("fetch_url",
		mcp.WithDescription("Fetches a web page and returns its content as markdown, text or html"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to fetch, starting with http:// or https://"),
		),
		mcp.WithString("format",
			mcp.Description("Output format (default: markdown)"),
			mcp.Enum("markdown", "text", "html"),
		),
	)
	s.AddTool(fetchTool, fetchHandler(o.httpClient))

	globTool := mcp.NewTool("glob",
		mcp.WithDescription("Lists files matching a glob pattern such as **/*.go"),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("The glob pattern to match files against"),
		),
	)
	s.AddTool(globTool, globHandler(o.root))

	return s
}

// sumHandler handles the sum tool call.
func sumHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	numbersArg, ok := args["numbers"]
	if !ok {
		return mcp.NewToolResultError("numbers argument is required"), nil
	}

	numbers, err := toFloat64Slice(numbersArg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid numbers: %v", err)), nil
	}

	var sum float64
	for _, n := range numbers {
		sum += n
	}

	return mcp.NewToolResultText(formatFloat(sum)), nil
}

func nowHandler(now func() time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		zone := request.GetString("timezone", "UTC")
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown timezone %q", zone)), nil
		}
		return mcp.NewToolResultText(now().In(loc).Format(time.RFC1123Z)), nil
	}
}

// toFloat64Slice converts an interface{} to []float64.
func toFloat64Slice(v any) ([]float64, error) {
	switch arr := v.(type) {
	case []any:
		result := make([]float64, len(arr))
		for i, elem := range arr {
			switch n := elem.(type) {
			case float64:
				result[i] = n
			case int:
				result[i] = float64(n)
			case int64:
				result[i] = float64(n)
			default:
				return nil, fmt.Errorf("element %d is not a number: %T", i, elem)
			}
		}
		return result, nil
	case []float64:
		return arr, nil
	case []int:
		result := make([]float64, len(arr))
		for i, n := range arr {
			result[i] = float64(n)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("expected array, got %T", v)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
