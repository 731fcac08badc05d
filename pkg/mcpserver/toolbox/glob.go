package toolbox

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const maxGlobResults = 100

func globHandler(root string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pattern, err := request.RequireString("pattern")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !doublestar.ValidatePattern(pattern) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid pattern %q", pattern)), nil
		}

		matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("glob failed: %v", err)), nil
		}
		if len(matches) == 0 {
			return mcp.NewToolResultText("No files matched the pattern"), nil
		}

		sort.Strings(matches)
		truncated := len(matches) > maxGlobResults
		if truncated {
			matches = matches[:maxGlobResults]
		}

		out := strings.Join(matches, "\n")
		if truncated {
			out += fmt.Sprintf("\n\n(Showing first %d matches)", maxGlobResults)
		}
		return mcp.NewToolResultText(out), nil
	}
}
