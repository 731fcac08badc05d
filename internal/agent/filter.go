package agent

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mcpchat/mcpchat/internal/mcp"
)

// ToolFilter enables or disables tools by name. Keys are exact tool names
// or wildcard patterns such as "files_*" or "*_write".
type ToolFilter map[string]bool

// Enabled reports whether the tool may be offered to the model. An exact
// entry wins over patterns, longer patterns win over shorter ones, and
// tools without a matching entry are enabled.
func (f ToolFilter) Enabled(name string) bool {
	if enabled, ok := f[name]; ok {
		return enabled
	}

	patterns := make([]string, 0, len(f))
	for pattern := range f {
		if strings.Contains(pattern, "*") {
			patterns = append(patterns, pattern)
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})

	for _, pattern := range patterns {
		if matchWildcard(pattern, name) {
			return f[pattern]
		}
	}
	return true
}

// Apply returns the enabled tools, preserving order.
func (f ToolFilter) Apply(tools []mcp.Tool) []mcp.Tool {
	if len(f) == 0 {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if f.Enabled(t.Name) {
			out = append(out, t)
		}
	}
	return out
}

// matchWildcard checks if a tool name matches a wildcard pattern.
func matchWildcard(pattern, s string) bool {
	if pattern == "*" {
		return true
	}

	// Tool names have no separators, so ** and * behave the same.
	matched, err := doublestar.Match(strings.ReplaceAll(pattern, "**", "*"), s)
	return err == nil && matched
}
