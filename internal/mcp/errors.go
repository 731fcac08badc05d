package mcp

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a Connection after Close.
var ErrClosed = errors.New("connection closed")

// ConnectionError reports that a tool server could not be reached, either
// while connecting or while a call was in flight.
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Server == "" {
		return fmt.Sprintf("mcp connection: %v", e.Err)
	}
	return fmt.Sprintf("mcp server %q: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ToolError is a failure reported by the tool itself. The connection is
// still healthy when a ToolError is returned.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s", e.Tool, e.Message)
}

// IsConnectionError reports whether err is, or wraps, a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
