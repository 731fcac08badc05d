package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mcpchat/mcpchat/internal/agent"
	"github.com/mcpchat/mcpchat/internal/mcp"
)

// Connection is a live set of tool server sessions. *mcp.Connection
// satisfies it.
type Connection interface {
	Tools() []mcp.Tool
	ExecuteTool(ctx context.Context, name string, args json.RawMessage) (string, error)
	Probe(ctx context.Context) bool
	Status() []mcp.ServerStatus
	Close() error
}

// Runner answers one user input given the conversation so far.
// *agent.Agent satisfies it.
type Runner interface {
	Run(ctx context.Context, conv *agent.Conversation, input string) (string, error)
}

// Session binds one live connection to the agent and conversation built on
// it. A Session is never modified; a reconnect produces a new one.
type Session struct {
	ID           string
	Connection   Connection
	Agent        Runner
	Conversation *agent.Conversation
	StartedAt    time.Time
}

func newSessionID() string {
	return ulid.Make().String()
}

// servers returns the names of the servers behind the session.
func (s *Session) servers() []string {
	status := s.Connection.Status()
	names := make([]string, 0, len(status))
	for _, st := range status {
		names = append(names, st.Name)
	}
	return names
}
