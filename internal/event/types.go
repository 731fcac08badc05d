package event

// StateChangedData is the data for state.changed events.
type StateChangedData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SessionStartedData is the data for session.started events.
type SessionStartedData struct {
	SessionID string   `json:"sessionID"`
	Servers   []string `json:"servers"`
	ToolCount int      `json:"toolCount"`
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Migrated  int      `json:"migratedTurns,omitempty"`
}

// SessionClosedData is the data for session.closed events.
type SessionClosedData struct {
	SessionID string `json:"sessionID"`
	Reason    string `json:"reason"`
}

// TurnCompletedData is the data for turn.completed events.
type TurnCompletedData struct {
	SessionID string `json:"sessionID"`
	Turn      int    `json:"turn"`
}

// TurnFailedData is the data for turn.failed events.
type TurnFailedData struct {
	SessionID string `json:"sessionID"`
	Error     string `json:"error"`
}

// ToolCalledData is the data for tool.called events.
type ToolCalledData struct {
	SessionID string `json:"sessionID"`
	Step      int    `json:"step"`
	Tool      string `json:"tool"`
	Arguments string `json:"arguments"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReconnectAttemptedData is the data for reconnect.attempted events.
type ReconnectAttemptedData struct {
	Phase   string `json:"phase"` // "startup" or "recovery"
	Attempt int    `json:"attempt"`
	Error   string `json:"error,omitempty"`
}

// ConfigChangedData is the data for config.changed events.
type ConfigChangedData struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}
