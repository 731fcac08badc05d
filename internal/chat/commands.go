package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

type command struct {
	name string
	help string
}

// commands are handled by the controller without a turn.
var commands = []command{
	{name: "/help", help: "show available commands"},
	{name: "/tools", help: "list the tools of the current session"},
	{name: "/status", help: "probe the tool servers"},
	{name: "/history", help: "show the conversation so far"},
}

// CommandNames returns the slash commands, for completion.
func CommandNames() []string {
	names := make([]string, len(commands))
	for i, cmd := range commands {
		names[i] = cmd.name
	}
	return names
}

func (c *Controller) command(ctx context.Context, input string) {
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/help":
		c.deps.Console.Notice(c.helpCommand())
		return
	case "/tools":
		c.deps.Console.Notice(c.toolsCommand())
		return
	case "/status":
		c.deps.Console.Notice(c.statusCommand(ctx))
		return
	case "/history":
		c.deps.Console.Notice(c.historyCommand())
		return
	}

	msg := fmt.Sprintf("Unknown command %s.", name)
	if s := suggestCommand(name); s != "" {
		msg += fmt.Sprintf(" Did you mean %s?", s)
	}
	c.deps.Console.Notice(msg + " Type /help for the list.")
}

// suggestCommand returns the closest known command within two edits.
func suggestCommand(name string) string {
	best, bestDist := "", 3
	for _, cmd := range commands {
		if d := levenshtein.ComputeDistance(name, cmd.name); d < bestDist {
			best, bestDist = cmd.name, d
		}
	}
	return best
}

func (c *Controller) helpCommand() string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "\n  %-9s %s", cmd.name, cmd.help)
	}
	b.WriteString("\nType exit, quit or bye to leave.")
	return b.String()
}

func (c *Controller) toolsCommand() string {
	session := c.Session()
	if session == nil {
		return "No active session."
	}
	tools := session.Connection.Tools()
	if len(tools) == 0 {
		return "No tools available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d tools:", len(tools))
	for _, t := range tools {
		desc := strings.TrimSpace(strings.SplitN(t.Description, "\n", 2)[0])
		fmt.Fprintf(&b, "\n  %s", t.Name)
		if desc != "" {
			fmt.Fprintf(&b, ": %s", desc)
		}
	}
	return b.String()
}

func (c *Controller) statusCommand(ctx context.Context) string {
	session := c.Session()
	if session == nil {
		return "No active session."
	}

	healthy := session.Connection.Probe(ctx)
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%d turns)", session.ID, session.Conversation.Len())
	for _, st := range session.Connection.Status() {
		fmt.Fprintf(&b, "\n  %-16s %-12s %d tools", st.Name, st.Status, st.ToolCount)
		if st.Error != nil {
			fmt.Fprintf(&b, "  %s", *st.Error)
		}
	}
	if healthy {
		b.WriteString("\nAll servers responded.")
	} else {
		b.WriteString("\nProbe failed; the next failed turn will reconnect.")
	}
	return b.String()
}

func (c *Controller) historyCommand() string {
	session := c.Session()
	if session == nil || session.Conversation.Len() == 0 {
		return "No turns yet."
	}

	var b strings.Builder
	for i, t := range session.Conversation.Turns() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "You: %s\nAI: %s", t.Input, t.Response)
	}
	return b.String()
}
