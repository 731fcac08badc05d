// Package agent runs one conversational turn against a model backend and a
// set of MCP tools.
//
// An Agent alternates model rounds and tool execution: every round sends the
// system prompt, the prior turns of the Conversation and the new input,
// plus the tool calls and results of the current turn. The turn ends when
// the model answers without calling a tool, or fails with ErrStepLimit after
// MaxSteps rounds.
//
// Failures reported by a tool itself (*mcp.ToolError) are given back to the
// model as "Error: ..." tool output so it can recover. Connection and
// backend failures abort the turn with an *Error naming the step.
//
// The Conversation is owned by the caller. Run never modifies it; the
// caller appends the turn once it succeeds:
//
//	conv := agent.NewConversation()
//	a := agent.New(backend, conn, agent.Options{MaxSteps: 15})
//
//	response, err := a.Run(ctx, conv, "What is 2+2?")
//	if err != nil {
//		return err
//	}
//	conv.Append("What is 2+2?", response)
//
// # Tool Filter
//
// Options.Tools hides tools from the model by exact name or wildcard:
//
//	agent.ToolFilter{"*": false, "toolbox_*": true, "toolbox_fetch_url": false}
package agent
