package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/mcpchat/mcpchat/internal/event"
	"github.com/mcpchat/mcpchat/internal/logging"
	"github.com/mcpchat/mcpchat/internal/mcp"
	"github.com/mcpchat/mcpchat/internal/provider"
)

const (
	// DefaultMaxSteps is the model round ceiling when Options.MaxSteps is unset.
	DefaultMaxSteps = 15

	// DefaultSystemPrompt is used when Options.SystemPrompt is empty.
	DefaultSystemPrompt = "You are a helpful assistant with access to tools. " +
		"Use a tool when it helps answer the request, and answer directly otherwise."

	// maxToolOutputLog bounds the tool output carried in tool.called events.
	maxToolOutputLog = 500
)

// Toolset is the tool surface of a live connection.
type Toolset interface {
	Tools() []mcp.Tool
	ExecuteTool(ctx context.Context, name string, args json.RawMessage) (string, error)
}

// Options tune an Agent.
type Options struct {
	MaxSteps     int
	SystemPrompt string
	Tools        ToolFilter

	// Bus receives a tool.called event after every call, before the
	// output goes back to the model, when set.
	Bus       *event.Bus
	SessionID string
}

// Agent answers one input at a time by alternating model rounds and tool
// calls. It holds no conversation state; memory is passed to Run.
type Agent struct {
	backend provider.Backend
	toolset Toolset
	opts    Options
}

// New creates an agent over a backend and a toolset.
func New(backend provider.Backend, toolset Toolset, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &Agent{
		backend: backend,
		toolset: toolset,
		opts:    opts,
	}
}

// MaxSteps returns the model round ceiling.
func (a *Agent) MaxSteps() int {
	return a.opts.MaxSteps
}

// Tools returns the tools offered to the model.
func (a *Agent) Tools() []mcp.Tool {
	if a.toolset == nil {
		return nil
	}
	return a.opts.Tools.Apply(a.toolset.Tools())
}

// Run answers input in the context of conv and returns the final response.
// conv is read but never modified. Tool failures reported by a tool are
// given back to the model; any other failure aborts the turn with *Error.
func (a *Agent) Run(ctx context.Context, conv *Conversation, input string) (string, error) {
	log := logging.For("agent")

	tools := a.Tools()
	enabled := make(map[string]bool, len(tools))
	for _, t := range tools {
		enabled[t.Name] = true
	}
	infos := mcp.EinoToolInfos(tools)

	messages := make([]*schema.Message, 0, 2*conv.Len()+2)
	messages = append(messages, schema.SystemMessage(a.opts.SystemPrompt))
	messages = append(messages, conv.Messages()...)
	messages = append(messages, schema.UserMessage(input))

	for step := 1; step <= a.opts.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return "", &Error{Step: step, Err: err}
		}

		reply, err := a.backend.Generate(ctx, messages, infos)
		if err != nil {
			return "", &Error{Step: step, Err: err}
		}

		if len(reply.ToolCalls) == 0 {
			log.Debug().Int("step", step).Msg("final answer")
			return reply.Content, nil
		}

		log.Debug().Int("step", step).Int("calls", len(reply.ToolCalls)).Msg("tool round")
		messages = append(messages, schema.AssistantMessage(reply.Content, reply.ToolCalls))

		for _, call := range reply.ToolCalls {
			output, err := a.callTool(ctx, step, call, enabled)
			if err != nil {
				return "", &Error{Step: step, Err: err}
			}
			messages = append(messages, schema.ToolMessage(output, call.ID))
		}
	}

	return "", &Error{Step: a.opts.MaxSteps, Err: ErrStepLimit}
}

// callTool executes one tool call. The returned string is what the model
// sees; an error is returned only when the turn must be aborted.
func (a *Agent) callTool(ctx context.Context, step int, call schema.ToolCall, enabled map[string]bool) (string, error) {
	name := call.Function.Name
	args := strings.TrimSpace(call.Function.Arguments)
	if args == "" {
		args = "{}"
	}

	data := event.ToolCalledData{
		SessionID: a.opts.SessionID,
		Step:      step,
		Tool:      name,
		Arguments: args,
	}

	var output string
	var err error
	if enabled[name] {
		output, err = a.toolset.ExecuteTool(ctx, name, json.RawMessage(args))
	} else {
		err = &mcp.ToolError{Tool: name, Message: "tool not available"}
	}

	var toolErr *mcp.ToolError
	switch {
	case err == nil:
		data.Output = truncate(output, maxToolOutputLog)
	case errors.As(err, &toolErr):
		output = "Error: " + toolErr.Message
		data.Error = toolErr.Message
		err = nil
	default:
		data.Error = err.Error()
	}

	if a.opts.Bus != nil {
		a.opts.Bus.PublishSync(event.Event{Type: event.ToolCalled, Data: data})
	}
	return output, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
