package agent

import (
	"github.com/cloudwego/eino/schema"
)

// Turn is one answered user input.
type Turn struct {
	Input    string `json:"input"`
	Response string `json:"response"`
}

// Conversation is the ordered memory of a chat session. Turns are only ever
// appended. A Conversation is owned by one goroutine and is not safe for
// concurrent use.
type Conversation struct {
	turns []Turn
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append records a completed turn.
func (c *Conversation) Append(input, response string) {
	c.turns = append(c.turns, Turn{Input: input, Response: response})
}

// Len returns the number of recorded turns.
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.turns)
}

// Turns returns a copy of the recorded turns.
func (c *Conversation) Turns() []Turn {
	if c == nil {
		return nil
	}
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Clone returns an independent copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	return &Conversation{turns: c.Turns()}
}

// Messages renders the turns as alternating user and assistant messages.
func (c *Conversation) Messages() []*schema.Message {
	if c == nil {
		return nil
	}
	msgs := make([]*schema.Message, 0, 2*len(c.turns))
	for _, t := range c.turns {
		msgs = append(msgs,
			schema.UserMessage(t.Input),
			schema.AssistantMessage(t.Response, nil),
		)
	}
	return msgs
}
