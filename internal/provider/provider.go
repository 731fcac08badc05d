// Package provider configures LLM backends using the Eino framework.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Backend produces the next assistant message for a conversation. Each call
// is independent; backends keep no conversation state and never retry.
type Backend interface {
	// ID returns the provider identifier.
	ID() string

	// Model returns the model name requests are sent to.
	Model() string

	// Generate returns the model's reply to messages, with tools bound
	// when any are given.
	Generate(ctx context.Context, messages []*schema.Message, tools []*schema.ToolInfo) (*schema.Message, error)
}

// Config selects and tunes a backend.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature *float64
	MaxTokens   int
}

var (
	// ErrUnknownProvider is returned by Configure for an unregistered provider.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyResponse means the model returned no message.
	ErrEmptyResponse = errors.New("empty response from model")
)

// BackendError is a failed call to the model provider.
type BackendError struct {
	Provider string
	Model    string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Provider, e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// chatBackend adapts an Eino ToolCallingChatModel to Backend.
type chatBackend struct {
	id        string
	model     string
	chatModel model.ToolCallingChatModel
}

func (b *chatBackend) ID() string    { return b.id }
func (b *chatBackend) Model() string { return b.model }

func (b *chatBackend) Generate(ctx context.Context, messages []*schema.Message, tools []*schema.ToolInfo) (*schema.Message, error) {
	chatModel := b.chatModel
	if len(tools) > 0 {
		var err error
		chatModel, err = chatModel.WithTools(tools)
		if err != nil {
			return nil, b.wrap(fmt.Errorf("failed to bind tools: %w", err))
		}
	}

	msg, err := chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, b.wrap(err)
	}
	if msg == nil {
		return nil, b.wrap(ErrEmptyResponse)
	}
	return msg, nil
}

func (b *chatBackend) wrap(err error) error {
	return &BackendError{Provider: b.id, Model: b.model, Err: err}
}

func float32Ptr(f *float64) *float32 {
	if f == nil {
		return nil
	}
	v := float32(*f)
	return &v
}
