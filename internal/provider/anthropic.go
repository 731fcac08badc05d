package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"
)

const defaultAnthropicMaxTokens = 4096

func newAnthropicModel(ctx context.Context, cfg Config) (model.ToolCallingChatModel, error) {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	modelCfg := &claude.Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: float32Ptr(cfg.Temperature),
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		modelCfg.BaseURL = &baseURL
	}

	chatModel, err := claude.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic model: %w", err)
	}
	return chatModel, nil
}
