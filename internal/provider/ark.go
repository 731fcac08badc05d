package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// newArkModel creates a Volcengine ARK chat model. The model is the
// endpoint ID on the ARK platform and has no default.
func newArkModel(ctx context.Context, cfg Config) (model.ToolCallingChatModel, error) {
	if cfg.Model == "" {
		return nil, errors.New("ark requires a model (endpoint ID)")
	}

	modelCfg := &ark.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: float32Ptr(cfg.Temperature),
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelCfg.MaxTokens = &maxTokens
	}

	chatModel, err := ark.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ARK model: %w", err)
	}
	return chatModel, nil
}
