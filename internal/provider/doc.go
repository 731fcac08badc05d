// Package provider provides the LLM backend layer for mcpchat.
//
// Backends are thin adapters over Eino ToolCallingChatModel implementations
// from eino-ext. A Backend is stateless: every Generate call receives the
// whole message list and the tools to bind, and returns a single assistant
// message. Retries and conversation memory live above this package.
//
// # Supported Providers
//
//	groq       Groq's OpenAI-compatible API (default)   GROQ_API_KEY
//	openai     OpenAI and compatible endpoints          OPENAI_API_KEY
//	anthropic  Anthropic Claude                         ANTHROPIC_API_KEY
//	ark        Volcengine ARK (model is an endpoint ID) ARK_API_KEY
//
// # Usage
//
//	backend, err := provider.Configure(ctx, provider.Config{
//		Provider: "groq",
//		APIKey:   cred.Value(),
//	})
//	if err != nil {
//		return err
//	}
//
//	msg, err := backend.Generate(ctx, []*schema.Message{
//		schema.UserMessage("Hello"),
//	}, nil)
//
// # Errors
//
// Every failure of a configured backend is a *BackendError carrying the
// provider and model. Configure returns an error wrapping
// ErrUnknownProvider when the provider is not registered.
//
// # Custom Providers
//
// A Registry accepts additional providers with their own Factory:
//
//	r := provider.NewRegistry()
//	r.Register(provider.Info{ID: "local", Factory: myFactory})
package provider
