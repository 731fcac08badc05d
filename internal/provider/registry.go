package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
)

// Factory creates the Eino chat model behind a backend.
type Factory func(ctx context.Context, cfg Config) (model.ToolCallingChatModel, error)

// Info describes a registered provider.
type Info struct {
	ID             string
	Name           string
	EnvVar         string // credential variable
	DefaultModel   string
	DefaultBaseURL string
	Factory        Factory
}

// Registry manages the available providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Info
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Info)}
}

// Register adds a provider to the registry.
func (r *Registry) Register(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[info.ID] = info
}

// Get retrieves a provider by ID.
func (r *Registry) Get(providerID string) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.providers[providerID]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}
	return info, nil
}

// List returns all providers sorted by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.providers))
	for _, info := range r.providers {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Configure builds a backend from cfg, filling in the provider's default
// model and base URL. It does not contact the provider.
func (r *Registry) Configure(ctx context.Context, cfg Config) (Backend, error) {
	info, err := r.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = info.DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = info.DefaultBaseURL
	}

	chatModel, err := info.Factory(ctx, cfg)
	if err != nil {
		return nil, &BackendError{Provider: info.ID, Model: cfg.Model, Err: err}
	}
	return &chatBackend{id: info.ID, model: cfg.Model, chatModel: chatModel}, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry of built-in providers.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		r.Register(Info{
			ID:             "groq",
			Name:           "Groq",
			EnvVar:         "GROQ_API_KEY",
			DefaultModel:   "llama3-8b-8192",
			DefaultBaseURL: GroqBaseURL,
			Factory:        newOpenAIModel,
		})
		r.Register(Info{
			ID:           "openai",
			Name:         "OpenAI",
			EnvVar:       "OPENAI_API_KEY",
			DefaultModel: "gpt-4o-mini",
			Factory:      newOpenAIModel,
		})
		r.Register(Info{
			ID:           "anthropic",
			Name:         "Anthropic",
			EnvVar:       "ANTHROPIC_API_KEY",
			DefaultModel: "claude-3-5-haiku-20241022",
			Factory:      newAnthropicModel,
		})
		r.Register(Info{
			ID:      "ark",
			Name:    "ARK",
			EnvVar:  "ARK_API_KEY",
			Factory: newArkModel,
		})
		defaultRegistry = r
	})
	return defaultRegistry
}

// Configure builds a backend from the built-in providers.
func Configure(ctx context.Context, cfg Config) (Backend, error) {
	return DefaultRegistry().Configure(ctx, cfg)
}

// EnvVar returns the credential variable of a built-in provider, or "" if
// the provider is unknown.
func EnvVar(providerID string) string {
	info, err := DefaultRegistry().Get(providerID)
	if err != nil {
		return ""
	}
	return info.EnvVar
}

// ParseModelString parses "provider/model" format.
func ParseModelString(s string) (providerID, modelID string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", s
}
