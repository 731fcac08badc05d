package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MemoryPolicy selects what happens to the conversation when a session is
// replaced after a failure.
type MemoryPolicy string

const (
	// MemoryDiscard starts the new session with an empty conversation.
	MemoryDiscard MemoryPolicy = "discard"
	// MemoryMigrate copies the previous turns into the new session.
	MemoryMigrate MemoryPolicy = "migrate"
)

// Defaults for a chat run.
const (
	DefaultProvider    = "groq"
	DefaultEnvFile     = ".env"
	DefaultTemperature = 0.7
	DefaultMaxSteps    = 15
)

// Settings are the resolved options of a chat run. Zero values mean
// "not set" when settings are merged.
type Settings struct {
	ConfigPath   string
	EnvFile      string
	Provider     string
	Model        string
	BaseURL      string
	APIKeyEnv    string
	Temperature  *float64
	MaxTokens    int
	MaxSteps     int
	SystemPrompt string
	Tools        map[string]bool
	SmokeTest    bool
	Memory       MemoryPolicy
	Verbose      bool
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	temperature := DefaultTemperature
	return Settings{
		ConfigPath:  DefaultPath,
		EnvFile:     DefaultEnvFile,
		Provider:    DefaultProvider,
		Temperature: &temperature,
		MaxSteps:    DefaultMaxSteps,
		Memory:      MemoryDiscard,
	}
}

// Merge returns s with every field that is set in o replaced.
func (s Settings) Merge(o Settings) Settings {
	if o.ConfigPath != "" {
		s.ConfigPath = o.ConfigPath
	}
	if o.EnvFile != "" {
		s.EnvFile = o.EnvFile
	}
	if o.Provider != "" {
		s.Provider = o.Provider
	}
	if o.Model != "" {
		s.Model = o.Model
	}
	if o.BaseURL != "" {
		s.BaseURL = o.BaseURL
	}
	if o.APIKeyEnv != "" {
		s.APIKeyEnv = o.APIKeyEnv
	}
	if o.Temperature != nil {
		t := *o.Temperature
		s.Temperature = &t
	}
	if o.MaxTokens > 0 {
		s.MaxTokens = o.MaxTokens
	}
	if o.MaxSteps > 0 {
		s.MaxSteps = o.MaxSteps
	}
	if o.SystemPrompt != "" {
		s.SystemPrompt = o.SystemPrompt
	}
	if o.Tools != nil {
		s.Tools = o.Tools
	}
	if o.SmokeTest {
		s.SmokeTest = true
	}
	if o.Memory != "" {
		s.Memory = o.Memory
	}
	if o.Verbose {
		s.Verbose = true
	}
	return s
}

// Settings returns the file's agent defaults as mergeable settings.
func (a AgentConfig) Settings() Settings {
	return Settings{
		Model:        a.Model,
		BaseURL:      a.BaseURL,
		Temperature:  a.Temperature,
		MaxTokens:    a.MaxTokens,
		MaxSteps:     a.MaxSteps,
		SystemPrompt: a.SystemPrompt,
		Tools:        a.Tools,
	}
}

// EnvSettings reads MCPCHAT_* overrides from the environment.
func EnvSettings() (Settings, error) {
	s := Settings{
		ConfigPath: os.Getenv("MCPCHAT_CONFIG"),
		EnvFile:    os.Getenv("MCPCHAT_ENV_FILE"),
		Provider:   os.Getenv("MCPCHAT_PROVIDER"),
		Model:      os.Getenv("MCPCHAT_MODEL"),
		BaseURL:    os.Getenv("MCPCHAT_BASE_URL"),
		APIKeyEnv:  os.Getenv("MCPCHAT_API_KEY_ENV"),
	}

	if v := os.Getenv("MCPCHAT_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, &Error{Item: "MCPCHAT_TEMPERATURE", Err: err}
		}
		s.Temperature = &t
	}
	if v := os.Getenv("MCPCHAT_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, &Error{Item: "MCPCHAT_MAX_STEPS", Err: err}
		}
		s.MaxSteps = n
	}
	if v := os.Getenv("MCPCHAT_MEMORY"); v != "" {
		policy, err := ParseMemoryPolicy(v)
		if err != nil {
			return s, &Error{Item: "MCPCHAT_MEMORY", Err: err}
		}
		s.Memory = policy
	}
	return s, nil
}

// ParseMemoryPolicy parses "discard" or "migrate".
func ParseMemoryPolicy(v string) (MemoryPolicy, error) {
	switch MemoryPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case MemoryDiscard:
		return MemoryDiscard, nil
	case MemoryMigrate:
		return MemoryMigrate, nil
	default:
		return "", fmt.Errorf("unknown memory policy %q", v)
	}
}

// TemperatureValue returns the temperature or the default when unset.
func (s Settings) TemperatureValue() float64 {
	if s.Temperature == nil {
		return DefaultTemperature
	}
	return *s.Temperature
}
