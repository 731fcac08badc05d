package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/provider"
)

// Chat flags
var (
	flagConfig      string
	flagEnvFile     string
	flagProvider    string
	flagModel       string
	flagBaseURL     string
	flagAPIKeyEnv   string
	flagTemperature float64
	flagMaxTokens   int
	flagMaxSteps    int
	flagSmokeTest   bool
	flagKeepMemory  bool
	flagVerbose     bool
	flagNoColor     bool
)

func addChatFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&flagConfig, "config", "c", "", "Configuration file (default mcp_config.json)")
	f.StringVar(&flagEnvFile, "env-file", "", "Environment file loaded before reading the credential (default .env)")
	f.StringVarP(&flagProvider, "provider", "p", "", "Model provider (groq|openai|anthropic|ark)")
	f.StringVarP(&flagModel, "model", "m", "", "Model name, or provider/model")
	f.StringVar(&flagBaseURL, "base-url", "", "Override the provider API endpoint")
	f.StringVar(&flagAPIKeyEnv, "api-key-env", "", "Environment variable holding the API key (default from provider)")
	f.Float64Var(&flagTemperature, "temperature", config.DefaultTemperature, "Sampling temperature")
	f.IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens per model reply")
	f.IntVar(&flagMaxSteps, "max-steps", 0, fmt.Sprintf("Maximum model rounds per turn (default %d)", config.DefaultMaxSteps))
	f.BoolVar(&flagSmokeTest, "smoke-test", false, "Send one test prompt after connecting")
	f.BoolVar(&flagKeepMemory, "keep-memory", false, "Keep the conversation when reconnecting after a failure")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Print tool calls as they happen")
	f.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// flagSettings returns the settings given on the command line.
func flagSettings(cmd *cobra.Command) config.Settings {
	s := config.Settings{
		ConfigPath: flagConfig,
		EnvFile:    flagEnvFile,
		Provider:   flagProvider,
		Model:      flagModel,
		BaseURL:    flagBaseURL,
		APIKeyEnv:  flagAPIKeyEnv,
		MaxTokens:  flagMaxTokens,
		MaxSteps:   flagMaxSteps,
		SmokeTest:  flagSmokeTest,
		Verbose:    flagVerbose,
	}
	if cmd.Flags().Changed("temperature") {
		t := flagTemperature
		s.Temperature = &t
	}
	if flagKeepMemory {
		s.Memory = config.MemoryMigrate
	}
	return s
}

// overrides returns the environment and flag settings, in that order of
// precedence. A "provider/model" model selects the provider as well.
func overrides(cmd *cobra.Command) (config.Settings, error) {
	env, err := config.EnvSettings()
	if err != nil {
		return config.Settings{}, err
	}
	s := splitModel(env).Merge(splitModel(flagSettings(cmd)))
	return s, nil
}

// splitModel moves a known provider prefix of Model into Provider. Model
// names that contain a slash but no known provider are left alone.
func splitModel(s config.Settings) config.Settings {
	providerID, modelID := provider.ParseModelString(s.Model)
	if providerID == "" {
		return s
	}
	if _, err := provider.DefaultRegistry().Get(providerID); err != nil {
		return s
	}
	s.Provider = providerID
	s.Model = modelID
	return s
}

// startupSettings are the settings known before the configuration file is
// read. They select the file, the provider and the credential.
func startupSettings(over config.Settings) (config.Settings, error) {
	s := config.DefaultSettings().Merge(over)
	if s.APIKeyEnv == "" {
		s.APIKeyEnv = provider.EnvVar(s.Provider)
	}
	if s.APIKeyEnv == "" {
		return s, &config.Error{Item: "provider", Err: fmt.Errorf("%w: %q", provider.ErrUnknownProvider, s.Provider)}
	}
	return s, nil
}

// runSettings layers the file's agent section between the defaults and the
// overrides.
func runSettings(startup config.Settings, cfg *config.Config, over config.Settings) config.Settings {
	s := config.DefaultSettings().Merge(cfg.Agent.Settings()).Merge(over)
	s.ConfigPath = startup.ConfigPath
	s.EnvFile = startup.EnvFile
	s.Provider = startup.Provider
	s.APIKeyEnv = startup.APIKeyEnv
	return s
}

// backendConfig turns settings into a provider configuration.
func backendConfig(s config.Settings, cred config.Credential) provider.Config {
	t := s.TemperatureValue()
	return provider.Config{
		Provider:    s.Provider,
		Model:       s.Model,
		APIKey:      cred.Value(),
		BaseURL:     s.BaseURL,
		Temperature: &t,
		MaxTokens:   s.MaxTokens,
	}
}
