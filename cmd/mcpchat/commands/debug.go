package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/provider"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug utilities",
	Long:  `Debug utilities for troubleshooting mcpchat configuration and setup.`,
}

var debugConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE:  runDebugConfig,
}

var debugPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show system paths",
	RunE:  runDebugPaths,
}

var debugProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the built-in model providers",
	RunE:  runDebugProviders,
}

func init() {
	addChatFlags(debugConfigCmd)
	debugCmd.AddCommand(debugConfigCmd)
	debugCmd.AddCommand(debugPathsCmd)
	debugCmd.AddCommand(debugProvidersCmd)
}

type debugSettings struct {
	Config   string                      `json:"config"`
	EnvFile  string                      `json:"envFile"`
	Provider string                      `json:"provider"`
	APIKey   string                      `json:"apiKey"`
	Model    string                      `json:"model,omitempty"`
	BaseURL  string                      `json:"baseURL,omitempty"`
	Temp     float64                     `json:"temperature"`
	MaxSteps int                         `json:"maxSteps"`
	Memory   config.MemoryPolicy         `json:"memory"`
	Tools    map[string]bool             `json:"tools,omitempty"`
	Servers  map[string]debugServerEntry `json:"servers"`
}

type debugServerEntry struct {
	Type    string            `json:"type"`
	Enabled bool              `json:"enabled"`
	URL     string            `json:"url,omitempty"`
	Command []string          `json:"command,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Env     []string          `json:"env,omitempty"`
}

func runDebugConfig(cmd *cobra.Command, args []string) error {
	over, err := overrides(cmd)
	if err != nil {
		return err
	}
	startup, err := startupSettings(over)
	if err != nil {
		return err
	}

	cfg, err := config.Load(startup.ConfigPath)
	if err != nil {
		return err
	}
	s := runSettings(startup, cfg, over)

	cred, credErr := config.LoadCredential(s.APIKeyEnv, s.EnvFile)
	apiKey := cred.String()
	if credErr != nil {
		apiKey = s.APIKeyEnv + "=<unset>"
	}

	out := debugSettings{
		Config:   cfg.Path,
		EnvFile:  s.EnvFile,
		Provider: s.Provider,
		APIKey:   apiKey,
		Model:    s.Model,
		BaseURL:  s.BaseURL,
		Temp:     s.TemperatureValue(),
		MaxSteps: s.MaxSteps,
		Memory:   s.Memory,
		Tools:    s.Tools,
		Servers:  make(map[string]debugServerEntry, len(cfg.Servers)),
	}
	for name, srv := range cfg.Servers {
		entry := debugServerEntry{
			Type:    string(srv.Type),
			Enabled: srv.Enabled,
			URL:     srv.URL,
			Command: srv.Command,
		}
		if len(srv.Headers) > 0 {
			entry.Headers = make(map[string]string, len(srv.Headers))
			for k := range srv.Headers {
				entry.Headers[k] = "<redacted>"
			}
		}
		for k := range srv.Environment {
			entry.Env = append(entry.Env, k)
		}
		out.Servers[name] = entry
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runDebugPaths(cmd *cobra.Command, args []string) error {
	paths := config.GetPaths()

	fmt.Println("mcpchat System Paths:")
	fmt.Println()
	fmt.Printf("  Config:   %s\n", paths.Config)
	fmt.Printf("  Cache:    %s\n", paths.Cache)
	fmt.Printf("  State:    %s\n", paths.State)
	fmt.Printf("  Log:      %s\n", paths.LogFile())
	fmt.Printf("  History:  %s\n", paths.HistoryFile())
	return nil
}

func runDebugProviders(cmd *cobra.Command, args []string) error {
	for _, info := range provider.DefaultRegistry().List() {
		model := info.DefaultModel
		if model == "" {
			model = "(model required)"
		}
		set := "unset"
		if strings.TrimSpace(os.Getenv(info.EnvVar)) != "" {
			set = "set"
		}
		fmt.Printf("  %-10s %-28s %s (%s)\n", info.ID, model, info.EnvVar, set)
	}
	return nil
}
