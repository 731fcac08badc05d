package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mcpchat/mcpchat/internal/agent"
	"github.com/mcpchat/mcpchat/internal/chat"
	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/event"
	"github.com/mcpchat/mcpchat/internal/logging"
	"github.com/mcpchat/mcpchat/internal/mcp"
	"github.com/mcpchat/mcpchat/internal/provider"
)

const clientName = "mcpchat"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat (default)",
	Long: `Start an interactive chat session.

The API key is read from the provider's environment variable after loading
.env, then the tool servers in mcp_config.json are connected. Type exit,
quit or bye to leave, or /help for commands.

Examples:
  mcpchat                                  # groq with llama3-8b-8192
  mcpchat chat --model openai/gpt-4o-mini  # another provider
  mcpchat chat -c servers.yaml --verbose   # print tool calls`,
	RunE: runChat,
}

func init() {
	addChatFlags(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	over, err := overrides(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return &ExitError{Code: 2, Err: err}
	}
	startup, err := startupSettings(over)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return &ExitError{Code: 2, Err: err}
	}

	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	if flagNoColor {
		color.NoColor = true
	}
	console, err := chat.NewConsole(chat.ConsoleOptions{
		HistoryFile: historyFile(),
		NoColor:     flagNoColor,
	})
	if err != nil {
		return err
	}
	defer console.Close()

	bus := event.NewBus()
	defer bus.Close()
	if err := bus.Journal(ctx, logging.For("event")); err != nil {
		return err
	}
	if startup.Verbose {
		bus.Subscribe(event.ToolCalled, printToolCall)
	}

	var settings config.Settings
	connector := mcp.NewConnector(clientName, Version)

	deps := chat.Dependencies{
		LoadCredential: func() (config.Credential, error) {
			cred, err := config.LoadCredential(startup.APIKeyEnv, startup.EnvFile)
			if err == nil {
				redactor.AddSecret(cred.Value())
			}
			return cred, err
		},
		LoadConfig: func() (*config.Config, error) {
			cfg, err := config.Load(startup.ConfigPath)
			if err != nil {
				return nil, err
			}
			settings = runSettings(startup, cfg, over)
			watchConfig(ctx, cfg.Path, bus, console)
			return cfg, nil
		},
		Connect: func(ctx context.Context, servers map[string]mcp.Config) (chat.Connection, error) {
			conn, err := connector.Connect(ctx, servers)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
		NewBackend: func(ctx context.Context, cred config.Credential) (provider.Backend, error) {
			return provider.Configure(ctx, backendConfig(settings, cred))
		},
		NewAgent: func(backend provider.Backend, conn chat.Connection, sessionID string) chat.Runner {
			return agent.New(backend, conn, agent.Options{
				MaxSteps:     settings.MaxSteps,
				SystemPrompt: settings.SystemPrompt,
				Tools:        agent.ToolFilter(settings.Tools),
				Bus:          bus,
				SessionID:    sessionID,
			})
		},
		Console: console,
		Bus:     bus,
	}

	ctrl := chat.New(deps, chat.Options{
		Memory:    startup.Memory,
		SmokeTest: startup.SmokeTest,
	})

	out := ctrl.Run(ctx)
	if code := out.ExitCode(); code != 0 {
		return &ExitError{Code: code, Err: out.Err}
	}
	return nil
}

// interruptContext returns a context that is cancelled on SIGINT or
// SIGTERM, so connections are closed before the process exits.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// historyFile returns the readline history path, or "" when the cache
// directory cannot be created.
func historyFile() string {
	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		logging.Warn().Err(err).Msg("input history disabled")
		return ""
	}
	return paths.HistoryFile()
}

// watchConfig tells the user when the configuration file changes on disk.
// The running chat keeps the configuration it started with.
func watchConfig(ctx context.Context, path string, bus *event.Bus, console chat.Console) {
	err := config.Watch(ctx, path, func(ev fsnotify.Event) {
		bus.Publish(event.Event{
			Type: event.ConfigChanged,
			Data: event.ConfigChangedData{Path: ev.Name, Op: ev.Op.String()},
		})
		console.Notice(fmt.Sprintf("%s changed on disk; restart mcpchat to apply it.", path))
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("not watching configuration")
	}
}

var (
	toolColor  = color.New(color.FgYellow)
	traceColor = color.New(color.FgHiBlack)
	errorColor = color.New(color.FgRed)
)

// printToolCall prints a tool.called event to stderr.
func printToolCall(e event.Event) {
	data, ok := e.Data.(event.ToolCalledData)
	if !ok {
		return
	}
	fmt.Fprintln(os.Stderr, toolColor.Sprintf("→ tool %s %s", data.Tool, data.Arguments))
	if data.Error != "" {
		fmt.Fprintln(os.Stderr, errorColor.Sprintf("  error: %s", data.Error))
		return
	}
	fmt.Fprintln(os.Stderr, traceColor.Sprint("  "+data.Output))
}
