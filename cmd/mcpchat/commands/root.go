// Package commands provides the CLI commands for mcpchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
)

var (
	// redactor masks the credential and common key shapes in every log line.
	redactor  = logging.NewRedactor()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "mcpchat",
	Short: "mcpchat - chat with a language model that can use MCP tools",
	Long: `mcpchat connects a language model to the tool servers listed in
mcp_config.json over the Model Context Protocol and starts an interactive
chat. Conversation memory lasts for the life of the process.

Run 'mcpchat' or 'mcpchat chat' to start chatting, 'mcpchat servers' to
check the configured tool servers.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: runChat,
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")

	// Version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("mcpchat %s (%s)\n", Version, BuildTime))

	// The root command chats by default, so it takes the chat flags too.
	addChatFlags(rootCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(debugCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogging writes logs to the state directory, or to stderr with
// --print-logs.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(logLevel)
	cfg.Redactor = redactor

	if printLogs {
		cfg.Output = os.Stderr
		cfg.Pretty = true
	} else {
		cfg.File = config.GetPaths().LogFile()
	}

	closer, err := logging.Init(cfg)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}
