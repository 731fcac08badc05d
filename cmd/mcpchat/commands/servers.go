package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/mcp"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Connect to the configured tool servers and show their status",
	Long: `Connect once to every enabled tool server in the configuration file,
probe it, print its status and tool count, and disconnect.

Examples:
  mcpchat servers
  mcpchat servers -c servers.yaml`,
	RunE: runServers,
}

var toolsCmd = &cobra.Command{
	Use:   "tools [server]",
	Short: "List the tools offered by the configured servers",
	Long: `List the tools of every enabled tool server under the names the model
sees them by (server_tool).

Examples:
  mcpchat tools             # all tools
  mcpchat tools toolbox     # only tools of the toolbox server`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTools,
}

func init() {
	serversCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Configuration file (default mcp_config.json)")
	toolsCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Configuration file (default mcp_config.json)")
}

// connectConfigured loads the configuration and connects to its servers.
func connectConfigured(ctx context.Context) (*mcp.Connection, error) {
	path := flagConfig
	if path == "" {
		path = os.Getenv("MCPCHAT_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	conn, err := mcp.NewConnector(clientName, Version).Connect(ctx, cfg.EnabledServers())
	if err != nil {
		if ctx.Err() != nil {
			return nil, &ExitError{Code: 130, Err: ctx.Err()}
		}
		return nil, &ExitError{Code: 3, Err: err}
	}
	return conn, nil
}

func runServers(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	conn, err := connectConfigured(ctx)
	if err != nil {
		return reportExit(err)
	}
	defer conn.Close()

	healthy := conn.Probe(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVER\tSTATUS\tTOOLS\tVERSION\t")
	for _, st := range conn.Status() {
		version := "-"
		if st.ServerInfo != nil {
			version = strings.TrimSpace(st.ServerInfo.Name + " " + st.ServerInfo.Version)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", st.Name, st.Status, st.ToolCount, version)
	}
	w.Flush()

	if !healthy {
		return reportExit(&ExitError{Code: 3, Err: fmt.Errorf("liveness probe failed")})
	}
	return nil
}

func runTools(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	conn, err := connectConfigured(ctx)
	if err != nil {
		return reportExit(err)
	}
	defer conn.Close()

	server := ""
	if len(args) > 0 {
		server = args[0]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tDESCRIPTION\t")
	for _, t := range serverTools(conn.Tools(), server) {
		desc := strings.TrimSpace(strings.SplitN(t.Description, "\n", 2)[0])
		fmt.Fprintf(w, "%s\t%s\t\n", t.Name, desc)
	}
	return w.Flush()
}

// serverTools returns the tools offered by server sorted by name, or all
// tools when server is empty.
func serverTools(tools []mcp.Tool, server string) []mcp.Tool {
	prefix := ""
	if server != "" {
		prefix = mcp.ToolPrefix(server)
	}

	var out []mcp.Tool
	for _, t := range tools {
		if strings.HasPrefix(t.Name, prefix) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// reportExit prints the cause of an ExitError before it is returned.
func reportExit(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
