// Command toolbox-mcp runs the toolbox MCP server over stdio, or over
// streamable HTTP when -http is given.
package main

import (
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mcpchat/mcpchat/internal/logging"
	"github.com/mcpchat/mcpchat/pkg/mcpserver/toolbox"
)

var (
	httpAddr = flag.String("http", "", "Serve streamable HTTP on this address (e.g. :8081) instead of stdio")
	root     = flag.String("root", ".", "Directory searched by the glob tool")
)

func main() {
	flag.Parse()

	s := toolbox.NewServer(toolbox.WithRoot(*root))

	if *httpAddr != "" {
		logging.Info().Str("addr", *httpAddr).Msg("serving toolbox over streamable HTTP at /mcp")
		if err := server.NewStreamableHTTPServer(s).Start(*httpAddr); err != nil {
			logging.Error().Err(err).Msg("toolbox server stopped")
			os.Exit(1)
		}
		return
	}

	if err := server.ServeStdio(s); err != nil {
		logging.Error().Err(err).Msg("toolbox server stopped")
		os.Exit(1)
	}
}
